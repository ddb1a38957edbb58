package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var flagLogLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Transaction log of snapshots, ledger entries and wishes",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVar(&flagLogLimit, "limit", 30, "Number of entries to show (0 for all)")
	rootCmd.AddCommand(logCmd)
}

func runLog(_ *cobra.Command, _ []string) error {
	s, ds, err := loadDataset()
	if err != nil {
		return err
	}

	entries := pipeline.BuildTransactionLog(ds, s.econ)
	if len(entries) == 0 {
		fmt.Println("\n  Nothing recorded yet.")
		return nil
	}
	if flagLogLimit > 0 && len(entries) > flagLogLimit {
		entries = entries[:flagLogLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TRANSACTION LOG"))
	fmt.Println()

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		id := ""
		if e.Editable {
			id = shortID(strings.TrimPrefix(e.ID, "purchase-"))
		}
		rows = append(rows, []string{
			e.Timestamp.Format("2006-01-02 15:04"),
			string(e.Kind),
			cli.FormatSigned(e.Amount),
			e.Description,
			id,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Time", "Kind", "Amount", "Description", "ID"},
		Rows:    rows,
	}))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
