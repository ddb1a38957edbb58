package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Reconstructed daily balance",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	s, ds, err := loadDataset()
	if err != nil {
		return err
	}

	points := pipeline.BuildHistory(ds, s.opts.LookbackDays, s.now(), s.econ)
	if len(points) == 0 {
		printNoSnapshots()
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BALANCE HISTORY  Last %dd", s.opts.LookbackDays)))
	fmt.Println()

	rows := make([][]string, 0, len(points))
	var prev int64
	for i, p := range points {
		marker := ""
		switch {
		case p.IsToday:
			marker = "today"
		case p.IsSnapshot:
			marker = "snapshot"
		}
		change := ""
		if i > 0 {
			change = cli.FormatDelta(p.Balance, prev)
		}
		prev = p.Balance
		rows = append(rows, []string{
			p.Day.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(p.Day.Weekday())),
			cli.FormatNumber(p.Balance),
			cli.FormatNumber(p.BalanceWithPurchases),
			change,
			cli.FormatNumber(int64(p.CumulativePulls)),
			marker,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Balance", "+Ledger", "Change", "Pulls", ""},
		Rows:    rows,
	}))
	return nil
}
