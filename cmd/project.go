package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var flagProjectStep int

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Projected balance at the current income rate",
	RunE:  runProject,
}

func init() {
	projectCmd.Flags().IntVar(&flagProjectStep, "step", 7, "Days between printed rows")
	rootCmd.AddCommand(projectCmd)
}

func runProject(_ *cobra.Command, _ []string) error {
	s, ds, err := loadDataset()
	if err != nil {
		return err
	}

	now := s.now()
	history := pipeline.BuildHistory(ds, s.opts.LookbackDays, now, s.econ)
	if len(history) == 0 {
		printNoSnapshots()
		return nil
	}
	latest := history[len(history)-1]
	rate := pipeline.EstimateRate(ds, s.opts.RateWindowDays, now, s.econ)
	points := pipeline.Project(latest.Balance, latest.BalanceWithPurchases, rate.DailyRate, s.opts.ProjectionDays, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECTION  Next %dd", s.opts.ProjectionDays)))
	fmt.Println()
	fmt.Printf("  Rate: %s\n\n", rateLabel(rate))

	step := max(flagProjectStep, 1)
	rows := make([][]string, 0, len(points)/step+2)
	for i, p := range points {
		if i%step != 0 && i != len(points)-1 {
			continue
		}
		rows = append(rows, []string{
			p.Day.Format("2006-01-02"),
			fmt.Sprintf("+%d", i),
			cli.FormatNumber(p.Projected),
			cli.FormatNumber(p.Projected / s.econ.CurrencyPerPull),
			cli.FormatNumber(p.ProjectedWithPurchases),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Balance", "Pulls", "+Ledger"},
		Rows:    rows,
	}))
	return nil
}
