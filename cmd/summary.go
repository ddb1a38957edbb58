package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Current balance, income rate and outlook",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, ds, err := loadDataset()
	if err != nil {
		return err
	}
	if len(ds.Snapshots) == 0 {
		printNoSnapshots()
		return nil
	}

	r := pipeline.BuildReport(ds, s.opts, s.now(), s.econ)
	o := r.Outlook

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PRIMOGEM LEDGER  Last %dd", s.opts.LookbackDays)))
	fmt.Println()

	rows := [][]string{
		{"Balance (est)", cli.FormatNumber(o.Balance)},
		{"Primogems (last snapshot)", cli.FormatNumber(o.Primogems)},
		{"Intertwined fates", cli.FormatNumber(o.Intertwined)},
		{"Available pulls", cli.FormatNumber(o.AvailablePulls)},
		{"Total wishes", cli.FormatPulls(o.TotalWishes)},
		{"---"},
		{"Daily rate", rateLabel(o.Rate)},
		{fmt.Sprintf("Balance in %dd", o.ProjectionDays), cli.FormatNumber(o.ProjectedBalance)},
		{fmt.Sprintf("Pulls in %dd", o.ProjectionDays), cli.FormatNumber(o.ProjectedPulls)},
		{"Pity saved", pityLabel(o.AvailablePulls, s.econ.PityPulls)},
		{"Days to full pity", cli.FormatDaysUntil(o.DaysToPity)},
		{"---"},
		{"Wishes spent", fmt.Sprintf("%s (%s primogems)",
			cli.FormatNumber(int64(r.Spending.Intertwined)), cli.FormatNumber(r.Spending.CurrencyEquivalent))},
		{"Acquaint wishes", cli.FormatNumber(int64(r.Spending.Acquaint))},
		{"Ledger net", cli.FormatSigned(r.Split.Net)},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(r.History) > 1 {
		values := make([]float64, len(r.History))
		for i, h := range r.History {
			values[i] = float64(h.Balance)
		}
		fmt.Println()
		fmt.Printf("  %s\n", cli.RenderSparkline(values))
	}
	if o.Rate.Source == model.RateNone {
		fmt.Println()
		fmt.Println(cli.RenderWarning("No income rate yet: record a second snapshot or import wish history."))
	}
	return nil
}

func rateLabel(est model.RateEstimate) string {
	return fmt.Sprintf("%s (%s)", cli.FormatRate(est.DailyRate), est.Source)
}

// pityLabel shows saved pulls against the hard pity count.
func pityLabel(pulls int64, pity int) string {
	if pity <= 0 {
		return cli.FormatNumber(pulls)
	}
	return fmt.Sprintf("%s / %d (%s)", cli.FormatNumber(pulls), pity, cli.FormatPercent(float64(pulls)/float64(pity)))
}
