package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var rateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Daily income rate and how it was estimated",
	RunE:  runRate,
}

func init() {
	rootCmd.AddCommand(rateCmd)
}

func runRate(_ *cobra.Command, _ []string) error {
	s, ds, err := loadDataset()
	if err != nil {
		return err
	}

	est := pipeline.EstimateRate(ds, s.opts.RateWindowDays, s.now(), s.econ)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("INCOME RATE  %dd window", s.opts.RateWindowDays)))
	fmt.Println()

	rows := [][]string{
		{"Daily rate", cli.FormatRate(est.DailyRate)},
		{"Source", string(est.Source)},
	}
	switch est.Source {
	case model.RateFromSnapshots:
		rows = append(rows,
			[]string{"From", est.StartDay.Format("2006-01-02")},
			[]string{"To", est.EndDay.Format("2006-01-02")},
			[]string{"Income", cli.FormatNumber(est.Income)},
		)
	case model.RateFromPulls:
		rows = append(rows,
			[]string{"Spent on pulls", cli.FormatNumber(est.Income)},
			[]string{"Window", fmt.Sprintf("%d days", s.opts.RateWindowDays)},
		)
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Per week", cli.FormatNumber(int64(est.DailyRate * 7))},
		[]string{"Per banner period", cli.FormatNumber(int64(est.DailyRate * float64(s.econ.BannerPeriodDays)))},
	)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if est.Source == model.RateNone {
		fmt.Println()
		fmt.Println(cli.RenderWarning("Not enough data: need two snapshots on different days or pulls in the window."))
	}
	return nil
}
