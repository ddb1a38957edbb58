package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "Income per banner period",
	RunE:  runPeriods,
}

func init() {
	rootCmd.AddCommand(periodsCmd)
}

func runPeriods(_ *cobra.Command, _ []string) error {
	s, ds, err := loadDataset()
	if err != nil {
		return err
	}

	points := pipeline.BannerPeriods(ds, s.now(), s.econ)
	if len(points) == 0 {
		fmt.Println("\n  No snapshots or pulls recorded yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BANNER PERIODS  %d days each", s.econ.BannerPeriodDays)))
	fmt.Println()

	rows := make([][]string, 0, len(points))
	rates := make([]float64, 0, len(points))
	for _, p := range points {
		basis := "pulls"
		if p.IsGroundTruth {
			basis = "snapshots"
		}
		if p.IsCurrent {
			basis += " *"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s - %s", cli.FormatDay(p.PeriodStart), cli.FormatDay(p.PeriodEnd)),
			cli.FormatNumber(int64(p.Pulls)),
			cli.FormatRate(p.DailyRate),
			cli.FormatNumber(int64(p.TotalIncome)),
			basis,
		})
		rates = append(rates, p.DailyRate)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Pulls", "Rate", "Income", "Basis"},
		Rows:    rows,
	}))

	sum := pipeline.SummarizeTrend(points)
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderSparkline(rates))
	fmt.Printf("  Average: %s", cli.FormatRate(sum.AverageRate))
	if sum.EarlyAverage > 0 {
		fmt.Printf("   Early: %s   Recent: %s   (%s)",
			cli.FormatRate(sum.EarlyAverage),
			cli.FormatRate(sum.RecentAverage),
			cli.FormatChange(sum.ChangePercent),
		)
	}
	fmt.Println()
	fmt.Println(cli.RenderMuted("  * current period, clipped to today"))
	return nil
}
