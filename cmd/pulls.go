package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var pullsCmd = &cobra.Command{
	Use:   "pulls",
	Short: "Wish statistics by banner",
	RunE:  runPulls,
}

func init() {
	rootCmd.AddCommand(pullsCmd)
}

func runPulls(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	pulls, err := st.ListPulls()
	_ = st.Close()
	if err != nil {
		return fmt.Errorf("loading wishes: %w", err)
	}
	if len(pulls) == 0 {
		fmt.Println("\n  No wishes recorded. Import a wish history export with `gemledger import`.")
		return nil
	}

	now := s.now()
	since := pipeline.DayOf(now).AddDate(0, 0, -s.opts.LookbackDays)
	stats := pipeline.AggregateBanners(pulls, since, now.AddDate(0, 0, 1), s.econ)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("WISHES BY BANNER  Last %dd", s.opts.LookbackDays)))
	fmt.Println()

	rows := make([][]string, 0, len(stats))
	for _, b := range stats {
		perFive := "-"
		if b.FiveStars > 0 {
			perFive = fmt.Sprintf("%.1f", b.PullsPerFiveStar)
		}
		rows = append(rows, []string{
			string(b.Banner),
			cli.FormatNumber(int64(b.Pulls)),
			cli.FormatNumber(int64(b.FiveStars)),
			cli.FormatNumber(int64(b.FourStars)),
			perFive,
			cli.FormatNumber(int64(b.PityCount)),
			cli.FormatNumber(b.CurrencySpent),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Banner", "Pulls", "5★", "4★", "Per 5★", "Pity", "Primogems"},
		Rows:    rows,
	}))

	if pity := s.econ.PityPulls; pity > 0 {
		fmt.Println()
		fmt.Println("  Pity progress")
		for _, b := range stats {
			label := fmt.Sprintf("%-11s %3d/%d", b.Banner, b.PityCount, pity)
			fmt.Println(cli.RenderHorizontalBar(label, float64(min(b.PityCount, pity)), float64(pity), 30))
		}
	}

	days := pipeline.AggregatePullDays(pulls, since, now, s.econ)
	if len(days) > 1 {
		values := make([]float64, len(days))
		for i, d := range days {
			values[i] = float64(d.Pulls)
		}
		fmt.Printf("\n  Daily wishes  %s\n", cli.RenderSparkline(values))
	}
	return nil
}
