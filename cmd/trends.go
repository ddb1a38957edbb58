package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/pipeline"
)

var (
	flagTrendsInterval    string
	flagTrendsSource      string
	flagTrendsNoPurchases bool
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Ledger income by week or month",
	RunE:  runTrends,
}

func init() {
	trendsCmd.Flags().StringVar(&flagTrendsInterval, "interval", "month", "Bucket size: week or month")
	trendsCmd.Flags().StringVar(&flagTrendsSource, "source", "", "Only entries from this source")
	trendsCmd.Flags().BoolVar(&flagTrendsNoPurchases, "no-purchases", false, "Exclude purchased primogems")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(_ *cobra.Command, _ []string) error {
	interval := model.BucketInterval(flagTrendsInterval)
	if interval != model.IntervalWeek && interval != model.IntervalMonth {
		return fmt.Errorf("invalid --interval %q: want week or month", flagTrendsInterval)
	}
	source := model.Source(flagTrendsSource)
	if source != "" && !source.Valid() {
		return fmt.Errorf("invalid --source %q: %w", flagTrendsSource, model.ErrInvalidSource)
	}

	s, ds, err := loadDataset()
	if err != nil {
		return err
	}
	if len(ds.Purchases) == 0 {
		fmt.Println("\n  No ledger entries recorded. Add one with `gemledger ledger add`.")
		return nil
	}

	since := pipeline.DayOf(s.now()).AddDate(0, 0, -s.opts.LookbackDays)
	buckets := pipeline.BucketEntries(ds.Purchases, pipeline.BucketFilter{
		Interval:         interval,
		Since:            since,
		Source:           source,
		IncludePurchases: !flagTrendsNoPurchases,
	})
	if len(buckets) == 0 {
		fmt.Println("\n  No ledger entries in the selected period.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER BY %s  Last %dd", titleInterval(interval), s.opts.LookbackDays)))
	fmt.Println()

	rows := make([][]string, 0, len(buckets)+2)
	var total model.IncomeSplit
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Label,
			cli.FormatSigned(b.Earned),
			cli.FormatSigned(b.Purchased),
			cli.FormatSigned(b.Spent),
			cli.FormatSigned(b.Total),
			topSource(b),
		})
		total.Earned += b.Earned
		total.Purchased += b.Purchased
		total.Spent += b.Spent
		total.Net += b.Total
	}
	rows = append(rows, []string{"---"}, []string{
		"Total",
		cli.FormatSigned(total.Earned),
		cli.FormatSigned(total.Purchased),
		cli.FormatSigned(total.Spent),
		cli.FormatSigned(total.Net),
		"",
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Period", "Earned", "Purchased", "Spent", "Net", "Top source"},
		Rows:    rows,
	}))

	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = float64(b.Total)
	}
	fmt.Printf("\n  %s\n", cli.RenderSparkline(values))
	return nil
}

func titleInterval(i model.BucketInterval) string {
	if i == model.IntervalWeek {
		return "WEEK"
	}
	return "MONTH"
}

// topSource names the source with the largest positive contribution.
func topSource(b model.IncomeBucket) string {
	var best model.Source
	var bestAmount int64
	for _, src := range model.Sources {
		if v := b.Sources[src]; v > bestAmount {
			best, bestAmount = src, v
		}
	}
	return string(best)
}
