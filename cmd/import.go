package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/pipeline"
	"github.com/theirongolddev/gemledger/internal/store"
)

var (
	flagImportDryRun bool
	flagImportForce  bool
)

var importCmd = &cobra.Command{
	Use:   "import [dir|file]",
	Short: "Import wish history and snapshot exports",
	Long: "Import UIGF wish history (.json) and gemledger record exports (.jsonl).\n" +
		"Files unchanged since the last import are skipped.",
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Parse and report without writing to the ledger")
	importCmd.Flags().BoolVar(&flagImportForce, "force", false, "Re-read files even if they are unchanged since the last import")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	root := s.cfg.General.ImportDir
	if len(args) == 1 {
		root = args[0]
	}
	if root == "" {
		return errors.New("no import path: pass one or set general.import_dir")
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", root)
	}
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing %s", cli.RenderProgressBar(current, total, 30))
		}
	}

	if flagImportDryRun {
		res, err := pipeline.Load(root, progressFn)
		if err != nil {
			return err
		}
		if !flagQuiet && res.TotalFiles > 0 {
			fmt.Fprintln(os.Stderr)
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle("IMPORT (DRY RUN)"))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Files found", cli.FormatNumber(int64(res.TotalFiles))},
				{"Parsed", cli.FormatNumber(int64(res.ParsedFiles))},
				{"Unreadable", cli.FormatNumber(int64(res.FileErrors))},
				{"Bad records", cli.FormatNumber(int64(res.ParseErrors))},
				{"---"},
				{"Wishes", cli.FormatNumber(int64(len(res.Pulls)))},
				{"Snapshots", cli.FormatNumber(int64(len(res.Snapshots)))},
			},
		}))
		return nil
	}

	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if flagImportForce {
		n, err := forgetTracked(st, root)
		if err != nil {
			return err
		}
		log.Debug().Int("files", n).Str("root", root).Msg("forgot tracked files")
	}

	res, err := pipeline.Import(root, st, log, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && res.TotalFiles > res.Unchanged {
		fmt.Fprintln(os.Stderr)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("IMPORT"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Files found", cli.FormatNumber(int64(res.TotalFiles))},
			{"Unchanged", cli.FormatNumber(int64(res.Unchanged))},
			{"Imported", cli.FormatNumber(int64(res.Imported))},
			{"Unreadable", cli.FormatNumber(int64(res.FileErrors))},
			{"Bad records", cli.FormatNumber(int64(res.ParseErrors))},
			{"---"},
			{"New wishes", cli.FormatNumber(int64(res.NewPulls))},
			{"New snapshots", cli.FormatNumber(int64(res.NewSnapshots))},
		},
	}))
	if res.TotalFiles == 0 {
		fmt.Println()
		fmt.Println(cli.RenderWarning("No .json or .jsonl exports found."))
	}
	return nil
}

// forgetTracked drops file tracker rows at or below root so the next import
// parses those files again. Already stored pulls still deduplicate by ID.
func forgetTracked(st *store.Store, root string) (int, error) {
	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return 0, fmt.Errorf("reading file tracker: %w", err)
	}
	root = filepath.Clean(root)
	prefix := root + string(filepath.Separator)

	n := 0
	for path := range tracked {
		if path != root && !strings.HasPrefix(path, prefix) {
			continue
		}
		if err := st.DeleteFileTracker(path); err != nil {
			return n, fmt.Errorf("forgetting %s: %w", path, err)
		}
		n++
	}
	return n, nil
}
