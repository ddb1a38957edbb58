package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/store"
)

var (
	flagEntryAmount int64
	flagEntrySource string
	flagEntryNotes  string
	flagEntryAt     string
	flagEntryLimit  int
)

var errAmbiguousID = errors.New("ambiguous entry id")

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage purchase, income and spend entries",
}

var ledgerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a ledger entry (negative amounts are spend)",
	RunE:  runLedgerAdd,
}

var ledgerUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change an existing ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerUpdate,
}

var ledgerDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerDelete,
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries, newest first",
	RunE:  runLedgerList,
}

func init() {
	for _, c := range []*cobra.Command{ledgerAddCmd, ledgerUpdateCmd} {
		c.Flags().Int64Var(&flagEntryAmount, "amount", 0, "Primogem amount, negative for spend")
		c.Flags().StringVar(&flagEntrySource, "source", "", "Source: "+sourceList())
		c.Flags().StringVar(&flagEntryNotes, "notes", "", "Free-form note")
		c.Flags().StringVar(&flagEntryAt, "at", "", "Entry time, RFC3339 or 2006-01-02 15:04 (default now)")
	}
	_ = ledgerAddCmd.MarkFlagRequired("amount")
	_ = ledgerAddCmd.MarkFlagRequired("source")
	ledgerListCmd.Flags().IntVar(&flagEntryLimit, "limit", 30, "Number of entries to show (0 for all)")

	ledgerCmd.AddCommand(ledgerAddCmd, ledgerUpdateCmd, ledgerDeleteCmd, ledgerListCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func runLedgerAdd(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	e := model.PurchaseEntry{
		Timestamp: s.now(),
		Amount:    flagEntryAmount,
		Source:    model.Source(flagEntrySource),
		Notes:     flagEntryNotes,
	}
	if flagEntryAt != "" {
		if e.Timestamp, err = parseWhen(flagEntryAt); err != nil {
			return err
		}
	}

	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	saved, err := st.CreateEntry(e)
	if err != nil {
		return err
	}
	log.Debug().Str("id", saved.ID).Int64("amount", saved.Amount).Msg("ledger entry created")

	fmt.Printf("\n  Added %s %s (%s)\n", cli.RenderSigned(saved.Amount), saved.Source, shortID(saved.ID))
	return nil
}

func runLedgerUpdate(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	e, err := resolveEntry(st, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !anyChanged(cmd, []string{"amount", "source", "notes", "at"}) {
		return errors.New("nothing to update: pass --amount, --source, --notes or --at")
	}
	if flags.Changed("amount") {
		e.Amount = flagEntryAmount
	}
	if flags.Changed("source") {
		e.Source = model.Source(flagEntrySource)
	}
	if flags.Changed("notes") {
		e.Notes = flagEntryNotes
	}
	if flags.Changed("at") {
		if e.Timestamp, err = parseWhen(flagEntryAt); err != nil {
			return err
		}
	}

	saved, err := st.UpdateEntry(e)
	if err != nil {
		return err
	}
	fmt.Printf("\n  Updated %s: %s %s\n", shortID(saved.ID), cli.RenderSigned(saved.Amount), saved.Source)
	return nil
}

func runLedgerDelete(_ *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	e, err := resolveEntry(st, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteEntry(e.ID); err != nil {
		return err
	}
	fmt.Printf("\n  Deleted %s (%s %s)\n", shortID(e.ID), cli.RenderSigned(e.Amount), e.Source)
	return nil
}

func runLedgerList(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	entries, err := st.ListEntries()
	if err != nil {
		return fmt.Errorf("listing ledger: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("\n  No ledger entries recorded. Add one with `gemledger ledger add`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("LEDGER  %d entries", len(entries))))
	fmt.Println()

	var net int64
	rows := make([][]string, 0, len(entries)+2)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		net += e.Amount
		if flagEntryLimit > 0 && len(rows) >= flagEntryLimit {
			continue
		}
		rows = append(rows, []string{
			e.Timestamp.Format("2006-01-02 15:04"),
			cli.FormatSigned(e.Amount),
			string(e.Source),
			e.Notes,
			shortID(e.ID),
		})
	}
	rows = append(rows, []string{"---"}, []string{"Net", cli.FormatSigned(net), "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Time", "Amount", "Source", "Notes", "ID"},
		Rows:    rows,
	}))
	return nil
}

// resolveEntry finds the live entry whose ID equals or uniquely starts with prefix.
func resolveEntry(st *store.Store, prefix string) (model.PurchaseEntry, error) {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "purchase-")
	if e, err := st.GetEntry(prefix); err == nil {
		return e, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return e, err
	}

	entries, err := st.ListEntries()
	if err != nil {
		return model.PurchaseEntry{}, err
	}
	return matchEntryPrefix(entries, prefix)
}

func matchEntryPrefix(entries []model.PurchaseEntry, prefix string) (model.PurchaseEntry, error) {
	var found []model.PurchaseEntry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, prefix) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return model.PurchaseEntry{}, fmt.Errorf("ledger entry %s: %w", prefix, store.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.PurchaseEntry{}, fmt.Errorf("%w: %s matches %d entries", errAmbiguousID, prefix, len(found))
	}
}

func sourceList() string {
	names := make([]string, len(model.Sources))
	for i, src := range model.Sources {
		names[i] = string(src)
	}
	return strings.Join(names, ", ")
}
