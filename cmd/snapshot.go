package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
)

var (
	flagSnapPrimogems   int64
	flagSnapGenesis     int64
	flagSnapIntertwined int64
	flagSnapAcquaint    int64
	flagSnapStarglitter int64
	flagSnapStardust    int64
	flagSnapAt          string
	flagSnapLimit       int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record or list resource snapshots",
}

var snapshotAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record current holdings (interactive when no amounts are given)",
	RunE:  runSnapshotAdd,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots, newest first",
	RunE:  runSnapshotList,
}

// balanceFlags are the snapshot amounts; setting any of them skips the form.
var balanceFlags = []string{"primogems", "genesis", "intertwined", "acquaint", "starglitter", "stardust"}

func init() {
	f := snapshotAddCmd.Flags()
	f.Int64Var(&flagSnapPrimogems, "primogems", 0, "Primogems held")
	f.Int64Var(&flagSnapGenesis, "genesis", 0, "Genesis crystals held")
	f.Int64Var(&flagSnapIntertwined, "intertwined", 0, "Intertwined fates held")
	f.Int64Var(&flagSnapAcquaint, "acquaint", 0, "Acquaint fates held")
	f.Int64Var(&flagSnapStarglitter, "starglitter", 0, "Masterless starglitter held")
	f.Int64Var(&flagSnapStardust, "stardust", 0, "Masterless stardust held")
	f.StringVar(&flagSnapAt, "at", "", "Snapshot time, RFC3339 or 2006-01-02 15:04 (default now)")
	snapshotListCmd.Flags().IntVar(&flagSnapLimit, "limit", 20, "Number of snapshots to show (0 for all)")

	snapshotCmd.AddCommand(snapshotAddCmd, snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotAdd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	at := s.now()
	if flagSnapAt != "" {
		if at, err = parseWhen(flagSnapAt); err != nil {
			return err
		}
		if at.After(s.now()) {
			return fmt.Errorf("snapshot time %s is in the future", at.Format("2006-01-02 15:04"))
		}
	}

	snap := model.Snapshot{
		Timestamp:       at,
		Primogems:       flagSnapPrimogems,
		GenesisCrystals: flagSnapGenesis,
		Intertwined:     flagSnapIntertwined,
		Acquaint:        flagSnapAcquaint,
		Starglitter:     flagSnapStarglitter,
		Stardust:        flagSnapStardust,
	}

	if !anyChanged(cmd, balanceFlags) {
		if snap, err = promptSnapshot(snap); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Cancelled.")
				return nil
			}
			return err
		}
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	saved, err := st.AddSnapshot(snap)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	log.Debug().Str("id", saved.ID).Time("at", saved.Timestamp).Msg("snapshot saved")

	fmt.Println()
	fmt.Printf("  Snapshot saved: %s primogems, %s intertwined, %s acquaint at %s\n",
		cli.FormatNumber(saved.Primogems),
		cli.FormatNumber(saved.Intertwined),
		cli.FormatNumber(saved.Acquaint),
		saved.Timestamp.Format("2006-01-02 15:04"),
	)
	return nil
}

// promptSnapshot asks for every balance with a huh form, seeded from snap.
func promptSnapshot(snap model.Snapshot) (model.Snapshot, error) {
	fields := []struct {
		title string
		dst   *int64
		raw   string
	}{
		{title: "Primogems", dst: &snap.Primogems},
		{title: "Genesis crystals", dst: &snap.GenesisCrystals},
		{title: "Intertwined fates", dst: &snap.Intertwined},
		{title: "Acquaint fates", dst: &snap.Acquaint},
		{title: "Masterless starglitter", dst: &snap.Starglitter},
		{title: "Masterless stardust", dst: &snap.Stardust},
	}

	inputs := make([]huh.Field, 0, len(fields))
	for i := range fields {
		fields[i].raw = strconv.FormatInt(*fields[i].dst, 10)
		inputs = append(inputs, huh.NewInput().
			Title(fields[i].title).
			Value(&fields[i].raw).
			Validate(validateCount))
	}

	form := huh.NewForm(
		huh.NewGroup(inputs...).
			Title("Current holdings").
			Description(fmt.Sprintf("Recorded at %s", snap.Timestamp.Format("2006-01-02 15:04"))),
	).WithTheme(huh.ThemeCharm())

	if err := form.Run(); err != nil {
		return snap, err
	}

	for _, f := range fields {
		v, _ := parseCount(f.raw)
		*f.dst = v
	}
	return snap, nil
}

func runSnapshotList(_ *cobra.Command, _ []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openStore(s)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	snaps, err := st.ListSnapshots()
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	if len(snaps) == 0 {
		printNoSnapshots()
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SNAPSHOTS  %d recorded", len(snaps))))
	fmt.Println()

	rows := make([][]string, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		if flagSnapLimit > 0 && len(rows) >= flagSnapLimit {
			break
		}
		sn := snaps[i]
		rows = append(rows, []string{
			sn.Timestamp.Format("2006-01-02 15:04"),
			cli.FormatNumber(sn.Primogems),
			cli.FormatNumber(sn.GenesisCrystals),
			cli.FormatNumber(sn.Intertwined),
			cli.FormatNumber(sn.Acquaint),
			cli.FormatNumber(sn.Starglitter),
			shortID(sn.ID),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Time", "Primogems", "Genesis", "Intertwined", "Acquaint", "Starglitter", "ID"},
		Rows:    rows,
	}))
	return nil
}

func anyChanged(cmd *cobra.Command, names []string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

// parseWhen accepts RFC3339, "2006-01-02 15:04" or a bare date, the latter
// two in local time.
func parseWhen(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339, 2006-01-02 15:04 or 2006-01-02", v)
}

func parseCount(v string) (int64, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func validateCount(v string) error {
	n, err := parseCount(v)
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
