package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gemledger/internal/cli"
	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/tui/components"
	"github.com/theirongolddev/gemledger/internal/tui/theme"
)

// logKinds is the cycle order of the kind filter; empty means all.
var logKinds = []model.LogKind{"", model.LogSnapshot, model.LogPurchase, model.LogPullSpending}

// logState holds the log tab state.
type logState struct {
	cursor       int
	offset       int
	detailScroll int
	kind         int // index into logKinds

	searching   bool
	searchInput textinput.Model
	searchQuery string
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "description, notes or source"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = "/ "
	return ti
}

// filteredLog applies the kind filter and search query to the report log.
func (a App) filteredLog() []model.LogEntry {
	return filterLog(a.data.Report.Log, logKinds[a.logState.kind], a.logState.searchQuery)
}

func filterLog(entries []model.LogEntry, kind model.LogKind, query string) []model.LogEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if kind == "" && query == "" {
		return entries
	}
	out := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if kind != "" && e.Kind != kind {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Description), query) &&
			!strings.Contains(strings.ToLower(e.Notes), query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// updateLogKeys handles log navigation. ok is false for keys it ignores.
func (a App) updateLogKeys(key string) (tea.Model, tea.Cmd, bool) {
	entries := a.filteredLog()
	ls := &a.logState

	switch key {
	case "/":
		ls.searching = true
		ls.searchInput = newSearchInput()
		ls.searchInput.Focus()
		return a, ls.searchInput.Cursor.BlinkCmd(), true
	case "f":
		ls.kind = (ls.kind + 1) % len(logKinds)
		ls.cursor, ls.offset, ls.detailScroll = 0, 0, 0
		return a, nil, true
	case "esc":
		if ls.searchQuery != "" || ls.kind != 0 {
			ls.searchQuery = ""
			ls.kind = 0
			ls.cursor, ls.offset = 0, 0
		}
		return a, nil, true
	case "j", "down":
		if ls.cursor < len(entries)-1 {
			ls.cursor++
			ls.detailScroll = 0
		}
		return a, nil, true
	case "k", "up":
		if ls.cursor > 0 {
			ls.cursor--
			ls.detailScroll = 0
		}
		return a, nil, true
	case "g":
		ls.cursor, ls.offset, ls.detailScroll = 0, 0, 0
		return a, nil, true
	case "G":
		ls.cursor = max(0, len(entries)-1)
		ls.detailScroll = 0
		return a, nil, true
	case "J":
		ls.detailScroll++
		return a, nil, true
	case "K":
		if ls.detailScroll > 0 {
			ls.detailScroll--
		}
		return a, nil, true
	case "ctrl+d", "ctrl+u":
		half := max(minHalfPageScroll, (a.height-scrollOverhead)/2)
		if key == "ctrl+u" {
			half = -half
		}
		ls.cursor = min(max(0, ls.cursor+half), max(0, len(entries)-1))
		ls.detailScroll = 0
		return a, nil, true
	}
	return a, nil, false
}

// updateLogSearch handles key events while in search mode.
func (a App) updateLogSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.logState.searchQuery = strings.TrimSpace(a.logState.searchInput.Value())
		a.logState.searching = false
		a.logState.cursor, a.logState.offset, a.logState.detailScroll = 0, 0, 0
		return a, nil
	case "esc":
		a.logState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.logState.searchInput, cmd = a.logState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderLogTab(cw, h int) string {
	t := theme.Active
	entries := a.filteredLog()
	ls := a.logState

	title := "Transaction log"
	if k := logKinds[ls.kind]; k != "" {
		title += " · " + string(k)
	}
	if ls.searchQuery != "" {
		title += fmt.Sprintf(" · %q", ls.searchQuery)
	}

	var top string
	if ls.searching {
		top = ls.searchInput.View() + "\n"
	}

	if len(entries) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard(title, top+muted.Render("Nothing recorded"), cw)
	}
	cursor := min(ls.cursor, len(entries)-1)

	if a.isCompactLayout() {
		return components.ContentCard(title, top+a.renderLogList(entries, cursor, components.CardInnerWidth(cw), h), cw)
	}

	leftW := cw * 3 / 5
	rightW := cw - leftW
	left := components.ContentCard(title, top+a.renderLogList(entries, cursor, components.CardInnerWidth(leftW), h), leftW)
	right := components.ContentCard("Detail", a.renderLogDetail(entries[cursor], rightW), rightW)
	return components.CardRow([]string{left, right})
}

func (a App) renderLogList(entries []model.LogEntry, cursor, innerW, h int) string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	visible := h - 6 // card border (2) + title (1) + footer hint (2) + slack
	if visible < 3 {
		visible = 3
	}
	offset := a.logState.offset
	if cursor < offset {
		offset = cursor
	}
	if cursor >= offset+visible {
		offset = cursor - visible + 1
	}
	end := min(offset+visible, len(entries))

	descW := innerW - 16 - 1 - 10 - 1
	var b strings.Builder
	for i := offset; i < end; i++ {
		e := entries[i]
		amount := lipgloss.NewStyle().Foreground(t.Signed(e.Amount)).Background(t.Surface)
		style := rowStyle
		if i == cursor {
			style = selectedStyle
			amount = amount.Background(t.SurfaceBright).Bold(true)
		}
		line := style.Render(fmt.Sprintf("%-16s ", e.Timestamp.Format("2006-01-02 15:04"))) +
			amount.Render(fmt.Sprintf("%10s", cli.FormatSigned(e.Amount))) +
			style.Render(" "+truncStr(e.Description, descW))
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(muted.Render(fmt.Sprintf("%d of %d  [/] search  [f] kind  [esc] clear", cursor+1, len(entries))))
	return b.String()
}

func (a App) renderLogDetail(e model.LogEntry, w int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	var lines []string
	add := func(k, v string) {
		lines = append(lines, label.Render(fmt.Sprintf("%-12s", k))+value.Render(truncStr(v, innerW-12)))
	}

	lines = append(lines, header.Render(truncStr(e.Description, innerW)), "")
	add("When", e.Timestamp.Format("2006-01-02 15:04 MST"))
	add("Kind", string(e.Kind))
	add("Amount", cli.FormatSigned(e.Amount))
	if e.Notes != "" {
		add("Notes", e.Notes)
	}

	switch ref := e.Ref.(type) {
	case model.SnapshotRef:
		s := ref.Snapshot
		lines = append(lines, "")
		add("Primogems", cli.FormatNumber(s.Primogems))
		add("Genesis", cli.FormatNumber(s.GenesisCrystals))
		add("Intertwined", cli.FormatNumber(s.Intertwined))
		add("Acquaint", cli.FormatNumber(s.Acquaint))
		add("Starglitter", cli.FormatNumber(s.Starglitter))
		add("Stardust", cli.FormatNumber(s.Stardust))
	case model.PurchaseRef:
		p := ref.Purchase
		lines = append(lines, "")
		add("Source", string(p.Source))
		add("Entry ID", p.ID)
		lines = append(lines, label.Render("Edit with `gemledger ledger update "+shortID(p.ID)+"`"))
	case model.PullDayRef:
		lines = append(lines, "", header.Render(fmt.Sprintf("%d wishes", len(ref.Pulls))))
		for _, p := range ref.Pulls {
			star := lipgloss.NewStyle().Foreground(rarityColor(p.Rarity)).Background(t.Surface)
			lines = append(lines, star.Render(fmt.Sprintf("%d★ ", p.Rarity))+
				value.Render(truncStr(fmt.Sprintf("%s  %s", p.Timestamp.Format("15:04"), p.ItemKey), innerW-4)))
		}
	}

	scroll := min(a.logState.detailScroll, max(0, len(lines)-1))
	return strings.Join(lines[scroll:], "\n")
}

func rarityColor(r int) lipgloss.Color {
	t := theme.Active
	switch r {
	case 5:
		return t.Yellow
	case 4:
		return t.Magenta
	default:
		return t.TextMuted
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
