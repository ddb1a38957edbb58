// Package source discovers and parses wish-history export files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/gemledger/internal/model"
)

// ParseResult holds the records parsed from a single export file.
type ParseResult struct {
	Pulls       []model.PullRecord
	Snapshots   []model.Snapshot
	ParseErrors int
	Err         error
}

// gachaTypes maps UIGF gacha_type codes to banner categories.
var gachaTypes = map[string]model.BannerCategory{
	"100": model.BannerBeginner,
	"200": model.BannerStandard,
	"301": model.BannerCharacter,
	"400": model.BannerCharacter,
	"302": model.BannerWeapon,
	"500": model.BannerChronicled,
}

const uigfTimeLayout = "2006-01-02 15:04:05"

// ParseFile reads an export file and returns its records. Records that fail
// to parse or validate are counted in ParseErrors and skipped.
func ParseFile(df DiscoveredFile) ParseResult {
	switch df.Format {
	case FormatUIGF:
		return parseUIGF(df.Path)
	case FormatJSONL:
		return parseJSONL(df.Path)
	default:
		return ParseResult{Err: fmt.Errorf("unsupported export format for %s", df.Path)}
	}
}

func parseUIGF(path string) ParseResult {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's import directory
	if err != nil {
		return ParseResult{Err: err}
	}

	var export UIGFExport
	if err := json.Unmarshal(data, &export); err != nil {
		return ParseResult{Err: fmt.Errorf("decoding %s: %w", path, err)}
	}

	loc := regionLocation(export.Info)
	var res ParseResult
	for _, item := range export.List {
		p, err := pullFromUIGF(item, loc)
		if err != nil {
			res.ParseErrors++
			continue
		}
		res.Pulls = append(res.Pulls, p)
	}
	return res
}

func pullFromUIGF(item UIGFItem, loc *time.Location) (model.PullRecord, error) {
	code := item.UIGFType
	if code == "" {
		code = item.GachaType
	}
	banner, ok := gachaTypes[code]
	if !ok {
		return model.PullRecord{}, fmt.Errorf("%w: gacha_type %q", model.ErrInvalidBanner, code)
	}
	ts, err := time.ParseInLocation(uigfTimeLayout, item.Time, loc)
	if err != nil {
		return model.PullRecord{}, err
	}
	rarity, err := strconv.Atoi(item.RankType)
	if err != nil {
		return model.PullRecord{}, fmt.Errorf("rank_type %q: %w", item.RankType, err)
	}
	if item.ID == "" {
		return model.PullRecord{}, fmt.Errorf("missing id")
	}

	p := model.PullRecord{
		ID:        item.ID,
		Banner:    banner,
		Timestamp: ts,
		ItemType:  item.ItemType,
		ItemKey:   item.Name,
		Rarity:    rarity,
	}
	return p, p.Validate()
}

// regionLocation returns the server time zone wish times are recorded in.
// Without an explicit offset it is inferred from the account UID prefix.
func regionLocation(info UIGFInfo) *time.Location {
	hours := 8
	switch {
	case info.RegionTimeZone != nil:
		hours = *info.RegionTimeZone
	case strings.HasPrefix(info.UID, "6"):
		hours = -5
	case strings.HasPrefix(info.UID, "7"):
		hours = 1
	}
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
}

func parseJSONL(path string) ParseResult {
	f, err := os.Open(path) //nolint:gosec // path comes from the user's import directory
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var res ParseResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		kind := extractTopLevelKind(line)
		if kind == "" {
			continue
		}

		var rec RawRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			res.ParseErrors++
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			res.ParseErrors++
			continue
		}

		switch kind {
		case "pull":
			p := model.PullRecord{
				ID:        rec.ID,
				Banner:    model.BannerCategory(rec.Banner),
				Timestamp: ts,
				ItemType:  rec.ItemType,
				ItemKey:   rec.Item,
				Rarity:    rec.Rarity,
			}
			if p.ID == "" {
				p.ID = fmt.Sprintf("%s-%s-%d", p.Banner, rec.Timestamp, lineNo)
			}
			if p.Validate() != nil {
				res.ParseErrors++
				continue
			}
			res.Pulls = append(res.Pulls, p)

		case "snapshot":
			s := model.Snapshot{
				ID:              rec.ID,
				Timestamp:       ts,
				Primogems:       rec.Primogems,
				GenesisCrystals: rec.GenesisCrystals,
				Intertwined:     rec.Intertwined,
				Acquaint:        rec.Acquaint,
				Starglitter:     rec.Starglitter,
				Stardust:        rec.Stardust,
			}
			if s.ID == "" {
				s.ID = "import-" + rec.Timestamp
			}
			if s.Validate() != nil {
				res.ParseErrors++
				continue
			}
			res.Snapshots = append(res.Snapshots, s)
		}
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}
	return res
}

// kindKey is the byte sequence for a JSON key named "kind" (with quotes).
var kindKey = []byte(`"kind"`)

// extractTopLevelKind finds the top-level "kind" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "kind" keys are ignored.
func extractTopLevelKind(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], kindKey) {
				val, isKey := classifyKind(line, i+len(kindKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyKind checks whether pos follows a JSON key (expects : then value).
// isKey=false means "kind" appeared as a value, not a key.
func classifyKind(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := string(line[i : i+end])
	switch v {
	case "pull", "snapshot":
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
