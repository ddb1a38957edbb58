package source

// Format identifies the layout of an export file.
type Format int

// Supported export formats.
const (
	FormatUnknown Format = iota
	FormatUIGF           // single JSON document with an info header and a list of wishes
	FormatJSONL          // one record per line, routed by its top-level "kind"
)

func (f Format) String() string {
	switch f {
	case FormatUIGF:
		return "uigf"
	case FormatJSONL:
		return "jsonl"
	default:
		return "unknown"
	}
}

// UIGFExport is the wish-history export written by common gacha log tools.
type UIGFExport struct {
	Info UIGFInfo   `json:"info"`
	List []UIGFItem `json:"list"`
}

// UIGFInfo is the export header.
type UIGFInfo struct {
	UID            string `json:"uid"`
	Lang           string `json:"lang"`
	RegionTimeZone *int   `json:"region_time_zone,omitempty"`
	ExportApp      string `json:"export_app,omitempty"`
}

// UIGFItem is one wish in a UIGF export. Numeric fields arrive as strings.
type UIGFItem struct {
	ID        string `json:"id"`
	UIGFType  string `json:"uigf_gacha_type,omitempty"`
	GachaType string `json:"gacha_type"`
	Time      string `json:"time"`
	Name      string `json:"name"`
	ItemType  string `json:"item_type"`
	RankType  string `json:"rank_type"`
	ItemID    string `json:"item_id,omitempty"`
}

// RawRecord is one line of a JSONL export.
type RawRecord struct {
	Kind      string `json:"kind"`
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`

	// kind == "pull"
	Banner   string `json:"banner,omitempty"`
	ItemType string `json:"item_type,omitempty"`
	Item     string `json:"item,omitempty"`
	Rarity   int    `json:"rarity,omitempty"`

	// kind == "snapshot"
	Primogems       int64 `json:"primogems,omitempty"`
	GenesisCrystals int64 `json:"genesis_crystals,omitempty"`
	Intertwined     int64 `json:"intertwined,omitempty"`
	Acquaint        int64 `json:"acquaint,omitempty"`
	Starglitter     int64 `json:"starglitter,omitempty"`
	Stardust        int64 `json:"stardust,omitempty"`
}

// DiscoveredFile represents an export file found during directory scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}
