package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir finds export files under root. A root that is itself a file is
// returned on its own. A missing root yields no files and no error.
func ScanDir(root string) ([]DiscoveredFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if f := formatFor(root); f != FormatUnknown {
			return []DiscoveredFile{{Path: root, Format: f}}, nil
		}
		return nil, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if f := formatFor(path); f != FormatUnknown {
			files = append(files, DiscoveredFile{Path: path, Format: f})
		}
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatUIGF
	case ".jsonl":
		return FormatJSONL
	default:
		return FormatUnknown
	}
}
