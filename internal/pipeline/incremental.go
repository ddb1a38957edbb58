package pipeline

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/gemledger/internal/source"
	"github.com/theirongolddev/gemledger/internal/store"
)

// ImportResult summarizes an import run.
type ImportResult struct {
	TotalFiles   int
	Unchanged    int
	Imported     int
	FileErrors   int
	ParseErrors  int
	NewPulls     int
	NewSnapshots int
}

// Import discovers export files under root, skips files whose mtime and
// size match the last import, parses the rest in parallel and stores their
// records. Pulls are keyed by ID so re-importing a file adds nothing new.
func Import(root string, st *store.Store, log zerolog.Logger, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &ImportResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := st.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	var toParse []source.DiscoveredFile
	var infos []store.FileInfo
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if cached, ok := tracked[f.Path]; ok && cached == fi {
			result.Unchanged++
			continue
		}
		toParse = append(toParse, f)
		infos = append(infos, fi)
	}

	log.Debug().
		Int("files", len(files)).
		Int("unchanged", result.Unchanged).
		Int("to_parse", len(toParse)).
		Msg("import diff")

	if len(toParse) == 0 {
		return result, nil
	}

	for i, pr := range parseAll(toParse, result.Unchanged, result.TotalFiles, progressFn) {
		path := toParse[i].Path
		if pr.Err != nil {
			result.FileErrors++
			log.Warn().Err(pr.Err).Str("file", path).Msg("could not parse export")
			continue
		}
		result.ParseErrors += pr.ParseErrors

		np, ns, err := st.ImportFile(path, infos[i], pr.Pulls, pr.Snapshots)
		if err != nil {
			return result, fmt.Errorf("storing %s: %w", path, err)
		}
		result.Imported++
		result.NewPulls += np
		result.NewSnapshots += ns
		log.Debug().Str("file", path).Int("pulls", np).Int("snapshots", ns).Msg("imported")
	}
	return result, nil
}
