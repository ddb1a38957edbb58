package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/gemledger/internal/model"
	"github.com/theirongolddev/gemledger/internal/source"
)

// LoadResult holds the records parsed from a set of export files.
type LoadResult struct {
	Pulls       []model.PullRecord
	Snapshots   []model.Snapshot
	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses every export file under root without touching
// the store. It backs dry-run imports.
func Load(root string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	for _, pr := range parseAll(files, 0, len(files), progressFn) {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Pulls = append(result.Pulls, pr.Pulls...)
		result.Snapshots = append(result.Snapshots, pr.Snapshots...)
	}
	return result, nil
}

// parseAll parses files with a bounded worker pool. Results keep the order
// of files. Progress is reported as offset+done out of total.
func parseAll(files []source.DiscoveredFile, offset, total int, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(offset+int(n), total)
				}
			}
		}()
	}

	wg.Wait()
	return results
}
