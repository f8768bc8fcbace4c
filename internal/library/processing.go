package library

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
)

// processFiles reads tags in parallel and upserts the results in one
// transaction, recording stats per source.
func (l *Library) processFiles(
	ctx context.Context,
	filesToProcess []fileInfo,
	fileIsNew map[string]bool,
	stats *ScanStats,
	progress chan<- ScanProgress,
) error {
	total := len(filesToProcess)
	var processed atomic.Int64

	workCh := make(chan fileInfo)
	resultCh := make(chan trackResult, total)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for f := range workCh {
				resultCh <- trackResult{
					track:  readTrack(f.path, f.mtime),
					source: f.source,
					isNew:  fileIsNew[f.path],
				}
				processed.Add(1)
			}
		})
	}

	go func() {
		defer close(workCh)
		for _, f := range filesToProcess {
			select {
			case workCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	if progress != nil {
		reporter.Go(func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					select {
					case progress <- ScanProgress{Phase: PhaseProcessing, Current: int(processed.Load()), Total: total}:
					case <-done:
						return
					}
				case <-done:
					return
				}
			}
		})
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]trackResult, 0, total)
	for r := range resultCh {
		results = append(results, r)
	}
	close(done)
	reporter.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Insert sequentially to avoid SQLite write contention
	err := dbutil.WithTxContext(ctx, l.db, func(tx *sql.Tx) error {
		for _, r := range results {
			if _, err := upsertTrackWithExecutor(ctx, tx, r.track); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		srcStats, ok := stats.BySource[r.source]
		if !ok {
			continue
		}
		rel := relativePath(r.source, r.track.Path)
		if r.isNew {
			srcStats.Added = append(srcStats.Added, rel)
		} else {
			srcStats.Updated = append(srcStats.Updated, rel)
		}
	}

	report(progress, ScanProgress{Phase: PhaseProcessing, Current: total, Total: total})
	return nil
}
