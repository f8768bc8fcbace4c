package library

import (
	"context"
	"strings"
)

const numWorkers = 8

// Scan phases.
const (
	PhaseScanning   = "scanning"
	PhaseProcessing = "processing"
	PhaseCleaning   = "cleaning"
	PhaseDone       = "done"
)

// ScanProgress reports the progress of a library scan.
type ScanProgress struct {
	Phase   string
	Current int
	Total   int
	Stats   *ScanStats // Only populated when Phase == PhaseDone
}

// ScanStats holds statistics for a completed scan.
type ScanStats struct {
	BySource map[string]*SourceStats // keyed by source path
}

// Totals sums the per-source counts.
func (s *ScanStats) Totals() (added, updated, removed int) {
	for _, src := range s.BySource {
		added += len(src.Added)
		updated += len(src.Updated)
		removed += len(src.Removed)
	}
	return added, updated, removed
}

// SourceStats holds per-source scan statistics.
type SourceStats struct {
	Added   []string // relative paths of added tracks
	Removed []string // relative paths of removed tracks
	Updated []string // relative paths of updated tracks (mtime changed)
}

// fileInfo holds information about a discovered music file.
type fileInfo struct {
	path   string
	mtime  int64
	source string // source path this file belongs to
}

// trackResult holds the result of processing a music file.
type trackResult struct {
	track  Track
	source string
	isNew  bool
}

// Scan performs an incremental scan of the given source directories:
// new and modified files are read and upserted, tracks whose files are gone
// are deleted. progress may be nil; when set it is closed on return.
func (l *Library) Scan(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	return l.scan(ctx, sources, progress, false)
}

// FullScan rescans all files, ignoring modification times.
func (l *Library) FullScan(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	return l.scan(ctx, sources, progress, true)
}

func (l *Library) scan(ctx context.Context, sources []string, progress chan<- ScanProgress, forceRescan bool) (*ScanStats, error) {
	if progress != nil {
		defer close(progress)
	}

	stats := &ScanStats{BySource: make(map[string]*SourceStats)}
	for _, src := range sources {
		stats.BySource[src] = &SourceStats{}
	}

	// Phase 1: Scan directories for music files
	report(progress, ScanProgress{Phase: PhaseScanning})
	files, discoveredPaths, err := discoverFiles(ctx, sources, progress)
	if err != nil {
		return nil, err
	}

	// Phase 2: Get existing tracks from DB (only from sources being scanned)
	existingTracks, err := l.existingTracks(sources)
	if err != nil {
		return nil, err
	}

	filesToProcess := make([]fileInfo, 0, len(files))
	fileIsNew := make(map[string]bool)
	for _, f := range files {
		mtime, existed := existingTracks[f.path]
		if !forceRescan && existed && mtime == f.mtime {
			continue // unchanged, skip
		}
		fileIsNew[f.path] = !existed
		filesToProcess = append(filesToProcess, f)
	}

	// Phase 3: Process new/modified files in parallel
	if len(filesToProcess) > 0 {
		if err := l.processFiles(ctx, filesToProcess, fileIsNew, stats, progress); err != nil {
			return nil, err
		}
	}

	// Phase 4: Clean up deleted files
	report(progress, ScanProgress{Phase: PhaseCleaning})
	for path := range existingTracks {
		if _, exists := discoveredPaths[path]; exists {
			continue
		}
		if err := l.DeleteByPath(path); err != nil {
			return nil, err
		}
		for src, srcStats := range stats.BySource {
			if underSource(src, path) {
				srcStats.Removed = append(srcStats.Removed, relativePath(src, path))
				break
			}
		}
	}

	report(progress, ScanProgress{Phase: PhaseDone, Current: len(files), Total: len(files), Stats: stats})
	return stats, nil
}

// existingTracks returns a map of path->mtime for all tracks in the given sources.
func (l *Library) existingTracks(sources []string) (map[string]int64, error) {
	rows, err := l.db.Query(`SELECT path, mtime FROM library_tracks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime int64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		for _, src := range sources {
			if underSource(src, path) {
				tracks[path] = mtime
				break
			}
		}
	}
	return tracks, rows.Err()
}

func underSource(source, path string) bool {
	prefix := source
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.HasPrefix(path, prefix)
}

func report(progress chan<- ScanProgress, p ScanProgress) {
	if progress != nil {
		progress <- p
	}
}
