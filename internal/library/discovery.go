package library

import (
	"context"
	"os"
	"path/filepath"
)

// discoverFiles walks the given source directories and returns all music files found.
// Returns the list of files and a map of path->source for quick lookup.
func discoverFiles(ctx context.Context, sources []string, progress chan<- ScanProgress) (files []fileInfo, discoveredPaths map[string]string, err error) {
	for _, src := range sources {
		walkErr := filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			// Skip any walk errors - intentionally continuing to scan other paths
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !IsMusicFile(path) {
				return nil
			}

			info, infoErr := d.Info()
			// Skip files we can't stat - intentionally continuing to scan other files
			if infoErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}

			files = append(files, fileInfo{
				path:   path,
				mtime:  info.ModTime().Unix(),
				source: src,
			})

			if len(files)%100 == 0 {
				report(progress, ScanProgress{Phase: PhaseScanning, Current: len(files)})
			}
			return nil
		})
		if walkErr != nil {
			return nil, nil, walkErr
		}
	}

	// Build set of discovered paths for deletion phase (with source info)
	discoveredPaths = make(map[string]string, len(files)) // path -> source
	for _, f := range files {
		discoveredPaths[f.path] = f.source
	}

	return files, discoveredPaths, nil
}

// relativePath returns the path relative to the source, or the full path if not under source.
func relativePath(source, path string) string {
	rel, err := filepath.Rel(source, path)
	if err != nil {
		return path
	}
	return rel
}
