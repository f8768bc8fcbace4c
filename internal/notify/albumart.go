package notify

import (
	"os"
	"path/filepath"
	"strings"
)

// coverNames lists common album art file names in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"album.jpg", "album.png", "album.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArtPath returns the album art next to a track, or "" if there is
// none. Names match case-insensitively.
func FindAlbumArtPath(trackPath string) string {
	if trackPath == "" {
		return ""
	}
	dir := filepath.Dir(trackPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	present := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			present[strings.ToLower(e.Name())] = e.Name()
		}
	}
	for _, name := range coverNames {
		if actual, ok := present[name]; ok {
			return filepath.Join(dir, actual)
		}
	}
	return ""
}
