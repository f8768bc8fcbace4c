package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Supported audio file extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtM4A, ExtMP4:
		return true
	}
	return false
}

// readTrack reads tag metadata from a music file. Files whose tags cannot be
// read still produce a track, titled after the file name.
func readTrack(path string, mtime int64) Track {
	t := Track{
		Path:  path,
		Mtime: mtime,
		Title: titleFromPath(path),
	}

	f, err := os.Open(path)
	if err != nil {
		return t
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return t
	}

	if title := strings.TrimSpace(m.Title()); title != "" {
		t.Title = title
	}
	t.Artist = m.Artist()
	t.AlbumArtist = m.AlbumArtist()
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
	t.Album = m.Album()
	t.TrackNumber, _ = m.Track()
	t.DiscNumber, _ = m.Disc()
	t.Year = m.Year()
	t.Genre = m.Genre()
	return t
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
