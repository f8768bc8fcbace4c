package lyrics

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no lyrics file exists for a track.
var ErrNotFound = errors.New("lyrics not found")

// Finder looks up lyrics for an audio file.
type Finder interface {
	Find(ctx context.Context, audioPath string) (*Lyrics, error)
}

// Files finds lyrics stored next to the audio file: song.lrc first, then
// song.txt. Extensions are matched case-insensitively.
type Files struct{}

var _ Finder = Files{}

func (Files) Find(ctx context.Context, audioPath string) (*Lyrics, error) {
	if audioPath == "" {
		return nil, ErrNotFound
	}
	candidates := siblings(audioPath)
	for _, kind := range []struct {
		ext   string
		parse func(io.Reader) (*Lyrics, error)
	}{
		{".lrc", ParseLRC},
		{".txt", ParsePlain},
	} {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, ok := candidates[kind.ext]
		if !ok {
			continue
		}
		lyrics, err := parseFile(path, kind.parse)
		if err != nil {
			return nil, err
		}
		if len(lyrics.Lines) > 0 {
			return lyrics, nil
		}
	}
	return nil, ErrNotFound
}

// siblings maps lowercase extension to the path of each file sharing the
// audio file's base name.
func siblings(audioPath string) map[string]string {
	dir := filepath.Dir(audioPath)
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	found := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		ext := filepath.Ext(name)
		if e.IsDir() || strings.TrimSuffix(name, ext) != base {
			continue
		}
		lower := strings.ToLower(ext)
		if _, ok := found[lower]; !ok {
			found[lower] = filepath.Join(dir, name)
		}
	}
	return found
}

func parseFile(path string, parse func(io.Reader) (*Lyrics, error)) (*Lyrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}
