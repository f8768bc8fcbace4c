// Package lyrics reads lyrics stored next to audio files: LRC files with
// timestamps, or plain text.
package lyrics

import (
	"bufio"
	"cmp"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Line is one lyric line. Time is zero for unsynced lyrics.
type Line struct {
	Time time.Duration
	Text string
}

// Lyrics are parsed lyrics with the metadata the file carried.
type Lyrics struct {
	Lines  []Line
	Title  string
	Artist string
	Album  string
	Synced bool
}

// LineAt returns the index of the line sung at pos, or -1 before the first
// line and for unsynced lyrics.
func (l *Lyrics) LineAt(pos time.Duration) int {
	if !l.Synced {
		return -1
	}
	// First line starting after pos, minus one.
	i, _ := slices.BinarySearchFunc(l.Lines, pos, func(line Line, p time.Duration) int {
		if line.Time <= p {
			return -1
		}
		return 1
	})
	return i - 1
}

// Text returns the lyrics as plain text, one line per lyric line.
func (l *Lyrics) Text() string {
	texts := make([]string, len(l.Lines))
	for i, line := range l.Lines {
		texts[i] = line.Text
	}
	return strings.Join(texts, "\n")
}

var (
	// [mm:ss], [mm:ss.xx], [mm:ss.xxx] or [mm:ss:xx]
	timestampRe = regexp.MustCompile(`\[(\d+):(\d{1,2})(?:[.:](\d{1,3}))?\]`)

	// [ar:Artist Name]
	tagRe = regexp.MustCompile(`^\[([a-zA-Z]+):(.*)\]$`)
)

// ParseLRC parses LRC lyrics. Lines without a timestamp are ignored, lines
// with several timestamps are repeated at each of them, and an [offset:ms]
// tag shifts every timestamp earlier by that many milliseconds.
func ParseLRC(r io.Reader) (*Lyrics, error) {
	lyrics := &Lyrics{}
	var offset time.Duration

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if tag := tagRe.FindStringSubmatch(line); tag != nil && !timestampRe.MatchString(line) {
			value := strings.TrimSpace(tag[2])
			switch strings.ToLower(tag[1]) {
			case "ar":
				lyrics.Artist = value
			case "ti":
				lyrics.Title = value
			case "al":
				lyrics.Album = value
			case "offset":
				if ms, err := strconv.Atoi(value); err == nil {
					offset = time.Duration(ms) * time.Millisecond
				}
			}
			continue
		}

		stamps := timestampRe.FindAllStringSubmatchIndex(line, -1)
		if len(stamps) == 0 {
			continue
		}
		text := strings.TrimSpace(line[stamps[len(stamps)-1][1]:])
		for _, loc := range stamps {
			ts, ok := parseTimestamp(line[loc[0]:loc[1]])
			if !ok {
				continue
			}
			lyrics.Lines = append(lyrics.Lines, Line{Time: ts, Text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for i := range lyrics.Lines {
		lyrics.Lines[i].Time = max(lyrics.Lines[i].Time-offset, 0)
	}
	slices.SortStableFunc(lyrics.Lines, func(a, b Line) int {
		return cmp.Compare(a.Time, b.Time)
	})
	lyrics.Synced = slices.ContainsFunc(lyrics.Lines, func(l Line) bool { return l.Time > 0 })
	return lyrics, nil
}

// ParsePlain reads unsynced lyrics, one non-empty line per lyric line.
func ParsePlain(r io.Reader) (*Lyrics, error) {
	lyrics := &Lyrics{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if text := strings.TrimSpace(scanner.Text()); text != "" {
			lyrics.Lines = append(lyrics.Lines, Line{Text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lyrics, nil
}

func parseTimestamp(s string) (time.Duration, bool) {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil || seconds >= 60 {
		return 0, false
	}

	var frac time.Duration
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return 0, false
		}
		// .x is tenths, .xx hundredths, .xxx milliseconds
		switch len(m[3]) {
		case 1:
			frac = time.Duration(n) * 100 * time.Millisecond
		case 2:
			frac = time.Duration(n) * 10 * time.Millisecond
		default:
			frac = time.Duration(n) * time.Millisecond
		}
	}
	return time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second + frac, true
}
