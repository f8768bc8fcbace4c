package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// Colors
var (
	colorAccent = lipgloss.Color("#1DB954")
	colorMuted  = lipgloss.Color("#535353")
	colorWarn   = lipgloss.Color("#FFA500")
)

// Styles
var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarn)
)

const ellipsis = "…"

// table renders aligned columns. Cells are truncated to their column's
// maximum display width.
type table struct {
	headers []string
	max     []int // 0 means unbounded
	rows    [][]string
	styles  []lipgloss.Style
}

func newTable(headers ...string) *table {
	return &table{headers: headers, max: make([]int, len(headers))}
}

// limit caps the display width of column i.
func (t *table) limit(i, width int) *table {
	t.max[i] = width
	return t
}

func (t *table) row(style lipgloss.Style, values ...string) {
	t.rows = append(t.rows, values)
	t.styles = append(t.styles, style)
}

func (t *table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range t.rows {
		for i, v := range r {
			if w := runewidth.StringWidth(v); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, m := range t.max {
		if m > 0 && widths[i] > m {
			widths[i] = m
		}
	}
	return widths
}

func (t *table) render(w io.Writer) {
	widths := t.widths()
	line := func(values []string) string {
		cells := make([]string, len(values))
		for i, v := range values {
			v = runewidth.Truncate(v, widths[i], ellipsis)
			if i < len(values)-1 {
				v = runewidth.FillRight(v, widths[i])
			}
			cells[i] = v
		}
		return strings.Join(cells, "  ")
	}

	fmt.Fprintln(w, headerStyle.Render(line(t.headers)))
	for i, r := range t.rows {
		fmt.Fprintln(w, t.styles[i].Render(line(r)))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatDuration formats d as m:ss or h:mm:ss.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func countOf(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return humanize.Comma(int64(n)) + " " + plural
}

func trackLabel(t playlist.Track) string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

type trackJSON struct {
	ID       int64  `json:"id,omitempty"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Artist   string `json:"artist,omitempty"`
	Album    string `json:"album,omitempty"`
	Track    int    `json:"track_number,omitempty"`
	Duration int64  `json:"duration_ms,omitempty"`
}

func toTrackJSON(t playlist.Track) trackJSON {
	return trackJSON{
		ID:       t.ID,
		Path:     t.Path,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Track:    t.TrackNumber,
		Duration: t.Duration.Milliseconds(),
	}
}

func tracksJSON(tracks []playlist.Track) []trackJSON {
	out := make([]trackJSON, len(tracks))
	for i, t := range tracks {
		out[i] = toTrackJSON(t)
	}
	return out
}

type queueJSON struct {
	Position int         `json:"position"`
	Shuffle  string      `json:"shuffle"`
	Repeat   string      `json:"repeat"`
	Tracks   []trackJSON `json:"tracks"`
}

func toQueueJSON(s queue.Snapshot) queueJSON {
	return queueJSON{
		Position: s.Position,
		Shuffle:  strings.ToLower(s.Shuffle.String()),
		Repeat:   strings.ToLower(s.Repeat.String()),
		Tracks:   tracksJSON(s.Playing),
	}
}

// printQueue renders the playing queue, at most limit rows around the
// current track. limit <= 0 shows everything.
func printQueue(w io.Writer, s queue.Snapshot, limit int) {
	if s.Len() == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Queue is empty"))
		return
	}

	start, end := window(s.Len(), s.Position, limit)
	t := newTable("#", "TITLE", "ARTIST", "ALBUM", "TIME").
		limit(1, 40).limit(2, 28).limit(3, 28)
	for i := start; i < end; i++ {
		tr := s.Playing[i]
		style := lipgloss.NewStyle()
		marker := fmt.Sprintf(" %d", i+1)
		if i == s.Position {
			style = currentStyle
			marker = fmt.Sprintf("▶%d", i+1)
		}
		t.row(style, marker, tr.Title, tr.Artist, tr.Album, formatDuration(tr.Duration))
	}
	t.render(w)

	var total time.Duration
	for _, tr := range s.Playing {
		total += tr.Duration
	}
	footer := fmt.Sprintf("%s · %s · shuffle %s · repeat %s",
		countOf(s.Len(), "track", "tracks"), formatDuration(total),
		strings.ToLower(s.Shuffle.String()), strings.ToLower(s.Repeat.String()))
	if end-start < s.Len() {
		footer += fmt.Sprintf(" · showing %d-%d", start+1, end)
	}
	fmt.Fprintln(w, mutedStyle.Render(footer))
}

// window picks up to limit rows of n, starting a little before position.
func window(n, position, limit int) (start, end int) {
	if limit <= 0 || limit >= n {
		return 0, n
	}
	start = max(position-2, 0)
	end = start + limit
	if end > n {
		end = n
		start = n - limit
	}
	return start, end
}

// printStatus prints a one-line summary of the queue.
func printStatus(w io.Writer, s queue.Snapshot) {
	cur, ok := s.Current()
	if !ok {
		fmt.Fprintln(w, mutedStyle.Render("Queue is empty"))
		return
	}
	fmt.Fprintf(w, "%s %s\n",
		currentStyle.Render(fmt.Sprintf("▶ %d/%d", s.Position+1, s.Len())),
		trackLabel(cur))
}

func printUnchanged(w io.Writer) {
	fmt.Fprintln(w, warnStyle.Render("Nothing changed"))
}
