package cli

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/library"
	"github.com/llehouerou/cadence/internal/playlist"
)

func newLibraryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage the music library",
	}
	cmd.AddCommand(
		newLibraryScanCmd(e),
		newLibraryTracksCmd(e),
		newLibrarySourcesCmd(e),
	)
	return cmd
}

func newLibraryScanCmd(e *env) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan library sources for new, changed and removed files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				lib := s.store.Library()
				sources, err := lib.Sources()
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpSourceLoad, err)
				}
				if len(sources) == 0 {
					return fmt.Errorf("no library sources; add one with \"cadence library sources add <dir>\"")
				}

				progress := make(chan library.ScanProgress)
				done := make(chan struct{})
				go func() {
					defer close(done)
					for p := range progress {
						e.logger.Debug().
							Str("phase", p.Phase).
							Int("current", p.Current).
							Int("total", p.Total).
							Msg("scan progress")
					}
				}()

				scan := lib.Scan
				if full {
					scan = lib.FullScan
				}
				stats, err := scan(cmd.Context(), sources, progress)
				<-done
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpLibraryScan, err)
				}

				// Queued library tracks pick up the new metadata; removed
				// files leave the queue.
				s.queue.RefreshTracks(lib.Resolve)

				added, updated, removed := stats.Totals()
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]int{
						"added": added, "updated": updated, "removed": removed,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s added, %s updated, %s removed\n",
					countOf(added, "track", "tracks"),
					countOf(updated, "track", "tracks"),
					countOf(removed, "track", "tracks"))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "re-read every file, ignoring modification times")
	return cmd
}

func newLibraryTracksCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "List library tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				tracks, err := s.store.Library().Tracks()
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpLibraryLoad, err)
				}
				total := len(tracks)
				if limit > 0 && len(tracks) > limit {
					tracks = tracks[:limit]
				}

				playable := make([]playlist.Track, len(tracks))
				for i, t := range tracks {
					playable[i] = t.Playable()
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), tracksJSON(playable))
				}

				out := cmd.OutOrStdout()
				t := newTable("TITLE", "ARTIST", "ALBUM", "TIME", "PATH").
					limit(0, 40).limit(1, 28).limit(2, 28).limit(4, 60)
				for _, tr := range playable {
					t.row(lipgloss.NewStyle(), tr.Title, tr.Artist, tr.Album, formatDuration(tr.Duration), tr.Path)
				}
				t.render(out)
				fmt.Fprintln(out, mutedStyle.Render(countOf(total, "track", "tracks")))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "maximum number of tracks to show (0 for all)")
	return cmd
}

func newLibrarySourcesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List library source directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				lib := s.store.Library()
				sources, err := lib.Sources()
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpSourceLoad, err)
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), sources)
				}
				if len(sources) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No library sources"))
					return nil
				}
				t := newTable("SOURCE", "TRACKS")
				for _, src := range sources {
					n, err := lib.TrackCountBySource(src)
					if err != nil {
						return err
					}
					t.row(lipgloss.NewStyle(), src, countOf(n, "track", "tracks"))
				}
				t.render(cmd.OutOrStdout())
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <dir>",
		Short: "Add a library source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return e.withSession(func(s *session) error {
				lib := s.store.Library()
				exists, err := lib.SourceExists(dir)
				if err != nil {
					return err
				}
				if exists {
					return fmt.Errorf("%s is already a library source", dir)
				}
				if err := lib.AddSource(dir); err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpSourceAdd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", dir)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:     "remove <dir>",
		Aliases: []string{"rm"},
		Short:   "Remove a library source and its tracks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return e.withSession(func(s *session) error {
				lib := s.store.Library()
				if err := lib.RemoveSource(dir); err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpSourceRemove, err)
				}
				s.queue.RefreshTracks(lib.Resolve)
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", dir)
				return nil
			})
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}
