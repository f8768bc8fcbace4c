package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/state"
)

func newFavoritesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "List favorite tracks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				favs, err := s.store.Favorites(cmd.Context())
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpFavoriteLoad, err)
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), tracksJSON(favs))
				}
				out := cmd.OutOrStdout()
				if len(favs) == 0 {
					fmt.Fprintln(out, mutedStyle.Render("No favorites"))
					return nil
				}
				t := newTable("TITLE", "ARTIST", "ALBUM").limit(0, 40).limit(1, 28).limit(2, 28)
				for _, f := range favs {
					t.row(lipgloss.NewStyle(), f.Title, f.Artist, f.Album)
				}
				t.render(out)
				fmt.Fprintln(out, mutedStyle.Render(countOf(len(favs), "favorite", "favorites")))
				return nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle [path]",
		Short: "Add or remove a track from favorites (default: current track)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				track, ok := s.queue.CurrentTrack()
				if len(args) == 1 {
					var err error
					if track, err = s.resolveTrack(args[0]); err != nil {
						return err
					}
				} else if !ok {
					return fmt.Errorf("no current track")
				}

				fav, err := s.store.ToggleFavorite(cmd.Context(), track)
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpFavoriteToggle, err)
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"track": toTrackJSON(track), "favorite": fav,
					})
				}
				if fav {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", currentStyle.Render("♥"), trackLabel(track))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mutedStyle.Render("♡"), trackLabel(track))
				}
				return nil
			})
		},
	}

	cmd.AddCommand(toggle, newPinnedCmd(e))
	return cmd
}

func newPinnedCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pinned",
		Short: "List pinned playlists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				pinned, err := s.store.PinnedPlaylists(cmd.Context())
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpPinnedLoad, err)
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), pinned)
				}
				if len(pinned) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No pinned playlists"))
					return nil
				}
				t := newTable("NAME", "PATH").limit(0, 40)
				for _, p := range pinned {
					t.row(lipgloss.NewStyle(), p.Name, p.Path)
				}
				t.render(cmd.OutOrStdout())
				return nil
			})
		},
	}

	var name string
	pin := &cobra.Command{
		Use:   "pin <playlist>",
		Short: "Pin a playlist file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			p := state.PinnedPlaylist{Path: path, Name: name}
			if p.Name == "" {
				p.Name = titleFromName(path)
			}
			return e.withSession(func(s *session) error {
				if err := s.store.PinPlaylist(cmd.Context(), p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s\n", p.Name)
				return nil
			})
		},
	}
	pin.Flags().StringVar(&name, "name", "", "display name (default: file name)")

	unpin := &cobra.Command{
		Use:   "unpin <playlist>",
		Short: "Unpin a playlist file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return e.withSession(func(s *session) error {
				return s.store.UnpinPlaylist(cmd.Context(), path)
			})
		},
	}

	cmd.AddCommand(pin, unpin)
	return cmd
}

func newFilterCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List path filters applied to added files",
		Long: `Path filters decide which files "queue open" and "queue add" accept.
Blacklisted directories are always skipped. When the whitelist is not
empty, only files under a whitelisted directory are accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				f, err := loadPathFilter(cmd.Context(), s.store)
				if err != nil {
					return fmt.Errorf("%s: %w", errmsg.OpFilterLoad, err)
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string][]string{
						string(state.Whitelist): orNone(f.whitelist),
						string(state.Blacklist): orNone(f.blacklist),
					})
				}
				t := newTable("KIND", "PATH")
				for _, p := range f.whitelist {
					t.row(lipgloss.NewStyle(), string(state.Whitelist), p)
				}
				for _, p := range f.blacklist {
					t.row(lipgloss.NewStyle(), string(state.Blacklist), p)
				}
				t.render(cmd.OutOrStdout())
				return nil
			})
		},
	}

	edit := func(use, short string, fn func(s *session, cmd *cobra.Command, kind state.FilterKind, path string) error) *cobra.Command {
		return &cobra.Command{
			Use:       use + " <whitelist|blacklist> <dir>",
			Short:     short,
			Args:      cobra.ExactArgs(2),
			ValidArgs: []string{string(state.Whitelist), string(state.Blacklist)},
			RunE: func(cmd *cobra.Command, args []string) error {
				kind := state.FilterKind(strings.ToLower(args[0]))
				path, err := filepath.Abs(args[1])
				if err != nil {
					return err
				}
				return e.withSession(func(s *session) error {
					return fn(s, cmd, kind, path)
				})
			},
		}
	}

	cmd.AddCommand(
		edit("add", "Add a directory to a filter list", func(s *session, cmd *cobra.Command, kind state.FilterKind, path string) error {
			return s.store.AddPathFilter(cmd.Context(), kind, path)
		}),
		edit("remove", "Remove a directory from a filter list", func(s *session, cmd *cobra.Command, kind state.FilterKind, path string) error {
			return s.store.RemovePathFilter(cmd.Context(), kind, path)
		}),
	)
	return cmd
}

func orNone(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}
