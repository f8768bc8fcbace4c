package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llehouerou/cadence/internal/queue"
	"github.com/llehouerou/cadence/internal/remote"
)

func newQueueCmd(e *env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "queue",
		Aliases: []string{"q"},
		Short:   "Show and edit the playing queue",
		Long: `Show and edit the playing queue.

Positions are 1-based, as shown by "cadence queue".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				snap := s.queue.Snapshot()
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), toQueueJSON(snap))
				}
				printQueue(cmd.OutOrStdout(), snap, limit)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of tracks to show (0 for all)")

	cmd.AddCommand(
		newQueueOpenCmd(e),
		newQueueAddCmd(e),
		newQueueRemoveCmd(e),
		newQueueMoveCmd(e),
		newQueueJumpCmd(e),
		simpleQueueCmd(e, "next", "Skip to the next track", (*remote.Remote).Next),
		simpleQueueCmd(e, "prev", "Go back to the previous track", (*remote.Remote).Previous),
		newQueueShuffleCmd(e),
		newQueueRepeatCmd(e),
		simpleQueueCmd(e, "clear", "Empty the queue", (*remote.Remote).Clear),
		simpleQueueCmd(e, "undo", "Revert the last queue change", (*remote.Remote).Undo),
		simpleQueueCmd(e, "redo", "Re-apply the last undone change", (*remote.Remote).Redo),
	)
	return cmd
}

// mutate runs fn against the queue and reports the resulting state.
func (e *env) mutate(cmd *cobra.Command, fn func(s *session) (bool, error)) error {
	return e.withSession(func(s *session) error {
		changed, err := fn(s)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		snap := s.queue.Snapshot()
		if e.flags.jsonOut {
			return writeJSON(out, toQueueJSON(snap))
		}
		if !changed {
			printUnchanged(out)
			return nil
		}
		printStatus(out, snap)
		return nil
	})
}

func simpleQueueCmd(e *env, use, short string, fn func(*remote.Remote) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				return fn(s.remote), nil
			})
		},
	}
}

func newQueueOpenCmd(e *env) *cobra.Command {
	var (
		start   int
		shuffle bool
		play    bool
	)
	cmd := &cobra.Command{
		Use:   "open <path>...",
		Short: "Replace the queue with files or directories",
		Long: `Replace the queue with the given files, and the music files found under
the given directories.

Examples:
  cadence queue open ~/Music/album
  cadence queue open --shuffle ~/Music
  cadence queue open --start 3 a.flac b.flac c.flac`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				tracks, err := s.collectTracks(cmd.Context(), args)
				if err != nil {
					return false, err
				}
				if shuffle {
					return s.remote.OpenAndShuffleQueue(tracks, play), nil
				}
				if start < 1 || start > len(tracks) {
					return false, fmt.Errorf("start %d: %w", start, queue.ErrIndexOutOfRange)
				}
				return s.remote.OpenQueue(tracks, start-1, play), nil
			})
		},
	}
	cmd.Flags().IntVar(&start, "start", 1, "position of the first track to play")
	cmd.Flags().BoolVarP(&shuffle, "shuffle", "s", false, "shuffle the tracks, starting from a random one")
	cmd.Flags().BoolVarP(&play, "play", "p", false, "start playback")
	cmd.MarkFlagsMutuallyExclusive("start", "shuffle")
	return cmd
}

func newQueueAddCmd(e *env) *cobra.Command {
	var next, now bool
	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Add files or directories to the queue",
		Long: `Append tracks to the queue, or insert them after the current track.

Examples:
  cadence queue add song.flac
  cadence queue add --next ~/Music/album
  cadence queue add --now song.flac`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				tracks, err := s.collectTracks(cmd.Context(), args)
				if err != nil {
					return false, err
				}
				switch {
				case now:
					return s.remote.PlayNow(tracks...), nil
				case next:
					return s.remote.PlayNext(tracks...), nil
				default:
					return s.remote.Enqueue(tracks...), nil
				}
			})
		},
	}
	cmd.Flags().BoolVarP(&next, "next", "n", false, "play after the current track")
	cmd.Flags().BoolVar(&now, "now", false, "play right away")
	cmd.MarkFlagsMutuallyExclusive("next", "now")
	return cmd
}

func newQueueRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <position>",
		Aliases: []string{"rm"},
		Short:   "Remove a track from the queue",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				i, err := parsePosition(args[0], s.queue.Len())
				if err != nil {
					return false, err
				}
				return s.remote.RemoveFromQueue(i), nil
			})
		},
	}
}

func newQueueMoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a track within the queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				n := s.queue.Len()
				from, err := parsePosition(args[0], n)
				if err != nil {
					return false, err
				}
				to, err := parsePosition(args[1], n)
				if err != nil {
					return false, err
				}
				return s.remote.Move(from, to), nil
			})
		},
	}
}

func newQueueJumpCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "jump <position>",
		Short: "Play the track at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				i, err := parsePosition(args[0], s.queue.Len())
				if err != nil {
					return false, err
				}
				return s.remote.JumpTo(i), nil
			})
		},
	}
}

func newQueueShuffleCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "shuffle [on|off]",
		Short:     "Set or toggle shuffle",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				if len(args) == 0 {
					return s.remote.ToggleShuffle(), nil
				}
				mode, err := queue.ParseShuffleMode(args[0])
				if err != nil {
					return false, err
				}
				return s.remote.SetShuffle(mode), nil
			})
		},
	}
}

func newQueueRepeatCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:       "repeat [off|all|one]",
		Short:     "Set or cycle the repeat mode",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"off", "all", "one"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.mutate(cmd, func(s *session) (bool, error) {
				if len(args) == 0 {
					return s.remote.CycleRepeat(), nil
				}
				mode, err := queue.ParseRepeatMode(args[0])
				if err != nil {
					return false, err
				}
				return s.remote.SetRepeat(mode), nil
			})
		},
	}
}

// parsePosition converts a 1-based position argument into a queue index.
func parsePosition(arg string, n int) (int, error) {
	p, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	if p < 1 || p > n {
		return 0, fmt.Errorf("position %d: %w", p, queue.ErrIndexOutOfRange)
	}
	return p - 1, nil
}
