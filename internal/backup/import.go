package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/state"
)

// ImportSection reads one standalone section document from r and applies
// it. It returns ErrNothingToImport when the document carries no data for
// the section, and wraps ErrMalformed when it cannot be decoded.
func (s *Service) ImportSection(ctx context.Context, r io.Reader, sec Section) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.logImport(sec, err)
		return err
	}
	err = s.importSection(ctx, sec, raw)
	if err != nil {
		s.logImport(sec, err)
	}
	return err
}

// Import reads a full backup from r and imports every section it holds.
// Sections import independently; the returned error is set only when the
// file itself cannot be read or decoded.
func (s *Service) Import(ctx context.Context, r io.Reader) (Report, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
		s.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpBackupImport, err))
		return nil, err
	}
	if err := checkVersion(doc["version"]); err != nil {
		s.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpBackupImport, err))
		return nil, err
	}

	report := make(Report, 0, len(Sections))
	for _, sec := range Sections {
		raw, ok := doc[string(sec)]
		var err error
		if !ok || isNull(raw) {
			err = ErrNothingToImport
		} else {
			err = s.importSection(ctx, sec, raw)
		}
		if err != nil {
			s.logImport(sec, err)
		}
		report = append(report, resultOf(sec, err))
	}
	return report, nil
}

func (s *Service) importSection(ctx context.Context, sec Section, raw []byte) error {
	switch sec {
	case PlayingQueues:
		var data queuesSection
		if err := decode(raw, &data, &data.Version); err != nil {
			return err
		}
		return s.importQueues(data)
	case Favorites:
		var data favoritesSection
		if err := decode(raw, &data, &data.Version); err != nil {
			return err
		}
		return s.importFavorites(ctx, data)
	case PathFilter:
		var data pathFilterSection
		if err := decode(raw, &data, &data.Version); err != nil {
			return err
		}
		return s.importPathFilter(ctx, data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSection, sec)
	}
}

// decode unmarshals a section. version points at the decoded version
// field, which may be absent.
func decode(raw []byte, v any, version **int) error {
	if isNull(raw) {
		return ErrNothingToImport
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if *version != nil && **version > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, **version)
	}
	return nil
}

func checkVersion(raw json.RawMessage) error {
	if raw == nil {
		return nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: version: %w", ErrMalformed, err)
	}
	if v > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return nil
}

func isNull(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func (s *Service) importQueues(data queuesSection) error {
	if data.Playing == nil && data.Original == nil {
		return ErrNothingToImport
	}
	playing := s.matchSongs(data.Playing)
	original := s.matchSongs(data.Original)
	if data.Playing == nil {
		playing = original
	}
	if data.Original == nil {
		original = playing
	}
	if len(playing) == 0 && len(original) == 0 {
		return ErrNothingToImport
	}
	s.queue.ReplaceQueues(playing, original)
	s.logger.Info().
		Int("playing", len(playing)).
		Int("original", len(original)).
		Msg("queues imported")
	return nil
}

func (s *Service) importFavorites(ctx context.Context, data favoritesSection) error {
	songs := s.matchSongs(data.Songs)
	var pinned []state.PinnedPlaylist
	for _, p := range data.Playlists {
		if s.playlistExists(p.Path) {
			pinned = append(pinned, state.PinnedPlaylist{Path: p.Path, Name: p.Title})
		}
	}
	if len(songs) == 0 && len(pinned) == 0 {
		return ErrNothingToImport
	}

	if len(songs) > 0 {
		if err := s.store.SetFavorites(ctx, songs); err != nil {
			return err
		}
	}
	if len(pinned) > 0 {
		if err := s.store.SetPinnedPlaylists(ctx, pinned); err != nil {
			return err
		}
	}
	s.logger.Info().
		Int("favorites", len(songs)).
		Int("pinned", len(pinned)).
		Msg("favorites imported")
	return nil
}

func (s *Service) importPathFilter(ctx context.Context, data pathFilterSection) error {
	if data.Whitelist == nil && data.Blacklist == nil {
		return ErrNothingToImport
	}
	if data.Blacklist != nil {
		if err := s.store.SetPathFilters(ctx, state.Blacklist, data.Blacklist); err != nil {
			return err
		}
	}
	if data.Whitelist != nil {
		if err := s.store.SetPathFilters(ctx, state.Whitelist, data.Whitelist); err != nil {
			return err
		}
	}
	return nil
}

// matchSongs maps songs to live tracks by path. Unmatched songs are
// skipped. The result is nil only when songs is nil.
func (s *Service) matchSongs(songs []song) []playlist.Track {
	if songs == nil {
		return nil
	}
	tracks := make([]playlist.Track, 0, len(songs))
	for _, sg := range songs {
		if t, ok := s.store.ResolvePath(sg.Path, sg.track()); ok {
			tracks = append(tracks, t)
		} else {
			s.logger.Debug().Str("path", sg.Path).Msg("backup song not found")
		}
	}
	return tracks
}

func isEmpty(err error) bool {
	return errors.Is(err, ErrNothingToExport) || errors.Is(err, ErrNothingToImport)
}

func (s *Service) logImport(sec Section, err error) {
	ev := s.logger.Warn()
	if isEmpty(err) {
		ev = s.logger.Debug()
	}
	ev.Err(err).Str("section", string(sec)).Msg(errmsg.Format(errmsg.OpBackupImport, err))
}
