package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/state"
)

// ExportSection writes one section to w as a standalone JSON document.
// It returns ErrNothingToExport when the section holds no data.
func (s *Service) ExportSection(ctx context.Context, w io.Writer, sec Section) error {
	data, err := s.exportSection(ctx, sec)
	if err != nil {
		s.logExport(sec, err)
		return err
	}
	if err := writeJSON(w, data); err != nil {
		s.logExport(sec, err)
		return err
	}
	return nil
}

// Export writes a full backup holding every section that has data.
// Empty or failing sections are left out and reported; the file is written
// as long as at least one section has data.
func (s *Service) Export(ctx context.Context, w io.Writer) (Report, error) {
	file := make(map[Section]any, len(Sections))
	report := make(Report, 0, len(Sections))
	for _, sec := range Sections {
		data, err := s.exportSection(ctx, sec)
		if err != nil {
			s.logExport(sec, err)
		} else {
			file[sec] = data
		}
		report = append(report, resultOf(sec, err))
	}
	if len(file) == 0 {
		return report, ErrNothingToExport
	}

	doc := map[string]any{"version": Version}
	for sec, data := range file {
		doc[string(sec)] = data
	}
	if err := writeJSON(w, doc); err != nil {
		s.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpBackupExport, err))
		return report, err
	}
	return report, nil
}

func (s *Service) exportSection(ctx context.Context, sec Section) (any, error) {
	switch sec {
	case PlayingQueues:
		return s.exportQueues()
	case Favorites:
		return s.exportFavorites(ctx)
	case PathFilter:
		return s.exportPathFilter(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, sec)
	}
}

func (s *Service) exportQueues() (any, error) {
	playing := s.queue.PlayingQueue()
	original := s.queue.OriginalQueue()
	if len(playing) == 0 && len(original) == 0 {
		return nil, ErrNothingToExport
	}
	return queuesSection{
		Version:  version(),
		Playing:  songsOf(playing),
		Original: songsOf(original),
	}, nil
}

func (s *Service) exportFavorites(ctx context.Context) (any, error) {
	tracks, err := s.store.Favorites(ctx)
	if err != nil {
		return nil, err
	}
	pinned, err := s.store.PinnedPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 && len(pinned) == 0 {
		return nil, ErrNothingToExport
	}
	return favoritesSection{
		Version:   version(),
		Songs:     songsOf(tracks),
		Playlists: pinnedOf(pinned),
	}, nil
}

func (s *Service) exportPathFilter(ctx context.Context) (any, error) {
	white, err := s.store.PathFilters(ctx, state.Whitelist)
	if err != nil {
		return nil, err
	}
	black, err := s.store.PathFilters(ctx, state.Blacklist)
	if err != nil {
		return nil, err
	}
	if len(white) == 0 && len(black) == 0 {
		return nil, ErrNothingToExport
	}
	return pathFilterSection{
		Version:   version(),
		Whitelist: orEmpty(white),
		Blacklist: orEmpty(black),
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Service) logExport(sec Section, err error) {
	ev := s.logger.Warn()
	if isEmpty(err) {
		ev = s.logger.Debug()
	}
	ev.Err(err).Str("section", string(sec)).Msg(errmsg.Format(errmsg.OpBackupExport, err))
}
