package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
)

// FilterKind selects one of the two path filter lists.
type FilterKind string

const (
	Whitelist FilterKind = "whitelist"
	Blacklist FilterKind = "blacklist"
)

func (k FilterKind) valid() bool {
	return k == Whitelist || k == Blacklist
}

// PathFilters returns the paths of one filter list in insertion order.
func (m *Manager) PathFilters(ctx context.Context, kind FilterKind) ([]string, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("unknown path filter %q", kind)
	}
	rows, err := m.db.QueryContext(ctx, `
		SELECT path FROM path_filters WHERE kind = ? ORDER BY added_at, rowid
	`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// AddPathFilter adds path to a list. Adding twice is a no-op.
func (m *Manager) AddPathFilter(ctx context.Context, kind FilterKind, path string) error {
	if !kind.valid() {
		return fmt.Errorf("unknown path filter %q", kind)
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO path_filters (kind, path, added_at) VALUES (?, ?, ?)
	`, string(kind), path, time.Now().Unix())
	return err
}

func (m *Manager) RemovePathFilter(ctx context.Context, kind FilterKind, path string) error {
	_, err := m.db.ExecContext(ctx, `
		DELETE FROM path_filters WHERE kind = ? AND path = ?
	`, string(kind), path)
	return err
}

// SetPathFilters replaces one list.
func (m *Manager) SetPathFilters(ctx context.Context, kind FilterKind, paths []string) error {
	if !kind.valid() {
		return fmt.Errorf("unknown path filter %q", kind)
	}
	return dbutil.WithTxContext(ctx, m.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM path_filters WHERE kind = ?`, string(kind)); err != nil {
			return err
		}
		now := time.Now().Unix()
		for _, p := range paths {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO path_filters (kind, path, added_at) VALUES (?, ?, ?)
			`, string(kind), p, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
