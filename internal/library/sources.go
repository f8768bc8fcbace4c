package library

import (
	"database/sql"
	"strings"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
)

// Sources returns the scanned directories, oldest first.
func (l *Library) Sources() ([]string, error) {
	rows, err := l.db.Query(`SELECT path FROM library_sources ORDER BY added_at, path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		sources = append(sources, path)
	}
	return sources, rows.Err()
}

// AddSource registers dir for scanning. Registering it twice fails.
func (l *Library) AddSource(dir string) error {
	return addSource(l.db, dir)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func addSource(db execer, dir string) error {
	_, err := db.Exec(`INSERT INTO library_sources (path, added_at) VALUES (?, ?)`, dir, time.Now().Unix())
	return err
}

// RemoveSource forgets dir together with every catalogued track under it.
// Queued tracks from dir stop resolving afterwards.
func (l *Library) RemoveSource(dir string) error {
	return dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM library_tracks WHERE path LIKE ? ESCAPE '\'`, underPattern(dir)); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM library_sources WHERE path = ?`, dir)
		return err
	})
}

// TrackCountBySource counts the catalogued tracks under dir.
func (l *Library) TrackCountBySource(dir string) (int, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_tracks WHERE path LIKE ? ESCAPE '\'`,
		underPattern(dir)).Scan(&n)
	return n, err
}

// SourceExists reports whether dir is registered, compared verbatim.
func (l *Library) SourceExists(dir string) (bool, error) {
	var n int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_sources WHERE path = ?`, dir).Scan(&n)
	return n > 0, err
}

// MigrateSources seeds the source list from the configured directories. It
// does nothing once any source is registered, so sources edited from the
// command line win over the config file.
func (l *Library) MigrateSources(dirs []string) error {
	return dbutil.WithTx(l.db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM library_sources`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, dir := range dirs {
			if dir == "" {
				continue
			}
			if err := addSource(tx, dir); err != nil {
				return err
			}
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// underPattern matches every path strictly inside dir. Wildcards in dir
// match literally.
func underPattern(dir string) string {
	return likeEscaper.Replace(strings.TrimSuffix(dir, "/")) + "/%"
}
