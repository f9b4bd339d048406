package catalog

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/avrabel/longwave/internal/db"
)

const cacheFileName = "longwave/catalog.db"

// Cache stores fetched metadata documents in SQLite with a TTL, so a
// station already seen keeps working when the data roots are unreachable.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// OpenCache opens the cache database under the XDG cache directory.
func OpenCache(ttlDays int) (*Cache, error) {
	path, err := xdg.CacheFile(cacheFileName)
	if err != nil {
		return nil, err
	}
	return openCache(path, time.Duration(ttlDays)*24*time.Hour)
}

func openCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_entries (
			station TEXT PRIMARY KEY,
			body BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &Cache{db: sqlDB, ttl: ttl}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached document for a station if it has not expired.
func (c *Cache) Get(station string) ([]byte, bool) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(`
		SELECT body, fetched_at FROM catalog_entries WHERE station = ?
	`, station).Scan(&body, &fetchedAt)
	if err != nil {
		return nil, false
	}

	if time.Since(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false
	}
	return body, true
}

// Put stores a freshly fetched document for a station.
func (c *Cache) Put(station string, body []byte) error {
	return db.WithTx(c.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO catalog_entries (station, body, fetched_at)
			VALUES (?, ?, ?)
			ON CONFLICT(station) DO UPDATE SET
				body = excluded.body,
				fetched_at = excluded.fetched_at
		`, station, body, time.Now().Unix())
		return err
	})
}
