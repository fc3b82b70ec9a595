package zbp

import (
	"database/sql"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xmdtoolbox/zbp/thumb"
)

// Decoded thumbnails kept in memory in front of the database.
const thumbCacheSize = 256

// Brush is one indexed brush preset file.
type Brush struct {
	Name     string
	Path     string
	Category string
	Favorite bool
}

// DB stores decoded thumbnails and brush metadata in a SQLite database.
// Thumbnail blobs are zstd compressed on disk and fronted by a small LRU
// cache keyed by path and modification time.
type DB struct {
	db    *sql.DB
	cache *lru.Cache[string, []byte]
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS thumbnail (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, mtime INTEGER NOT NULL, rgba BLOB NOT NULL)"); err != nil {
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS brush (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL, path TEXT NOT NULL UNIQUE, category TEXT NOT NULL DEFAULT '', favorite INTEGER NOT NULL DEFAULT 0)"); err != nil {
		return nil, err
	}

	cache, err := lru.New[string, []byte](thumbCacheSize)
	if err != nil {
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &DB{
		db:    db,
		cache: cache,
		enc:   enc,
		dec:   dec,
	}, nil
}

func (db *DB) Close() error {
	db.dec.Close()
	if err := db.enc.Close(); err != nil {
		db.db.Close()
		return err
	}
	return db.db.Close()
}

func cacheKey(path string, mtime int64) string {
	return fmt.Sprintf("%s@%d", path, mtime)
}

// Thumbnail returns the stored RGBA pixels for path, or nil if there is no
// entry matching both path and mtime.
func (db *DB) Thumbnail(path string, mtime int64) ([]byte, error) {
	key := cacheKey(path, mtime)
	if pix, ok := db.cache.Get(key); ok {
		return pix, nil
	}

	var blob []byte
	switch err := db.db.QueryRow("SELECT rgba FROM thumbnail WHERE path = ? AND mtime = ?", path, mtime).Scan(&blob); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		pix, err := db.dec.DecodeAll(blob, make([]byte, 0, thumb.PixelBytes))
		if err != nil {
			return nil, err
		}
		db.cache.Add(key, pix)
		return pix, nil
	default:
		return nil, err
	}
}

// SetThumbnail stores the RGBA pixels for path, replacing any entry from an
// earlier modification time.
func (db *DB) SetThumbnail(path string, mtime int64, pix []byte) error {
	if len(pix) != thumb.PixelBytes {
		return errors.New("zbp: incorrect thumbnail length")
	}

	blob := db.enc.EncodeAll(pix, make([]byte, 0, len(pix)>>2))

	if _, err := db.db.Exec("INSERT OR REPLACE INTO thumbnail (path, mtime, rgba) VALUES (?, ?, ?)", path, mtime, blob); err != nil {
		return err
	}
	db.cache.Add(cacheKey(path, mtime), pix)

	return nil
}

// SetBrush records a brush file, updating its name and category if the path
// is already known. The favorite flag survives rescans.
func (db *DB) SetBrush(name, path, category string) error {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM brush WHERE path = ?", path).Scan(&id); err {
	case sql.ErrNoRows:
		_, err := db.db.Exec("INSERT INTO brush (name, path, category) VALUES (?, ?, ?)", name, path, category)
		return err
	case nil:
		_, err := db.db.Exec("UPDATE brush SET name = ?, category = ? WHERE id = ?", name, category, id)
		return err
	default:
		return err
	}
}

func (db *DB) SetFavorite(path string, favorite bool) error {
	result, err := db.db.Exec("UPDATE brush SET favorite = ? WHERE path = ?", favorite, path)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("zbp: unknown brush")
	}
	return nil
}

func (db *DB) Brushes(favoritesOnly bool) ([]Brush, error) {
	query := "SELECT name, path, category, favorite FROM brush ORDER BY name COLLATE NOCASE"
	if favoritesOnly {
		query = "SELECT name, path, category, favorite FROM brush WHERE favorite != 0 ORDER BY name COLLATE NOCASE"
	}
	return db.queryBrushes(query)
}

func (db *DB) Search(query string) ([]Brush, error) {
	pattern := "%" + query + "%"
	return db.queryBrushes("SELECT name, path, category, favorite FROM brush WHERE name LIKE ? OR category LIKE ? ORDER BY name COLLATE NOCASE", pattern, pattern)
}

func (db *DB) queryBrushes(query string, args ...interface{}) ([]Brush, error) {
	rows, err := db.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brushes []Brush
	for rows.Next() {
		var b Brush
		if err := rows.Scan(&b.Name, &b.Path, &b.Category, &b.Favorite); err != nil {
			return nil, err
		}
		brushes = append(brushes, b)
	}

	return brushes, rows.Err()
}
