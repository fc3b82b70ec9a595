/*
Package zbp is a library for browsing and indexing ZBrush brush preset
files. It scans directories of .ZBP files, extracts the 96 by 96 thumbnail
embedded in each one and keeps the decoded pixels, together with basic
brush metadata, in a local SQLite database keyed by file path and
modification time.
*/
package zbp

import (
	"log"
	"os"
	"path/filepath"
)

// brushFolders are the brush preset locations found under a ZBrush
// installation root.
var brushFolders = []string{
	"ZBrushes",
	filepath.Join("ZData", "BrushPresets"),
	filepath.Join("ZStartup", "BrushPresets"),
}

type Browser struct {
	db     *DB
	logger *log.Logger
}

// New opens or creates the database at file and returns a Browser using it.
func New(file string, logger *log.Logger) (*Browser, error) {
	db, err := NewDB(file)
	if err != nil {
		return nil, err
	}
	return &Browser{
		db:     db,
		logger: logger,
	}, nil
}

func (b *Browser) Close() error {
	return b.db.Close()
}

// ScanInstall scans the known brush preset folders beneath a ZBrush
// installation root. Folders that don't exist are skipped.
func (b *Browser) ScanInstall(root string) error {
	for _, folder := range brushFolders {
		dir := filepath.Join(root, folder)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := b.Scan(dir); err != nil {
			return err
		}
	}
	return nil
}

// Brushes returns the indexed brushes sorted by name, optionally limited to
// favorites.
func (b *Browser) Brushes(favoritesOnly bool) ([]Brush, error) {
	return b.db.Brushes(favoritesOnly)
}

// Search returns indexed brushes whose name or category contains query,
// ignoring case.
func (b *Browser) Search(query string) ([]Brush, error) {
	return b.db.Search(query)
}

// SetFavorite marks or unmarks an indexed brush as a favorite.
func (b *Browser) SetFavorite(path string, favorite bool) error {
	return b.db.SetFavorite(path, favorite)
}

// Thumbnail returns the cached RGBA pixels for the brush file at path, or
// nil if the cache has no entry matching the file's current modification
// time.
func (b *Browser) Thumbnail(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return b.db.Thumbnail(path, info.ModTime().Unix())
}
