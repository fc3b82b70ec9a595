/*
Package pack implements a single-file bundle of decoded brush thumbnails,
used to load a whole library's worth of previews without touching the
original brush files.
*/
package pack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/xmdtoolbox/zbp/thumb"
)

const (
	// Filename is the conventional filename used when writing to disk
	Filename = "library.zbpk"

	version = 1

	maxNameLen = 1<<16 - 1
)

var magic = [4]byte{'Z', 'B', 'P', 'K'}

// Entry is one brush thumbnail in the bundle.
type Entry struct {
	Name  string
	MTime int64
	Pix   []byte
}

// DB is the thumbnail bundle object. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type DB struct {
	names   map[string]int
	entries []Entry
}

// New returns an empty bundle
func New() *DB {
	return &DB{
		names: make(map[string]int),
	}
}

// Length returns the number of thumbnails in the bundle
func (db *DB) Length() int {
	return len(db.entries)
}

// Set stores the thumbnail pixels for the named brush. When the same name
// is stored twice the first entry wins, matching how a library scan
// deduplicates brushes across preset folders.
func (db *DB) Set(name string, mtime int64, pix []byte) error {
	if len(pix) != thumb.PixelBytes {
		return errors.New("pack: incorrect thumbnail length")
	}
	if len(name) > maxNameLen {
		return errors.New("pack: name too long")
	}
	if _, ok := db.names[name]; !ok {
		db.entries = append(db.entries, Entry{Name: name, MTime: mtime, Pix: pix})
		db.names[name] = len(db.entries) - 1
	}
	return nil
}

// Entry returns the bundle entry for the named brush
func (db *DB) Entry(name string) (Entry, bool) {
	i, ok := db.names[name]
	if !ok {
		return Entry{}, false
	}
	return db.entries[i], true
}

// Names returns the names of every bundled brush in sorted order
func (db *DB) Names() []string {
	names := make([]string, 0, len(db.names))
	for name := range db.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalBinary encodes the bundle into binary form and returns the result
func (db *DB) MarshalBinary() ([]byte, error) {
	b := new(bytes.Buffer)

	if _, err := b.Write(magic[:]); err != nil {
		return nil, err
	}
	if err := binary.Write(b, binary.LittleEndian, uint16(version)); err != nil {
		return nil, err
	}
	if err := binary.Write(b, binary.LittleEndian, uint32(len(db.entries))); err != nil {
		return nil, err
	}

	// Entries are written in name order so the output is reproducible.
	for _, name := range db.Names() {
		e := db.entries[db.names[name]]

		if err := binary.Write(b, binary.LittleEndian, uint16(len(e.Name))); err != nil {
			return nil, err
		}
		if _, err := b.WriteString(e.Name); err != nil {
			return nil, err
		}
		if err := binary.Write(b, binary.LittleEndian, e.MTime); err != nil {
			return nil, err
		}
		if _, err := b.Write(e.Pix); err != nil {
			return nil, err
		}
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the bundle from binary form
func (db *DB) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err
	}
	if header != magic {
		return errors.New("pack: bad magic")
	}

	var v uint16
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return err
	}
	if v != version {
		return fmt.Errorf("pack: unsupported version %d", v)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}

	db.names = make(map[string]int)
	db.entries = nil

	for i := uint32(0); i < count; i++ {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return err
		}

		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return err
		}

		var mtime int64
		if err := binary.Read(r, binary.LittleEndian, &mtime); err != nil {
			return err
		}

		pix := make([]byte, thumb.PixelBytes)
		if _, err := io.ReadFull(r, pix); err != nil {
			return errors.New("pack: insufficient data")
		}

		if err := db.Set(string(name), mtime, pix); err != nil {
			return err
		}
	}

	return nil
}
