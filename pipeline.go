package zbp

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xmdtoolbox/zbp/thumb"
)

const numWorkers = 10

func isBrushFile(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".zbp")
}

// readHeader reads the leading bytes of a brush file, which is all the
// thumbnail decoder needs.
func readHeader(file string) ([]byte, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := make([]byte, thumb.HeaderSize)
	n, err := io.ReadFull(f, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return b[:n], err
}

func (b *Browser) findBrushes(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isBrushFile(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (b *Browser) brushWorker(ctx context.Context, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := b.scanFile(file); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// scanFile indexes one brush file and decodes its thumbnail unless the
// cache already holds one for the file's current modification time. A file
// without a usable thumbnail is still indexed.
func (b *Browser) scanFile(file string) error {
	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	mtime := info.ModTime().Unix()

	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	category := filepath.Base(filepath.Dir(file))

	if err := b.db.SetBrush(name, file, category); err != nil {
		return err
	}

	cached, err := b.db.Thumbnail(file, mtime)
	if err != nil {
		return err
	}
	if cached != nil {
		return nil
	}

	raw, err := readHeader(file)
	if err != nil {
		return err
	}

	pix, err := thumb.Extract(raw, true)
	if err != nil {
		b.logger.Printf("No thumbnail in \"%s\": %v\n", file, err)
		return nil
	}

	return b.db.SetThumbnail(file, mtime, pix)
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan walks a directory tree of brush files, indexing each one and
// decoding thumbnails for any file not already cached.
func (b *Browser) Scan(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := b.findBrushes(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := b.brushWorker(ctx, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
