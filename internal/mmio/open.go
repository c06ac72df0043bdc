package mmio

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// source is an opened file. The raw bytes are memory mapped when the platform
// allows it; gzip and zstd streams are detected by their magic and decoded on
// the fly.
type source struct {
	io.Reader
	data    []byte
	unmap   func() error
	closers []func() error
}

// Open returns a reader over the decompressed contents of path.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, errors.New("mmio: file too large to map")
	}
	size := int(size64)

	src := &source{}
	if data, unmap, err := mapFile(f, size); err == nil {
		src.data, src.unmap = data, unmap
	} else {
		// Fallback path that does not require mmap support.
		if src.data, err = io.ReadAll(f); err != nil {
			return nil, err
		}
	}

	if err := src.decode(); err != nil {
		_ = src.Close()
		return nil, err
	}
	return src, nil
}

func (s *source) decode() error {
	raw := bytes.NewReader(s.data)
	switch {
	case bytes.HasPrefix(s.data, gzipMagic):
		zr, err := gzip.NewReader(raw)
		if err != nil {
			return err
		}
		s.Reader = zr
		s.closers = append(s.closers, zr.Close)
	case bytes.HasPrefix(s.data, zstdMagic):
		zr, err := zstd.NewReader(raw)
		if err != nil {
			return err
		}
		s.Reader = zr
		s.closers = append(s.closers, func() error { zr.Close(); return nil })
	default:
		s.Reader = raw
	}
	return nil
}

func (s *source) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i]())
	}
	s.closers = nil
	if s.unmap != nil {
		err = errors.Join(err, s.unmap())
		s.unmap = nil
	}
	s.data = nil
	return err
}
