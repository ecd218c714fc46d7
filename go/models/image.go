package models

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

// Image is the read-only byte buffer backing a loaded executable. It is
// either memory mapped from disk or wraps a caller provided slice.
type Image struct {
	Name  string
	data  []byte
	unmap func([]byte) error
}

func NewImage(name string, p []byte) *Image {
	return &Image{Name: name, data: p}
}

// OpenImage maps path read-only, falling back to reading the whole file
// when mapping isn't available.
func OpenImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}
	size := stat.Size()
	if size == 0 {
		return &Image{Name: path, data: []byte{}}, nil
	}
	if size != int64(int(size)) {
		return nil, errors.Errorf("%s: file is too large to map", path)
	}
	if data, err := mmapFile(f, int(size)); err == nil {
		return &Image{Name: path, data: data, unmap: munmap}, nil
	}
	data, err := ioutil.ReadAll(io.NewSectionReader(f, 0, size))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}
	return &Image{Name: path, data: data}, nil
}

// Bytes returns the backing buffer. Callers must not modify it.
func (i *Image) Bytes() []byte {
	return i.data
}

func (i *Image) Len() int {
	return len(i.data)
}

// Slice returns [off, off+size) of the image without copying, or false
// when the range is outside the buffer.
func (i *Image) Slice(off, size uint64) ([]byte, bool) {
	end := off + size
	if end < off || end > uint64(len(i.data)) {
		return nil, false
	}
	return i.data[off:end:end], true
}

// ReadAt implements io.ReaderAt.
func (i *Image) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Errorf("negative offset: %d", off)
	}
	if off >= int64(len(i.data)) {
		return 0, io.EOF
	}
	n := copy(p, i.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (i *Image) Close() error {
	if i.unmap == nil || i.data == nil {
		i.data = nil
		return nil
	}
	err := i.unmap(i.data)
	i.data = nil
	i.unmap = nil
	return errors.Wrap(err, "munmap failed")
}
