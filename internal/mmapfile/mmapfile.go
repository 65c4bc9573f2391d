// Package mmapfile maps small files read-only into memory.
package mmapfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var ErrTooLarge = errors.New("mmapfile: file too large")

type File struct {
	Data    []byte
	mmapped bool
}

// Open maps path read-only. Files larger than maxSize are rejected; a
// maxSize of zero disables the check. If mmap is unavailable the file is read
// into memory instead. The returned file must be closed to release any
// mapping.
func Open(path string, maxSize int64) (*File, error) {
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
	if maxSize > 0 && size64 > maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, path, size64, maxSize)
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, path)
	}
	size := int(size64)
	if size == 0 {
		return &File{Data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &File{Data: data, mmapped: true}, nil
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size64), data); err != nil {
		return nil, fmt.Errorf("mmapfile: read %s: %w", path, err)
	}
	return &File{Data: data}, nil
}

// Mapped reports whether Data is backed by a mapping.
func (f *File) Mapped() bool { return f.mmapped }

// Close releases the mapping. Data must not be used afterwards.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}
