//go:build unix

package ctm

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps path read-only. If mmap is unavailable it falls back to
// reading the whole file. release must be called once the data is no longer
// referenced.
func mapFile(path string) (data []byte, release func(), err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	size, err := fileSize(f)
	if err != nil {
		return nil, nil, err
	}
	if size == 0 {
		return []byte{}, func() {}, nil
	}

	data, err = unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return data, func() { _ = unix.Munmap(data) }, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}
