//go:build !unix

package ctm

import "os"

func mapFile(path string) ([]byte, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	size, err := fileSize(f)
	if err != nil {
		return nil, nil, err
	}
	data, err := readAllAt(f, size)
	if err != nil {
		return nil, nil, err
	}
	return data, func() {}, nil
}
