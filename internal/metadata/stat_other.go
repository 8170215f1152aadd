//go:build !linux

package metadata

import "os"

func stat(path string) (Metadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
		ModTime:   info.ModTime(),
	}, nil
}
