//go:build unix && !linux

package mmap

func osRemap([]byte, int) ([]byte, error) {
	return nil, ErrUnsupported
}
