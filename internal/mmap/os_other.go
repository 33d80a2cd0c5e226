//go:build !unix

package mmap

func osMapAnon(int) ([]byte, func([]byte) error, error) {
	return nil, nil, ErrUnsupported
}

func osRemap([]byte, int) ([]byte, error) {
	return nil, ErrUnsupported
}

func osAdvise([]byte, AccessPattern) error {
	return ErrUnsupported
}
