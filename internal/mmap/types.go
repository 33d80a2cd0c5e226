package mmap

import "errors"

// AccessPattern is a madvise(2) hint.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
	// AccessDontNeed lets the kernel reclaim the pages. Their contents are
	// unspecified afterwards on some platforms, so callers zero them first.
	AccessDontNeed
)

var (
	ErrClosed      = errors.New("mmap: closed")
	ErrInvalidSize = errors.New("mmap: size must be positive")
	ErrUnsupported = errors.New("mmap: not supported on this platform")
)

var adviceNames = [...]string{"default", "sequential", "random", "willneed", "dontneed"}

func (p AccessPattern) String() string {
	if p < 0 || int(p) >= len(adviceNames) {
		return "unknown"
	}
	return adviceNames[p]
}
