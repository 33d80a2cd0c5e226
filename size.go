package storagekit

// Size is the constraint for the index/count type of a container.
type Size interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Invalid returns the reserved "no index" value of S (all bits set).
func Invalid[S Size]() S {
	return ^S(0)
}

// MaxSize returns the largest count representable by S. It is one less than
// Invalid so that a valid index never collides with the sentinel.
func MaxSize[S Size]() S {
	return ^S(0) - 1
}

// MaxLen returns MaxSize[S] as an int, clamped to the platform int range.
func MaxLen[S Size]() int {
	m := uint64(MaxSize[S]())
	if m > uint64(maxInt) {
		return maxInt
	}
	return int(m)
}

const maxInt = int(^uint(0) >> 1)
