package traits

// Pair is the capability descriptor of a (destination, source) type pair.
type Pair struct {
	Dst, Src Traits

	// Raw reports that a source element may be transferred into a
	// destination slot as a byte copy.
	Raw bool

	NeedsCopy              bool
	NeedsMove              bool
	NeedsDestructAfterMove bool
}

// PairOf returns the descriptor for copying or moving S values into D slots.
// A raw transfer needs identical sizes, no per-element hooks on either side,
// and either identical types or pointer-free layouts.
func PairOf[D, S any]() Pair {
	d, s := Of[D](), Of[S]()

	raw := d.Size == s.Size &&
		!d.NeedsCopy && !s.NeedsCopy && !d.NeedsMove && !s.NeedsMove &&
		(d.Type == s.Type || (!d.HasPointers && !s.HasPointers))

	return Pair{
		Dst:                    d,
		Src:                    s,
		Raw:                    raw,
		NeedsCopy:              !raw,
		NeedsMove:              !raw,
		NeedsDestructAfterMove: !raw && s.NeedsDestruct,
	}
}
