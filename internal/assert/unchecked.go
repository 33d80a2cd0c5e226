//go:build storagekit_unchecked

package assert

// Enabled reports whether precondition checks are compiled in.
const Enabled = false
