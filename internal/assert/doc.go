// Package assert implements the precondition checks used by the containers.
//
// A failed check panics with a *Violation that wraps ErrPrecondition. The
// checks are compiled out when building with the storagekit_unchecked tag;
// violating a precondition in such a build is undefined behavior.
package assert
