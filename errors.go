package storagekit

import (
	"github.com/hupe1980/storagekit/internal/assert"
)

// ErrPrecondition is wrapped by every PreconditionError.
var ErrPrecondition = assert.ErrPrecondition

// PreconditionError is the panic value of a broken caller contract.
//
// Recover it with errors.As:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        var pe *storagekit.PreconditionError
//	        if err, ok := r.(error); ok && errors.As(err, &pe) { ... }
//	    }
//	}()
type PreconditionError = assert.Violation

// ChecksEnabled reports whether precondition checks are compiled in.
const ChecksEnabled = assert.Enabled
