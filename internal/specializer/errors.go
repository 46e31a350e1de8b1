package specializer

import (
	"github.com/pkg/errors"
)

var (
	// ErrInsufficientIndices means an array reference has more dimensions
	// than there are loop indices in scope.
	ErrInsufficientIndices = errors.New("not enough loop indices for array reference")

	// ErrShapeRankMismatch means the shape vector does not have one entry per
	// dimension of the function.
	ErrShapeRankMismatch = errors.New("shape vector rank does not match function ndim")

	// ErrNoActiveFunction means a node that needs the enclosing function was
	// reached outside of one.
	ErrNoActiveFunction = errors.New("no enclosing function")

	// ErrUnknownSpecialization means no specializer is registered under a name.
	ErrUnknownSpecialization = errors.New("unknown specialization")
)
