package visitor

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnhandledNodeKind means no handler is registered for a node kind
	// or any of its ancestors.
	ErrUnhandledNodeKind = errors.New("unhandled node kind")

	// ErrInvalidListInsertion means a handler returned several nodes for a
	// slot that holds a single node.
	ErrInvalidListInsertion = errors.New("cannot insert list into single-node slot")

	// ErrUnknownSlot means a child attribute name is not part of the node's schema.
	ErrUnknownSlot = errors.New("unknown child attribute")
)
