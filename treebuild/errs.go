package treebuild

import (
	"fmt"

	"github.com/glottolog/glottree/store"
)

type StructuralKind int

const (
	// KindCycle: an identifier reappears below itself.
	KindCycle StructuralKind = iota + 1
	// KindDuplicate: an identifier appears at two places in the store.
	KindDuplicate
	// KindUnreachable: records below a node that could not be read.
	KindUnreachable
	// KindListing: the children of a node could not be listed.
	KindListing
)

func (k StructuralKind) String() string {
	switch k {
	case KindCycle:
		return "cycle"
	case KindDuplicate:
		return "duplicate"
	case KindUnreachable:
		return "unreachable"
	case KindListing:
		return "listing"
	default:
		return fmt.Sprintf("StructuralKind(%d)", int(k))
	}
}

// StructuralError reports a problem with the shape of the store rather than
// with one record. The affected subtree is left out of the built tree.
type StructuralError struct {
	Ref    store.Ref
	ID     string
	Kind   StructuralKind
	Detail string
	Err    error
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("%s at %s", e.Kind, e.Ref)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
