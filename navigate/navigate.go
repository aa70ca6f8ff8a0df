// Package navigate answers classification queries for a node: its record,
// its ancestors, its descendants and its siblings.
//
// Two modes are available and the caller picks one explicitly. Live
// navigation goes to the record store on every call, so it always sees the
// current state of storage. Mapped navigation answers from a node map built
// beforehand and never touches storage. Both give the same answers for the
// same classification.
package navigate

import (
	"iter"

	"github.com/glottolog/glottree/languoid"
)

// ErrUnknownID is languoid.ErrUnknownID, so either matches with errors.Is.
var ErrUnknownID = languoid.ErrUnknownID

type Navigator interface {
	// Node returns the node with identifier id.
	Node(id string) (*languoid.Node, error)
	// Ancestors returns the ancestors of id, top level first.
	Ancestors(id string) ([]*languoid.Node, error)
	// Descendants yields the nodes strictly below id in pre-order. The
	// sequence is lazy; stopping a range early leaves nothing running.
	Descendants(id string) iter.Seq2[*languoid.Node, error]
	// Siblings returns the other children of id's parent in order.
	Siblings(id string) ([]*languoid.Node, error)
}

// NodeMap resolves identifiers to nodes. *languoid.Tree implements it.
type NodeMap interface {
	Lookup(id string) (*languoid.Node, bool)
	RootIDs() []string
}

func fail(err error) iter.Seq2[*languoid.Node, error] {
	return func(yield func(*languoid.Node, error) bool) {
		yield(nil, err)
	}
}
