package lffdiff

import (
	"fmt"

	"github.com/glottolog/glottree/languoid"
)

type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Removed
	Moved
	Renamed
	Releveled
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Moved:
		return "moved"
	case Renamed:
		return "renamed"
	case Releveled:
		return "level changed"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is one difference between two classifications. From and To hold
// the old and new parent, name or level depending on Kind.
type Change struct {
	Kind     ChangeKind
	ID       string
	From, To string
}

func (c Change) String() string {
	switch c.Kind {
	case Added, Removed:
		return fmt.Sprintf("%s %s", c.ID, c.Kind)
	default:
		return fmt.Sprintf("%s %s: %q -> %q", c.ID, c.Kind, c.From, c.To)
	}
}

// Changes lists the differences between old and new: removals in old's
// pre-order, then additions and modifications in new's pre-order. Child
// order is not compared.
func Changes(old, new *languoid.Tree) []Change {
	var res []Change
	for n := range old.All() {
		if _, ok := new.Lookup(n.ID); !ok {
			res = append(res, Change{Kind: Removed, ID: n.ID})
		}
	}
	for n := range new.All() {
		o, ok := old.Lookup(n.ID)
		if !ok {
			res = append(res, Change{Kind: Added, ID: n.ID})
			continue
		}
		if o.Parent != n.Parent {
			res = append(res, Change{Kind: Moved, ID: n.ID, From: o.Parent, To: n.Parent})
		}
		if o.Name != n.Name {
			res = append(res, Change{Kind: Renamed, ID: n.ID, From: o.Name, To: n.Name})
		}
		if o.Level != n.Level {
			res = append(res, Change{Kind: Releveled, ID: n.ID, From: o.Level.String(), To: n.Level.String()})
		}
	}
	return res
}
