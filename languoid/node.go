package languoid

import (
	"fmt"
	"slices"
)

// Node is one languoid: a record plus its position in the classification.
//
// Parent and Children refer to other nodes by identifier. A Tree resolves
// them through its index; they never own the referenced nodes.
type Node struct {
	ID       string
	Name     string
	Level    Level
	Parent   string
	Children []string
	Attrs    Attrs

	// Annotation is the trailing field of an LFF line, carried verbatim.
	Annotation string
}

// FromAttrs builds an unlinked node from its record content. An unknown
// level spelling yields NoLevel.
func FromAttrs(id string, attrs Attrs) *Node {
	n := &Node{ID: id, Attrs: attrs}
	n.Name, _ = attrs.Get(CoreSection, NameKey)
	if lv, ok := attrs.Get(CoreSection, LevelKey); ok {
		n.Level, _ = ParseLevel(lv)
	}
	return n
}

// SyncAttrs writes Name and Level back into core.name and core.level.
func (n *Node) SyncAttrs() {
	n.Attrs.Set(CoreSection, NameKey, n.Name)
	if n.Level.Valid() {
		n.Attrs.Set(CoreSection, LevelKey, n.Level.String())
	} else {
		n.Attrs.Delete(CoreSection, LevelKey)
	}
}

// ISO returns the ISO 639-3 code of n, if any.
func (n *Node) ISO() string {
	v, _ := n.Attrs.Get(CoreSection, ISOKey)
	return v
}

func (n *Node) HID() string {
	v, _ := n.Attrs.Get(CoreSection, HIDKey)
	return v
}

// Isolate reports whether n is a language without a parent.
func (n *Node) Isolate() bool {
	return n.Level == Language && n.Parent == ""
}

func (n *Node) IsRoot() bool {
	return n.Parent == ""
}

func (n *Node) Clone() *Node {
	res := *n
	res.Children = slices.Clone(n.Children)
	res.Attrs = n.Attrs.Clone()
	return &res
}

func (n *Node) String() string {
	return fmt.Sprintf("%s [%s]", n.Name, n.ID)
}
