// Package check validates classification trees.
//
// Four rules keep a classification well formed:
//
//  1. a dialect has a parent;
//  2. a dialect's parent is not a family;
//  3. a language is top level (an isolate) or has a family parent;
//  4. levels never decrease from parent to child.
//
// A node without a level breaks none of them and is reported separately.
// Each node reports at most one of the four rules: the first of 1, 2 and 3
// that applies, else 4. Checking never modifies the tree.
package check

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glottolog/glottree/languoid"
)

var ErrInvariant = errors.New("invariant violation")

type Rule int

const (
	RuleDialectHasParent      Rule = 1
	RuleDialectNotUnderFamily Rule = 2
	RuleLanguageUnderFamily   Rule = 3
	RuleLevelOrder            Rule = 4
	RuleMissingLevel          Rule = 5
)

func (r Rule) String() string {
	switch r {
	case RuleDialectHasParent:
		return "rule 1 (dialect without parent)"
	case RuleDialectNotUnderFamily:
		return "rule 2 (dialect under family)"
	case RuleLanguageUnderFamily:
		return "rule 3 (language not under family)"
	case RuleLevelOrder:
		return "rule 4 (level order)"
	case RuleMissingLevel:
		return "missing level"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// Violation is one broken rule at one node.
type Violation struct {
	Rule   Rule
	ID     string
	Parent string
}

func (v *Violation) Error() string {
	if v.Parent != "" {
		return fmt.Sprintf("%s: %s under %s", v.Rule, v.ID, v.Parent)
	}
	return fmt.Sprintf("%s: %s", v.Rule, v.ID)
}

func (v *Violation) Is(target error) bool {
	return target == ErrInvariant
}

// Violations is a batch of violations usable as one error.
type Violations []*Violation

func (vs Violations) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

func (vs Violations) Unwrap() []error {
	res := make([]error, len(vs))
	for i, v := range vs {
		res[i] = v
	}
	return res
}

// Err returns vs as an error, or nil when empty.
func (vs Violations) Err() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// Has reports whether some violation matches rule and id.
func (vs Violations) Has(rule Rule, id string) bool {
	for _, v := range vs {
		if v.Rule == rule && v.ID == id {
			return true
		}
	}
	return false
}

// NodeMap is the read-only view of a tree the checker needs.
type NodeMap interface {
	Lookup(id string) (*languoid.Node, bool)
}

// Edge checks node n with level lv placed under parent (nil for top level).
func Edge(id string, lv languoid.Level, parent *languoid.Node) Violations {
	if !lv.Valid() {
		return Violations{{Rule: RuleMissingLevel, ID: id, Parent: parentID(parent)}}
	}
	if parent == nil {
		if lv == languoid.Dialect {
			return Violations{{Rule: RuleDialectHasParent, ID: id}}
		}
		return nil
	}
	pl := parent.Level
	if !pl.Valid() {
		// reported at the parent
		return nil
	}
	v := &Violation{ID: id, Parent: parent.ID}
	switch {
	case lv == languoid.Dialect && pl == languoid.Family:
		v.Rule = RuleDialectNotUnderFamily
	case lv == languoid.Language && pl != languoid.Family:
		v.Rule = RuleLanguageUnderFamily
	case lv.Ordinal() < pl.Ordinal():
		v.Rule = RuleLevelOrder
	default:
		return nil
	}
	return Violations{v}
}

func parentID(p *languoid.Node) string {
	if p == nil {
		return ""
	}
	return p.ID
}

// Node checks n against its current parent in nm.
func Node(nm NodeMap, n *languoid.Node) Violations {
	var parent *languoid.Node
	if n.Parent != "" {
		parent, _ = nm.Lookup(n.Parent)
	}
	return Edge(n.ID, n.Level, parent)
}

// Tree checks every node of t, in pre-order. A violation at a node never
// suppresses the checks of its children.
func Tree(t *languoid.Tree) Violations {
	var res Violations
	for n := range t.All() {
		res = append(res, Node(t, n)...)
	}
	return res
}

// Reparent checks moving id below newParent ("" for top level).
func Reparent(nm NodeMap, id, newParent string) (Violations, error) {
	n, ok := nm.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", languoid.ErrUnknownID, id)
	}
	var parent *languoid.Node
	if newParent != "" {
		parent, ok = nm.Lookup(newParent)
		if !ok {
			return nil, fmt.Errorf("%w: %s", languoid.ErrUnknownID, newParent)
		}
	}
	return Edge(n.ID, n.Level, parent), nil
}

// LevelChange checks giving id the level lv: the node against its parent
// and each child against the node.
func LevelChange(nm NodeMap, id string, lv languoid.Level) (Violations, error) {
	n, ok := nm.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", languoid.ErrUnknownID, id)
	}
	var parent *languoid.Node
	if n.Parent != "" {
		parent, _ = nm.Lookup(n.Parent)
	}
	res := Edge(id, lv, parent)
	proposed := &languoid.Node{ID: id, Level: lv}
	for _, cid := range n.Children {
		c, ok := nm.Lookup(cid)
		if !ok {
			continue
		}
		res = append(res, Edge(c.ID, c.Level, proposed)...)
	}
	return res, nil
}
