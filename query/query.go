// Package query filters languoids with boolean expressions such as
//
//	level == "language" && "indo1319" in ancestors && attrs.core["iso639-3"] != ""
//
// Expressions are compiled once with expr-lang and evaluated against an Env
// per node.
package query

import (
	"fmt"

	"github.com/glottolog/glottree/glottocode"
	"github.com/glottolog/glottree/languoid"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is what an expression sees of a node.
type Env struct {
	ID        string                       `expr:"id"`
	Name      string                       `expr:"name"`
	Level     string                       `expr:"level"`
	Depth     int                          `expr:"depth"`
	Parent    string                       `expr:"parent"`
	Ancestors []string                     `expr:"ancestors"`
	Isolate   bool                         `expr:"isolate"`
	Children  int                          `expr:"children"`
	Attrs     map[string]map[string]string `expr:"attrs"`
}

// EnvOf builds the Env of n in t.
func EnvOf(t *languoid.Tree, n *languoid.Node) Env {
	env := Env{
		ID:       n.ID,
		Name:     n.Name,
		Parent:   n.Parent,
		Isolate:  n.Isolate(),
		Children: len(n.Children),
		Attrs:    n.Attrs.Map(),
	}
	if env.Attrs[languoid.CoreSection] == nil {
		env.Attrs[languoid.CoreSection] = map[string]string{}
	}
	if n.Level.Valid() {
		env.Level = n.Level.String()
	}
	for _, a := range t.Lineage(n) {
		env.Ancestors = append(env.Ancestors, a.ID)
	}
	env.Depth = len(env.Ancestors)
	return env
}

type Filter struct {
	src string
	prg *vm.Program
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Env(Env{}),
		expr.AsBool(),
		expr.Function("slug", func(params ...any) (any, error) {
			return glottocode.Slug(params[0].(string)), nil
		},
			new(func(string) string)),
		expr.Function("validcode", func(params ...any) (any, error) {
			return glottocode.Valid(params[0].(string)), nil
		},
			new(func(string) bool)),
	}
}

// Compile parses src into a Filter. src must evaluate to a boolean.
func Compile(src string) (*Filter, error) {
	prg, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, fmt.Errorf("could not compile filter %q: %w", src, err)
	}
	return &Filter{src: src, prg: prg}, nil
}

func (f *Filter) String() string {
	return f.src
}

// Match evaluates f for n. A nil Filter matches everything.
func (f *Filter) Match(t *languoid.Tree, n *languoid.Node) (bool, error) {
	if f == nil {
		return true, nil
	}
	res, err := expr.Run(f.prg, EnvOf(t, n))
	if err != nil {
		return false, fmt.Errorf("filter %q on %s: %w", f.src, n.ID, err)
	}
	return res.(bool), nil
}

// Select returns the nodes of t matching f, in pre-order.
func Select(t *languoid.Tree, f *Filter) ([]*languoid.Node, error) {
	var res []*languoid.Node
	for n := range t.All() {
		ok, err := f.Match(t, n)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, n)
		}
	}
	return res, nil
}
