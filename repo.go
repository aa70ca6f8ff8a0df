// Package glottree manages a Glottolog languoid classification kept as a
// directory tree of md.ini records.
//
// A Repo pairs a record store with the tree built from it. The tree is the
// node map: queries are answered from it unless the caller asks for live
// navigation, and every edit is validated against it before the store is
// touched. After a successful edit both agree again.
package glottree

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/glottolog/glottree/check"
	"github.com/glottolog/glottree/config"
	"github.com/glottolog/glottree/glottocode"
	"github.com/glottolog/glottree/languoid"
	"github.com/glottolog/glottree/store"
	"github.com/glottolog/glottree/treebuild"
)

type Option func(*Repo)

func WithLogger(l *slog.Logger) Option {
	return func(r *Repo) { r.log = l }
}

// WithRegistry sets the registry new glottocodes are issued from.
func WithRegistry(reg *glottocode.Registry) Option {
	return func(r *Repo) { r.reg = reg }
}

func WithParallel(n int) Option {
	return func(r *Repo) { r.parallel = n }
}

// WithConfig applies the build and LFF settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(r *Repo) {
		r.cfg = cfg
		r.parallel = cfg.Build.Parallel
		r.indent = cfg.LFF.Indent
	}
}

type Repo struct {
	st       store.Store
	cfg      *config.Config
	reg      *glottocode.Registry
	log      *slog.Logger
	parallel int
	indent   int

	tree       *languoid.Tree
	codes      map[string]string
	buildErrs  []error
	violations check.Violations
}

// Open builds the classification held in st. Problems with individual
// records do not make Open fail; see BuildErrors.
func Open(st store.Store, opts ...Option) (*Repo, error) {
	if st == nil {
		return nil, fmt.Errorf("glottree: nil store")
	}
	r := &Repo{
		st:     st,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		indent: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenDir opens the repository checked out at root, reading its
// configuration file, its tree directory and its glottocode registry.
func OpenDir(root string, opts ...Option) (*Repo, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	st, err := store.NewDir(cfg.TreePath())
	if err != nil {
		return nil, err
	}
	pre := []Option{WithConfig(cfg)}
	if p := cfg.GlottocodesPath(); p != "" {
		reg, err := glottocode.OpenRegistry(p)
		if err != nil {
			return nil, err
		}
		pre = append(pre, WithRegistry(reg))
	}
	return Open(st, append(pre, opts...)...)
}

// Reload rebuilds the tree from the store.
func (r *Repo) Reload() error {
	tree, errs := treebuild.Build(r.st, treebuild.Parallel(r.parallel), treebuild.WithLogger(r.log))
	for _, err := range errs {
		r.log.Error("build problem", "err", err)
	}
	r.tree = tree
	r.buildErrs = errs
	r.index()
	r.log.Info("loaded classification", "languoids", tree.Len(),
		"problems", len(errs), "violations", len(r.violations))
	return nil
}

// index recomputes what is derived from the tree. When codes collide the
// first languoid in pre-order keeps the code; Lint reports the others.
func (r *Repo) index() {
	r.violations = check.Tree(r.tree)
	r.codes = map[string]string{}
	for n := range r.tree.All() {
		for _, c := range []string{n.HID(), n.ISO()} {
			if c == "" {
				continue
			}
			if _, dup := r.codes[c]; !dup {
				r.codes[c] = n.ID
			}
		}
	}
}

func (r *Repo) Store() store.Store {
	return r.st
}

func (r *Repo) Config() *config.Config {
	return r.cfg
}

// Tree returns the node map. It is replaced, not modified, by Reload; edits
// through the Repo modify it in place.
func (r *Repo) Tree() *languoid.Tree {
	return r.tree
}

// BuildErrors returns the problems met by the last build.
func (r *Repo) BuildErrors() []error {
	return r.buildErrs
}

// Violations returns the invariant violations of the current tree.
func (r *Repo) Violations() check.Violations {
	return r.violations
}

// Lint returns curation warnings, including glottocodes the registry has
// not issued when the repository has one.
func (r *Repo) Lint() []check.Warning {
	if r.reg == nil {
		return check.Lint(r.tree)
	}
	return check.Lint(r.tree, check.LintRegistry(r.reg))
}

func (r *Repo) lookup(id string) (*languoid.Node, error) {
	n, ok := r.tree.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
	}
	return n, nil
}

// ref is where n lives in the store.
func (r *Repo) ref(n *languoid.Node) store.Ref {
	var ids []string
	for _, a := range r.tree.Lineage(n) {
		ids = append(ids, a.ID)
	}
	return store.RefOf(append(ids, n.ID)...)
}

func (r *Repo) refOf(id string) store.Ref {
	if id == "" {
		return ""
	}
	return r.ref(r.tree.MustLookup(id))
}

// syncOrder makes the children of parent in the tree follow the store.
func (r *Repo) syncOrder(parent string) error {
	kids, err := r.st.Children(r.refOf(parent))
	if err != nil {
		return err
	}
	ids := make([]string, len(kids))
	for i, k := range kids {
		ids[i] = k.ID()
	}
	return r.tree.SetOrder(parent, ids)
}

func normName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty name")
	}
	if strings.ContainsAny(name, "\t\r\n") {
		return "", fmt.Errorf("name %q contains a tab or line break", name)
	}
	return name, nil
}
