package check

import (
	"fmt"
	"strings"

	"github.com/glottolog/glottree/languoid"
)

type WarningKind int

const (
	WarnEmptyFamily WarningKind = iota + 1
	WarnMissingName
	WarnDuplicateHID
	WarnDuplicateISO
	WarnUnregistered
)

func (k WarningKind) String() string {
	switch k {
	case WarnEmptyFamily:
		return "family without children"
	case WarnMissingName:
		return "missing name"
	case WarnDuplicateHID:
		return "duplicate hid"
	case WarnDuplicateISO:
		return "duplicate iso639-3 code"
	case WarnUnregistered:
		return "unregistered glottocode"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a curation problem that does not make the tree invalid.
// For duplicates, Other is the languoid first seen with the code.
type Warning struct {
	Kind  WarningKind
	ID    string
	Other string
}

func (w Warning) String() string {
	if w.Other != "" {
		return fmt.Sprintf("%s: %s (also %s)", w.Kind, w.ID, w.Other)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.ID)
}

// Registry tells issued glottocodes apart; *glottocode.Registry is one.
type Registry interface {
	Contains(id string) bool
}

type lintOpts struct {
	reg Registry
}

type LintOption func(*lintOpts)

// LintRegistry reports languoids whose id reg has not issued.
// Placeholder ids with the unun9 stem are exempt.
func LintRegistry(reg Registry) LintOption {
	return func(o *lintOpts) { o.reg = reg }
}

// Lint reports warnings for t in pre-order.
func Lint(t *languoid.Tree, opts ...LintOption) []Warning {
	o := &lintOpts{}
	for _, opt := range opts {
		opt(o)
	}
	var res []Warning
	hids, isos := map[string]string{}, map[string]string{}
	dup := func(seen map[string]string, code string, kind WarningKind, id string) {
		if code == "" {
			return
		}
		if first, ok := seen[code]; ok {
			res = append(res, Warning{Kind: kind, ID: id, Other: first})
			return
		}
		seen[code] = id
	}
	for n := range t.All() {
		if n.Name == "" {
			res = append(res, Warning{Kind: WarnMissingName, ID: n.ID})
		}
		if n.Level == languoid.Family && len(n.Children) == 0 {
			res = append(res, Warning{Kind: WarnEmptyFamily, ID: n.ID})
		}
		dup(hids, n.HID(), WarnDuplicateHID, n.ID)
		dup(isos, n.ISO(), WarnDuplicateISO, n.ID)
		if o.reg != nil && !strings.HasPrefix(n.ID, "unun9") && !o.reg.Contains(n.ID) {
			res = append(res, Warning{Kind: WarnUnregistered, ID: n.ID})
		}
	}
	return res
}
