// Package lff reads and writes the flat form of a classification.
//
// An LFF text has one line per languoid, in pre-order:
//
//	fam00001 [f] Some Family
//	    lang0001 [l] Some Language
//	        dia00001 [d] Some Dialect	reviewed
//
// Indentation gives the depth, in units of DefaultIndent spaces unless
// configured otherwise. The bracketed marker gives the level ([-] for a
// languoid without level). Anything after the first tab is an annotation,
// carried through unchanged. Blank lines and lines starting with '#' are
// ignored when decoding.
package lff

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/glottolog/glottree/debug"
	"github.com/glottolog/glottree/languoid"
)

var markers = map[languoid.Level]string{
	languoid.NoLevel:  "[-]",
	languoid.Family:   "[f]",
	languoid.Language: "[l]",
	languoid.Dialect:  "[d]",
}

func marker(lv languoid.Level) string {
	if m, ok := markers[lv]; ok {
		return m
	}
	return markers[languoid.NoLevel]
}

func parseMarker(s string) (languoid.Level, bool) {
	for lv, m := range markers {
		if m == s {
			return lv, true
		}
	}
	return languoid.NoLevel, false
}

// Encode writes t in pre-order, roots in order, children in their stored
// order.
func Encode(t *languoid.Tree, w io.Writer, opts ...EncodeOption) error {
	es := newEncState(opts)
	bw := bufio.NewWriter(w)
	es.writeHeader(bw)
	for _, r := range t.Roots() {
		if err := es.encode(t, r, 0, bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeSubtree writes the subtree rooted at id, with id at depth 0.
func EncodeSubtree(t *languoid.Tree, id string, w io.Writer, opts ...EncodeOption) error {
	n, ok := t.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", languoid.ErrUnknownID, id)
	}
	es := newEncState(opts)
	bw := bufio.NewWriter(w)
	es.writeHeader(bw)
	if err := es.encode(t, n, 0, bw); err != nil {
		return err
	}
	return bw.Flush()
}

func newEncState(opts []EncodeOption) *encState {
	es := &encState{indent: DefaultIndent}
	for _, opt := range opts {
		opt(es)
	}
	return es
}

func (es *encState) writeHeader(w *bufio.Writer) {
	if es.header == "" {
		return
	}
	for line := range strings.Lines(es.header) {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			w.WriteString("#\n")
			continue
		}
		w.WriteString("# " + line + "\n")
	}
}

func (es *encState) encode(t *languoid.Tree, n *languoid.Node, depth int, w *bufio.Writer) error {
	if strings.ContainsAny(n.Name, "\t\n\r") {
		return fmt.Errorf("%w: name of %s contains a tab or line break", ErrEncode, n.ID)
	}
	if strings.ContainsAny(n.Annotation, "\n\r") {
		return fmt.Errorf("%w: annotation of %s contains a line break", ErrEncode, n.ID)
	}
	if n.ID == "" || strings.ContainsAny(n.ID, " \t\n\r") {
		return fmt.Errorf("%w: bad identifier %q", ErrEncode, n.ID)
	}
	w.WriteString(strings.Repeat(" ", depth*es.indent))
	w.WriteString(n.ID)
	w.WriteByte(' ')
	w.WriteString(marker(n.Level))
	if name := strings.TrimSpace(n.Name); name != "" {
		w.WriteByte(' ')
		w.WriteString(name)
	}
	if n.Annotation != "" {
		w.WriteByte('\t')
		w.WriteString(n.Annotation)
	}
	w.WriteByte('\n')
	if debug.LFF() {
		debug.Logf("lff: encoded %s at depth %d", n.ID, depth)
	}
	for _, c := range t.ChildNodes(n) {
		if err := es.encode(t, c, depth+1, w); err != nil {
			return err
		}
	}
	return nil
}
