package store

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/glottolog/glottree/debug"
	"github.com/glottolog/glottree/languoid"

	"gopkg.in/ini.v1"
)

const (
	// InfoFile is the record file inside each node directory.
	InfoFile = "md.ini"
	// OrderFile, when present in a directory, lists child ids in display
	// order, one per line.
	OrderFile = ".order"
)

var loadOpts = ini.LoadOptions{
	AllowPythonMultilineValues: true,
	IgnoreInlineComment:        true,
	KeyValueDelimiters:         "=",
}

// Dir is a Store over a directory tree. Every node is a directory named by
// its identifier holding an md.ini record; nesting mirrors the
// classification.
type Dir struct {
	Root string
}

func NewDir(root string) (*Dir, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("could not open tree %q: %w", root, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("tree %q is not a directory", root)
	}
	return &Dir{Root: root}, nil
}

func (d *Dir) path(ref Ref) string {
	return filepath.Join(d.Root, filepath.FromSlash(string(ref)))
}

func (d *Dir) Roots() ([]Ref, error) {
	return d.Children("")
}

func (d *Dir) Children(ref Ref) ([]Ref, error) {
	p := d.path(ref)
	ents, err := os.ReadDir(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, err
	}
	var ids []string
	for _, ent := range ents {
		name := ent.Name()
		if !ent.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		ids = append(ids, name)
	}
	explicit, err := readOrder(filepath.Join(p, OrderFile))
	if err != nil {
		return nil, err
	}
	return refs(ref, orderChildren(ids, explicit)), nil
}

func readOrder(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	var res []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		res = append(res, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	return res, nil
}

func (d *Dir) Read(ref Ref) (*Record, error) {
	p := filepath.Join(d.path(ref), InfoFile)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			if _, serr := os.Stat(d.path(ref)); serr != nil {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
			}
		}
		return nil, &RecordParseError{Ref: ref, Path: p, Err: err}
	}
	attrs, err := DecodeINI(data)
	if err != nil {
		return nil, &RecordParseError{Ref: ref, Path: p, Err: err}
	}
	if debug.Store() {
		debug.Logf("read %s: %v", ref, attrs.Map())
	}
	return &Record{Attrs: attrs}, nil
}

// DecodeINI parses md.ini content into ordered attributes.
func DecodeINI(data []byte) (languoid.Attrs, error) {
	f, err := ini.LoadSources(loadOpts, data)
	if err != nil {
		return languoid.Attrs{}, err
	}
	var attrs languoid.Attrs
	for _, sec := range f.Sections() {
		keys := sec.Keys()
		if sec.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}
		s := languoid.Section{Name: sec.Name()}
		for _, k := range keys {
			s.Fields = append(s.Fields, languoid.Field{Key: k.Name(), Value: k.Value()})
		}
		attrs.Sections = append(attrs.Sections, s)
	}
	return attrs, nil
}

// EncodeINI renders attributes as md.ini content.
func EncodeINI(attrs languoid.Attrs) ([]byte, error) {
	f := ini.Empty(loadOpts)
	for _, s := range attrs.Sections {
		sec, err := f.NewSection(s.Name)
		if err != nil {
			return nil, err
		}
		for _, fld := range s.Fields {
			if _, err := sec.NewKey(fld.Key, fld.Value); err != nil {
				return nil, fmt.Errorf("section %s: %w", s.Name, err)
			}
		}
	}
	buf := bytes.NewBuffer(nil)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Dir) Write(ref Ref, rec *Record) error {
	if ref == "" {
		return fmt.Errorf("cannot write the tree root")
	}
	if _, err := os.Stat(d.path(ref.Parent())); err != nil {
		return fmt.Errorf("%w: parent of %s", ErrNotFound, ref)
	}
	p := d.path(ref)
	if err := os.Mkdir(p, 0755); err != nil && !os.IsExist(err) {
		return err
	}
	data, err := EncodeINI(rec.Attrs)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", ref, err)
	}
	if debug.Store() {
		debug.Logf("write %s", ref)
	}
	return writeFileAtomic(filepath.Join(p, InfoFile), data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (d *Dir) Move(from, to Ref) error {
	if from == "" || to == "" {
		return fmt.Errorf("cannot move the tree root")
	}
	if to.HasPrefix(from) {
		return fmt.Errorf("cannot move %s below itself (%s)", from, to)
	}
	if _, err := os.Stat(d.path(from)); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, from)
	}
	if _, err := os.Stat(d.path(to.Parent())); err != nil {
		return fmt.Errorf("%w: parent of %s", ErrNotFound, to)
	}
	if _, err := os.Stat(d.path(to)); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, to)
	}
	if debug.Store() {
		debug.Logf("move %s -> %s", from, to)
	}
	return os.Rename(d.path(from), d.path(to))
}

func (d *Dir) Remove(ref Ref) error {
	if ref == "" {
		return fmt.Errorf("cannot remove the tree root")
	}
	p := d.path(ref)
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if debug.Store() {
		debug.Logf("remove %s", ref)
	}
	return os.RemoveAll(p)
}

// SetOrder writes the order file for parent, or removes it when ids are
// already in lexicographic order.
func (d *Dir) SetOrder(parent Ref, ids []string) error {
	p := d.path(parent)
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, parent)
	}
	of := filepath.Join(p, OrderFile)
	if isSorted(ids) {
		if err := os.Remove(of); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	var b strings.Builder
	for _, id := range slices.Compact(slices.Clone(ids)) {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return writeFileAtomic(of, []byte(b.String()))
}
