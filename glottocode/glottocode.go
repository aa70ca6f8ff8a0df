// Package glottocode validates languoid identifiers and hands out new ones.
//
// A glottocode is four characters from [a-z0-9] followed by four digits,
// e.g. "stan1295". The alphabetic stem is derived from the languoid's name;
// the number is taken from a registry that remembers, per stem, the last
// number issued.
package glottocode

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FirstNumber is the number issued for a stem that has never been used.
const FirstNumber = 1234

var (
	pattern = regexp.MustCompile(`^[a-z0-9]{4}[0-9]{4}$`)

	ErrInvalid = errors.New("invalid glottocode")
	ErrNoStem  = errors.New("name has no usable characters")
)

func Valid(id string) bool {
	return pattern.MatchString(id)
}

// Split returns the stem and number of a valid glottocode.
func Split(id string) (string, int, error) {
	if !Valid(id) {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalid, id)
	}
	n, err := strconv.Atoi(id[4:])
	if err != nil {
		return "", 0, err
	}
	return id[:4], n, nil
}

// Slug reduces a name to lower-case ASCII letters and digits, decomposing
// accented characters first so "Bété" becomes "bete".
func Slug(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stem returns the four character stem for name, padding short slugs by
// repeating their last character.
func Stem(name string) (string, error) {
	s := Slug(name)
	if s == "" {
		return "", fmt.Errorf("%w: %q", ErrNoStem, name)
	}
	if len(s) > 4 {
		s = s[:4]
	}
	for len(s) < 4 {
		s += s[len(s)-1:]
	}
	return s, nil
}

// Registry records the last number issued per stem. It is persisted as a
// JSON object mapping stems to numbers.
type Registry struct {
	path  string
	store map[string]int
}

// OpenRegistry loads the registry at path. A missing file yields an empty
// registry which Save will create.
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, store: map[string]int{}}
	d, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	if err := json.Unmarshal(d, &r.store); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return r, nil
}

// NewMemRegistry returns a registry that is never written to disk.
func NewMemRegistry(m map[string]int) *Registry {
	r := &Registry{store: map[string]int{}}
	for k, v := range m {
		r.store[k] = v
	}
	return r
}

// Contains reports whether id has been issued by the registry.
func (r *Registry) Contains(id string) bool {
	stem, n, err := Split(id)
	if err != nil {
		return false
	}
	last, ok := r.store[stem]
	return ok && n >= FirstNumber && n <= last
}

// Observe records id as issued, so that New never hands it out again.
func (r *Registry) Observe(id string) error {
	stem, n, err := Split(id)
	if err != nil {
		return err
	}
	if n > r.store[stem] {
		r.store[stem] = n
	}
	return nil
}

// New issues the next glottocode for name. The registry is updated in
// memory; call Save to persist it.
func (r *Registry) New(name string) (string, error) {
	stem, err := Stem(name)
	if err != nil {
		return "", err
	}
	n, ok := r.store[stem]
	if !ok || n < FirstNumber-1 {
		n = FirstNumber - 1
	}
	n++
	if n > 9999 {
		return "", fmt.Errorf("stem %q exhausted", stem)
	}
	r.store[stem] = n
	return fmt.Sprintf("%s%04d", stem, n), nil
}

// Save writes the registry back with sorted keys.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}
	keys := make([]string, 0, len(r.store))
	for k := range r.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range keys {
		kd, _ := json.Marshal(k)
		fmt.Fprintf(&b, "    %s: %d", kd, r.store[k])
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n")
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".glottocodes-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
