package languoid

import (
	"fmt"
	"strings"
)

// Level is the classification level of a languoid. Levels are totally
// ordered by their ordinal: Family < Language < Dialect.
type Level int

const (
	// NoLevel marks a languoid whose record carries no (or an unknown) level.
	NoLevel Level = iota
	Family
	Language
	Dialect
)

var levelNames = [...]string{
	NoLevel:  "",
	Family:   "family",
	Language: "language",
	Dialect:  "dialect",
}

// Levels returns the valid levels in ordinal order.
func Levels() []Level {
	return []Level{Family, Language, Dialect}
}

func (l Level) String() string {
	if l < NoLevel || l > Dialect {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	if l == NoLevel {
		return "<none>"
	}
	return levelNames[l]
}

// Valid reports whether l is one of Family, Language or Dialect.
func (l Level) Valid() bool {
	return l >= Family && l <= Dialect
}

// Ordinal is the level's position in the total order, 0 for NoLevel.
func (l Level) Ordinal() int {
	if !l.Valid() {
		return 0
	}
	return int(l)
}

// ParseLevel parses the record spelling of a level. Matching is case
// insensitive and ignores surrounding space.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Levels() {
		if levelNames[l] == s {
			return l, nil
		}
	}
	return NoLevel, fmt.Errorf("%w: %q", ErrBadLevel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, nil
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(d []byte) error {
	if len(d) == 0 {
		*l = NoLevel
		return nil
	}
	v, err := ParseLevel(string(d))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
