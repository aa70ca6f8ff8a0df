package glottree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glottolog/glottree/languoid"
)

var (
	ErrUnknownID   = languoid.ErrUnknownID
	ErrHasChildren = errors.New("languoid has children")
	ErrNoRegistry  = errors.New("no glottocode registry")
	ErrNoPolicy    = errors.New("no delete policy given")
)

// OrphanError lists the languoids of the repository missing from an LFF
// tree that was to be applied with OrphanRefuse.
type OrphanError struct {
	IDs []string
}

func (e *OrphanError) Error() string {
	ids := e.IDs
	more := ""
	if len(ids) > 10 {
		ids, more = ids[:10], fmt.Sprintf(" and %d more", len(e.IDs)-10)
	}
	return fmt.Sprintf("%d languoids missing from the new classification: %s%s",
		len(e.IDs), strings.Join(ids, ", "), more)
}
