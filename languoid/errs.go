package languoid

import "errors"

var (
	ErrBadLevel    = errors.New("bad level")
	ErrDuplicateID = errors.New("duplicate id")
	ErrUnknownID   = errors.New("unknown id")
	ErrCycle       = errors.New("cycle")
)
