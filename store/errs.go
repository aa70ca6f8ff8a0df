package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// RecordParseError reports one record that could not be read.
type RecordParseError struct {
	Ref  Ref
	Path string // on-disk location, if any
	Err  error
}

func (e *RecordParseError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = string(e.Ref)
	}
	return fmt.Sprintf("record %s: %v", loc, e.Err)
}

func (e *RecordParseError) Unwrap() error {
	return e.Err
}
