package lff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glottolog/glottree/check"
)

var (
	ErrParse  = errors.New("lff parse error")
	ErrEncode = errors.New("lff encode error")
)

// LineError is one malformed line. Line counts from 1.
type LineError struct {
	Line int
	Text string
	Msg  string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *LineError) Is(target error) bool {
	return target == ErrParse
}

// DecodeError collects every problem found by Decode: malformed lines in
// input order, then invariant violations of the decoded tree.
type DecodeError struct {
	Lines      []*LineError
	Violations check.Violations
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lff: %d malformed lines, %d violations", len(e.Lines), len(e.Violations))
	for _, l := range e.Lines {
		b.WriteString("\n")
		b.WriteString(l.Error())
	}
	for _, v := range e.Violations {
		b.WriteString("\n")
		b.WriteString(v.Error())
	}
	return b.String()
}

func (e *DecodeError) Unwrap() []error {
	res := make([]error, 0, len(e.Lines)+len(e.Violations))
	for _, l := range e.Lines {
		res = append(res, l)
	}
	for _, v := range e.Violations {
		res = append(res, v)
	}
	return res
}
