package lff

// DefaultIndent is the number of spaces per level of depth.
const DefaultIndent = 4

type encState struct {
	indent int
	header string
}

type EncodeOption func(*encState)

// EncodeIndent sets the number of spaces per level.
func EncodeIndent(n int) EncodeOption {
	return func(es *encState) { es.indent = n }
}

// EncodeHeader emits text as leading comment lines.
func EncodeHeader(text string) EncodeOption {
	return func(es *encState) { es.header = text }
}

type decodeOpts struct {
	indent int
	check  bool
}

type DecodeOption func(*decodeOpts)

func DecodeIndent(n int) DecodeOption {
	return func(o *decodeOpts) { o.indent = n }
}

// DecodeCheck controls whether the decoded tree is passed through the
// invariant checker. It is on by default.
func DecodeCheck(v bool) DecodeOption {
	return func(o *decodeOpts) { o.check = v }
}
