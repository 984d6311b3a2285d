//go:build !cgo

package overlap

import "context"

type sourceReader struct{}

// newSourceReader returns nil when CGO is not available.
func newSourceReader() *sourceReader { return nil }

// ParserAvailable reports whether source parsing is compiled in.
func ParserAvailable() bool { return false }

func (r *sourceReader) read(context.Context, []byte) (string, []string, bool) {
	return "", nil, false
}
