// Package diag renders the compiler pipeline's diagnostic output:
// tokens, AST, TAC, optimized TAC, target text, and program output.
// diag.Writer wraps an io.Writer and sticks on the first write error
// instead of letting later writes mask it.
package diag

import (
	"io"

	"github.com/pkg/errors"
)

// Writer wraps an io.Writer, remembering the first error any Write
// call produces and returning it from every subsequent call.
type Writer struct {
	w   io.Writer
	Err error
}

// NewWriter returns a Writer around w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	if w.Err != nil {
		return 0, w.Err
	}
	n, err = w.w.Write(p)
	if err != nil {
		w.Err = errors.Wrap(err, "diag: write failed")
	}
	return n, w.Err
}
