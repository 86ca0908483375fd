package sse

import (
	"bufio"
	"io"
	"net/http"
)

// Writer writes envelope-prefixed payloads to an underlying stream.
// Each payload is terminated with a blank line so both line-oriented and
// SSE-aware readers see one event per payload.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer over w. When w is a *bufio.Writer or an
// http.Flusher, it is flushed after every write so that each event leaves
// the process immediately.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteData writes "data: <payload>\n\n".
func (w *Writer) WriteData(payload []byte) error {
	buf := make([]byte, 0, len(DataPrefix)+len(payload)+2)
	buf = append(buf, DataPrefix...)
	buf = append(buf, payload...)
	buf = append(buf, '\n', '\n')

	if _, err := w.w.Write(buf); err != nil {
		return err
	}

	return w.flush()
}

// WriteComment writes ": <text>\n\n". Readers ignore comment lines, which
// makes them useful as keep-alives.
func (w *Writer) WriteComment(text string) error {
	if _, err := io.WriteString(w.w, CommentPrefix+" "+text+"\n\n"); err != nil {
		return err
	}

	return w.flush()
}

func (w *Writer) flush() error {
	switch f := w.w.(type) {
	case *bufio.Writer:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}
