package sse

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// Framer turns a sequence of raw byte chunks into complete text lines.
//
// ┌──────────────┐   ┌───────────────┐   ┌──────────┐
// │ chunk []byte │──▶│ Framer buffer │──▶│ []string │
// └──────────────┘   └───────────────┘   └──────────┘
//
// Chunks may split a line (or a multi-byte UTF-8 character) anywhere. Bytes
// are held in the buffer and only decoded once the line terminator arrives,
// so a character split across two chunks is decoded whole.
//
// A Framer is owned by a single stream and is not safe for concurrent use.
type Framer struct {
	// buf holds the bytes of the current, not yet terminated, line.
	buf []byte
}

// NewFramer returns an empty Framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends chunk to the buffer and returns every line completed by it,
// in order, with the "\n" terminator removed. Empty lines are returned as "".
// A chunk that completes no line returns nil.
func (f *Framer) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}

	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}

		lines = append(lines, decode(f.buf[:i]))
		f.buf = f.buf[i+1:]
	}

	// Compact so the backing array does not grow with the stream.
	if len(f.buf) == 0 {
		f.buf = nil
	} else if cap(f.buf) > 2*len(f.buf)+4096 {
		f.buf = append([]byte(nil), f.buf...)
	}

	return lines
}

// Finish flushes the unterminated remainder at stream end. It returns the
// remainder and true when it is non-empty, otherwise "" and false. The
// buffer is empty afterwards.
func (f *Framer) Finish() (string, bool) {
	if len(f.buf) == 0 {
		return "", false
	}

	line := decode(f.buf)
	f.buf = nil
	return line, true
}

// Buffered returns the number of bytes waiting for a line terminator.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// decode converts a complete line to text. Each byte that does not start a
// valid UTF-8 sequence becomes one U+FFFD.
func decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b) + 2*utf8.UTFMax)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[1:]
			continue
		}
		sb.Write(b[:size])
		b = b[size:]
	}
	return sb.String()
}
