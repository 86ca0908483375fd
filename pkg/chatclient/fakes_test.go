package chatclient_test

import (
	"context"
	"io"
	"net/http"

	"github.com/papercomputeco/parley/pkg/chatclient"
)

// chunkBody yields one scripted chunk per Read, then finalErr (io.EOF when nil).
type chunkBody struct {
	chunks   [][]byte
	finalErr error
	reads    int
	closed   int
}

func newChunkBody(chunks ...string) *chunkBody {
	b := &chunkBody{}
	for _, c := range chunks {
		b.chunks = append(b.chunks, []byte(c))
	}
	return b
}

func (b *chunkBody) Read(p []byte) (int, error) {
	if len(b.chunks) == 0 {
		if b.finalErr != nil {
			return 0, b.finalErr
		}
		return 0, io.EOF
	}
	b.reads++
	chunk := b.chunks[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		b.chunks[0] = chunk[n:]
	} else {
		b.chunks = b.chunks[1:]
	}
	return n, nil
}

func (b *chunkBody) Close() error {
	b.closed++
	return nil
}

// fakeTransport returns a canned reply and records what was sent.
type fakeTransport struct {
	reply *chatclient.Reply
	err   error

	payload []byte
	header  http.Header
	calls   int
}

func (t *fakeTransport) Send(_ context.Context, payload []byte, header http.Header) (*chatclient.Reply, error) {
	t.calls++
	t.payload = payload
	t.header = header
	return t.reply, t.err
}

func okReply(body io.ReadCloser) *chatclient.Reply {
	return &chatclient.Reply{StatusCode: http.StatusOK, Body: body}
}
