package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/papercomputeco/parley/pkg/chatclient"
)

// fiberTransport routes chatclient requests straight into the fiber app.
type fiberTransport struct {
	server *Server
}

var (
	_ chatclient.Transport = (*fiberTransport)(nil)
	_ chatclient.Requester = (*fiberTransport)(nil)
)

func (t *fiberTransport) Send(ctx context.Context, payload []byte, header http.Header) (*chatclient.Reply, error) {
	return t.Request(ctx, http.MethodPost, chatclient.ChatPath, payload, header)
}

func (t *fiberTransport) Request(_ context.Context, method, path string, payload []byte, header http.Header) (*chatclient.Reply, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, body)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.server.app.Test(req, -1)
	if err != nil {
		return nil, err
	}
	return &chatclient.Reply{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
