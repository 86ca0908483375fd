package chatclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/parley/pkg/utils"
)

// ChatPath is the endpoint HTTPTransport posts chat requests to.
const ChatPath = "/api/chat"

// Reply is the status and streaming body returned by a Transport. Reading
// Body yields the next chunk of the response, io.EOF signals the end, and
// Close releases the stream.
type Reply struct {
	StatusCode int
	Body       io.ReadCloser
}

// OK reports whether the status is in the 2xx range.
func (r *Reply) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Transport delivers a chat request and returns the streaming reply.
type Transport interface {
	Send(ctx context.Context, payload []byte, header http.Header) (*Reply, error)
}

// Requester is implemented by transports that can make arbitrary API calls.
// Client uses it for the non-streaming endpoints.
type Requester interface {
	Request(ctx context.Context, method, path string, payload []byte, header http.Header) (*Reply, error)
}

// HTTPTransport talks to a parley server over HTTP.
type HTTPTransport struct {
	// Target is the server base URL, e.g. "http://localhost:3001".
	Target string

	// Client performs the requests. Streams can be long lived, so the
	// default client has no overall timeout.
	Client *http.Client
}

var (
	_ Transport = (*HTTPTransport)(nil)
	_ Requester = (*HTTPTransport)(nil)
)

// NewHTTPTransport returns a transport for the server at target.
func NewHTTPTransport(target string) *HTTPTransport {
	return &HTTPTransport{
		Target: strings.TrimRight(target, "/"),
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

// Send posts payload to the chat endpoint.
func (t *HTTPTransport) Send(ctx context.Context, payload []byte, header http.Header) (*Reply, error) {
	return t.Request(ctx, http.MethodPost, ChatPath, payload, header)
}

// Request performs method on path relative to Target.
func (t *HTTPTransport) Request(ctx context.Context, method, path string, payload []byte, header http.Header) (*Reply, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.Target+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", utils.UserAgent())
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", t.Target, err)
	}

	return &Reply{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}
