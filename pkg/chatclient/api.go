package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/papercomputeco/parley/api/auth"
	"github.com/papercomputeco/parley/pkg/transcript"
)

const (
	// LoginPath is the login endpoint.
	LoginPath = "/api/login"

	// TranscriptsPath lists the caller's recorded exchanges.
	TranscriptsPath = "/api/transcripts"
)

// ErrNoRequester is returned when the transport cannot make plain API calls.
var ErrNoRequester = errors.New("transport does not support API requests")

// APIError is a non-2xx answer from a JSON endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, username, password string) (*auth.LoginResponse, error) {
	payload, err := json.Marshal(auth.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encoding login request: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	var resp auth.LoginResponse
	if err := c.call(ctx, http.MethodPost, LoginPath, payload, header, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transcripts returns the exchanges recorded for the current token.
func (c *Client) Transcripts(ctx context.Context) (*transcript.List, error) {
	header, err := c.header()
	if err != nil {
		return nil, err
	}
	header.Del("Content-Type")
	header.Set("Accept", "application/json")

	var list transcript.List
	if err := c.call(ctx, http.MethodGet, TranscriptsPath, nil, header, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload []byte, header http.Header, out any) error {
	requester, ok := c.transport.(Requester)
	if !ok {
		return ErrNoRequester
	}

	reply, err := requester.Request(ctx, method, path, payload, header)
	if err != nil {
		return err
	}
	if reply == nil || reply.Body == nil {
		return errors.New(errNoBody)
	}
	defer reply.Body.Close()

	body, err := io.ReadAll(io.LimitReader(reply.Body, maxErrorBody*16))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if !reply.OK() {
		var e struct {
			Message string `json:"message"`
		}
		msg := string(body)
		if json.Unmarshal(body, &e) == nil && e.Message != "" {
			msg = e.Message
		}
		return &APIError{StatusCode: reply.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
