package chatclient

import "errors"

// Result is the outcome of one streamed exchange.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.Error == "" {
		return errors.New("stream failed")
	}
	return errors.New(r.Error)
}

func succeeded() Result {
	return Result{Success: true}
}

func failed(msg string) Result {
	return Result{Success: false, Error: msg}
}
