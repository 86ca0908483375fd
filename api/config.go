// Package api provides the parley HTTP server: mock login, streamed chat
// replies and the transcript of recorded exchanges.
package api

import "time"

// DefaultAllowOrigins are the development front ends allowed by CORS.
var DefaultAllowOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3001")
	ListenAddr string

	// AllowOrigins lists the origins permitted by CORS.
	AllowOrigins []string

	// EventDelay is the pause between streamed reply events.
	EventDelay time.Duration

	// Seed makes the mock replies reproducible when non-zero.
	Seed uint64
}
