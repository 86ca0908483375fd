package chatclient

// TokenSource supplies the bearer token attached to requests. An empty token
// means none is available and no Authorization header is sent.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource that always returns itself.
type StaticToken string

// Token returns the token.
func (t StaticToken) Token() (string, error) {
	return string(t), nil
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, error)

// Token calls f.
func (f TokenFunc) Token() (string, error) {
	return f()
}
