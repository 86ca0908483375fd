package credentials

// Credentials represents the stored server tokens in credentials.toml.
type Credentials struct {
	Version int                         `toml:"version"`
	Servers map[string]ServerCredential `toml:"servers"`
}

// ServerCredential is the login issued by one parley server.
type ServerCredential struct {
	Token    string `toml:"token"`
	Username string `toml:"username,omitempty"`
}
