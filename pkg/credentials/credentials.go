// Package credentials stores the tokens parley servers issue on login.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/parley/pkg/chatclient"
	"github.com/papercomputeco/parley/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// Manager manages reading and writing credentials.toml in the .parley/ directory.
type Manager struct {
	targetPath string
}

// NewManager creates a new credentials Manager. If override is non-empty it is
// used as the .parley/ directory; otherwise the standard dotdir resolution applies.
func NewManager(override string) (*Manager, error) {
	path, err := dotdir.NewManager().File(override, credentialsFile)
	if err != nil {
		return nil, err
	}

	return &Manager{targetPath: path}, nil
}

// Load reads credentials.toml from the target directory.
// Returns an empty Credentials if the file does not exist.
func (m *Manager) Load() (*Credentials, error) {
	data, err := os.ReadFile(m.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{
				Version: currentVersion,
				Servers: make(map[string]ServerCredential),
			}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	creds := &Credentials{}
	if err := toml.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if creds.Servers == nil {
		creds.Servers = make(map[string]ServerCredential)
	}

	return creds, nil
}

// Save writes credentials to credentials.toml with 0600 permissions.
func (m *Manager) Save(creds *Credentials) error {
	if creds == nil {
		return errors.New("cannot save nil credentials")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(m.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// SetToken stores the token issued to username by the server at target.
func (m *Manager) SetToken(target, username, token string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	creds.Servers[serverKey(target)] = ServerCredential{Token: token, Username: username}

	return m.Save(creds)
}

// GetToken returns the stored credential for target. The boolean is false when
// nothing is stored.
func (m *Manager) GetToken(target string) (ServerCredential, bool, error) {
	creds, err := m.Load()
	if err != nil {
		return ServerCredential{}, false, err
	}

	sc, ok := creds.Servers[serverKey(target)]
	return sc, ok, nil
}

// RemoveToken deletes the stored credential for target.
func (m *Manager) RemoveToken(target string) error {
	creds, err := m.Load()
	if err != nil {
		return err
	}

	delete(creds.Servers, serverKey(target))

	return m.Save(creds)
}

// ListServers returns the targets that have stored credentials.
func (m *Manager) ListServers() ([]string, error) {
	creds, err := m.Load()
	if err != nil {
		return nil, err
	}

	servers := make([]string, 0, len(creds.Servers))
	for name := range creds.Servers {
		servers = append(servers, name)
	}

	sort.Strings(servers)

	return servers, nil
}

// Source returns a token source that reads the token for target on every
// request, so a login in another terminal is picked up.
func (m *Manager) Source(target string) chatclient.TokenSource {
	return chatclient.TokenFunc(func() (string, error) {
		sc, _, err := m.GetToken(target)
		if err != nil {
			return "", err
		}
		return sc.Token, nil
	})
}

// GetTarget returns the resolved path to the credentials file.
func (m *Manager) GetTarget() string {
	return m.targetPath
}

func serverKey(target string) string {
	return strings.TrimRight(target, "/")
}
