// Package auth holds the mock credential check and token scheme used by the
// parley API. Tokens are not secrets: a token names its user and nothing is
// stored server side.
package auth

import (
	"errors"
	"fmt"
	"strings"
)

// TokenPrefix starts every token issued by Login.
const TokenPrefix = "token_"

// AnonymousUsername is assigned to bearer tokens that name no known user.
const AnonymousUsername = "anonymous"

var (
	// ErrMissingCredentials is returned when a username or password is empty.
	ErrMissingCredentials = errors.New("username and password are required")

	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMissingToken is returned when no bearer token is presented.
	ErrMissingToken = errors.New("authentication required")
)

// User is the public view of an account.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type account struct {
	user     User
	password string
}

// Directory is a fixed set of accounts.
type Directory struct {
	accounts map[string]account
}

// NewDirectory returns the built-in mock accounts.
func NewDirectory() *Directory {
	d := &Directory{accounts: make(map[string]account)}
	for i, cred := range [][2]string{
		{"admin", "password"},
		{"user", "123456"},
		{"demo", "demo"},
	} {
		d.add(i+1, cred[0], cred[1])
	}
	return d
}

func (d *Directory) add(id int, username, password string) {
	d.accounts[username] = account{
		user: User{
			ID:       id,
			Username: username,
			Email:    username + "@example.com",
		},
		password: password,
	}
}

// Login checks the credentials and returns a token for the user.
func (d *Directory) Login(req LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingCredentials
	}

	acct, ok := d.accounts[req.Username]
	if !ok || acct.password != req.Password {
		return nil, ErrInvalidCredentials
	}

	return &LoginResponse{
		Token: IssueToken(acct.user.Username),
		User:  acct.user,
	}, nil
}

// Lookup returns the user for username.
func (d *Directory) Lookup(username string) (User, bool) {
	acct, ok := d.accounts[username]
	return acct.user, ok
}

// Resolve maps an Authorization header value to a username. Any bearer token
// is accepted; tokens that do not name a known user resolve to
// AnonymousUsername.
func (d *Directory) Resolve(authorization string) (string, error) {
	token, err := BearerToken(authorization)
	if err != nil {
		return "", err
	}

	if username, ok := strings.CutPrefix(token, TokenPrefix); ok {
		if _, known := d.accounts[username]; known {
			return username, nil
		}
	}

	return AnonymousUsername, nil
}

// IssueToken returns the token for username.
func IssueToken(username string) string {
	return TokenPrefix + username
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authorization string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: empty bearer token", ErrMissingToken)
	}

	return token, nil
}
