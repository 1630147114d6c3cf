// Package session carries the identity of the logged-in user explicitly
// through the client instead of a process-wide auth handle.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventplanner/internal/models"
)

// Session is an authenticated identity: the store-issued token and the
// profile of the user it belongs to.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"record,omitempty"`

	now func() time.Time
}

// Identity answers "who is the current user". An empty id means nobody is
// logged in.
type Identity interface {
	CurrentUserID() string
}

// Anonymous is the identity of a viewer without a session.
var Anonymous Identity = &Session{}

// New builds a session from an auth response.
func New(token string, user *models.User) *Session {
	return &Session{Token: token, User: user}
}

// CurrentUserID returns the user id, or "" when there is no valid session.
func (s *Session) CurrentUserID() string {
	if s == nil || s.Token == "" {
		return ""
	}
	claims, err := s.claims()
	if err != nil {
		return ""
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && !exp.After(s.clock()) {
		return ""
	}
	if s.User != nil && s.User.ID != "" {
		return s.User.ID
	}
	if id, ok := claims["id"].(string); ok {
		return id
	}
	return ""
}

// Valid reports whether the session identifies a user.
func (s *Session) Valid() bool {
	return s.CurrentUserID() != ""
}

// AuthToken returns the raw token for the Authorization header.
func (s *Session) AuthToken() string {
	if s == nil {
		return ""
	}
	return s.Token
}

// claims parses the token without verifying its signature; the record store
// is the only party that can and does verify it.
func (s *Session) claims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	return claims, nil
}

func (s *Session) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Save writes the session to path with owner-only permissions.
func Save(path string, s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Load reads a session saved by Save. A missing file yields an empty session,
// not an error.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &s, nil
}

// Clear removes a saved session.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
