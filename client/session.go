package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the minimal user profile kept between runs, the browser
// localStorage analog: read on startup to decide authentication state,
// cleared on logout.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// ErrNoSession is returned by LoadSession when no session file exists.
var ErrNoSession = errors.New("no saved session")

// DefaultSessionPath returns the per-user session file location.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trustbyte", "session.json"), nil
}

// LoadSession reads a previously saved session from path.
func LoadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, err
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// SaveSession writes the session to path, creating parent directories. The
// file holds a bearer token, hence the restrictive mode.
func SaveSession(path string, s Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// ClearSession removes the session file. Missing files are not an error.
func ClearSession(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
