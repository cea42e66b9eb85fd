// Package session holds the authenticated user's bearer credential.
//
// A Session is created on login or signup, saved next to the configuration
// file, and cleared on logout. Nothing reads the credential implicitly: the
// API client is handed a Session value explicitly.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ilia01/ticketdesk/internal/config"
	"github.com/Ilia01/ticketdesk/internal/models"
)

var ErrNoSession = errors.New("not logged in")

type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// FromUser builds a session from a login/signup response, which carries the
// token on the user object.
func FromUser(u models.User) (*Session, error) {
	if u.Token == "" {
		return nil, errors.New("server response did not include a token")
	}
	token := u.Token
	u.Token = ""
	return &Session{User: u, Token: token}, nil
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore keeps the session in the configuration directory.
func DefaultStore() (*Store, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "session.json")), nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	if !sess.Authenticated() {
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *Store) Save(sess *Session) error {
	if !sess.Authenticated() {
		return errors.New("refusing to save a session without a token")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return config.WritePrivate(s.path, data)
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
