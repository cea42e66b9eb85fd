package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ilia01/ticketdesk/internal/models"
)

func TestSaveLoadClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	sess, err := FromUser(models.User{ID: 3, Email: "sup@example.com", Roles: []models.Role{models.RoleSupport}, Token: "jwt-token"})
	if err != nil {
		t.Fatalf("FromUser failed: %v", err)
	}
	if sess.User.Token != "" {
		t.Fatalf("token should move off the user: %+v", sess.User)
	}

	if err := store.Save(sess); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("session file missing: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected permissions: %v", info.Mode().Perm())
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Token != "jwt-token" || loaded.User.Email != "sup@example.com" {
		t.Fatalf("unexpected session: %+v", loaded)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear got %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
}

func TestFromUserRequiresToken(t *testing.T) {
	if _, err := FromUser(models.User{ID: 1}); err == nil {
		t.Fatalf("expected error for user without token")
	}
}

func TestSaveRejectsAnonymous(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	if err := store.Save(&Session{}); err == nil {
		t.Fatalf("expected error saving empty session")
	}
}
