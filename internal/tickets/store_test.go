package tickets

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Ilia01/ticketdesk/internal/models"
)

func loadedStore(t *testing.T, remote *fakeRemote) *Store {
	t.Helper()
	store := NewStore(remote, models.TicketQuery{Scope: models.ScopeAll})
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return store
}

func TestStoreLoadKeepsPreviousListOnFailure(t *testing.T) {
	remote := &fakeRemote{tickets: []models.Ticket{{ID: 1, Status: models.StatusOpen}}}
	store := loadedStore(t, remote)
	before := store.Tickets()

	remote.listErr = errBoom
	_, err := store.Load(context.Background())
	if !errors.Is(err, ErrFetch) || !errors.Is(err, errBoom) {
		t.Fatalf("expected ErrFetch wrapping cause got %v", err)
	}
	if diff := cmp.Diff(before, store.Tickets()); diff != "" {
		t.Fatalf("list changed after failed load (-before +after):\n%s", diff)
	}
}

func TestApplyStatusLocally(t *testing.T) {
	remote := &fakeRemote{tickets: []models.Ticket{
		{ID: 1, Status: models.StatusOpen},
		{ID: 2, Status: models.StatusOpen},
	}}
	store := loadedStore(t, remote)
	if _, err := store.Select(2); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	store.ApplyStatusLocally(2, models.StatusResolved)
	store.ApplyStatusLocally(2, models.StatusResolved)
	store.ApplyStatusLocally(99, models.StatusClosed)

	selected, ok := store.Selected()
	if !ok || selected.Status != models.StatusResolved {
		t.Fatalf("selected ticket not updated: %+v", selected)
	}
	if got, _ := store.Find(1); got.Status != models.StatusOpen {
		t.Fatalf("unrelated ticket changed: %+v", got)
	}
	if len(store.Tickets()) != 2 {
		t.Fatalf("unknown id should be a no-op")
	}
}

func TestStoreFilter(t *testing.T) {
	remote := &fakeRemote{tickets: []models.Ticket{
		{ID: 1, Status: models.StatusOpen},
		{ID: 2, Status: models.StatusClosed},
		{ID: 3, Status: models.StatusOpen},
	}}
	store := loadedStore(t, remote)

	if got := store.Filter(models.StatusOpen); len(got) != 2 {
		t.Fatalf("expected 2 open tickets got %d", len(got))
	}
	if got := store.Filter(""); len(got) != 3 {
		t.Fatalf("empty filter should match all, got %d", len(got))
	}
}

func TestStoreSelectUnknown(t *testing.T) {
	store := loadedStore(t, &fakeRemote{})
	if _, err := store.Select(5); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("expected ErrTicketNotFound got %v", err)
	}
}

func TestStoreCloseIgnoresLateMutations(t *testing.T) {
	remote := &fakeRemote{tickets: []models.Ticket{{ID: 1, Status: models.StatusOpen}}}
	store := loadedStore(t, remote)
	store.Close()

	store.ApplyStatusLocally(1, models.StatusClosed)
	store.ReplaceAll(nil)
	remote.setTickets(models.Ticket{ID: 7})
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	got := store.Tickets()
	if len(got) != 1 || got[0].ID != 1 || got[0].Status != models.StatusOpen {
		t.Fatalf("closed store mutated: %+v", got)
	}
}
