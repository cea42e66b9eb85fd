package tickets

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ilia01/ticketdesk/internal/models"
)

// Store owns the in-memory ticket list and the selected ticket id.
// All accessors return copies.
type Store struct {
	source Source
	query  models.TicketQuery

	mu       sync.RWMutex
	tickets  []models.Ticket
	selected int64
	closed   bool
}

func NewStore(source Source, query models.TicketQuery) *Store {
	return &Store{source: source, query: query}
}

func (s *Store) Query() models.TicketQuery {
	return s.query
}

// Load replaces the list with the server's. On failure the previous list is
// kept and the error wraps ErrFetch.
func (s *Store) Load(ctx context.Context) ([]models.Ticket, error) {
	fetched, err := s.source.ListTickets(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.tickets = cloneAll(fetched)
	}
	return cloneAll(fetched), nil
}

func (s *Store) Tickets() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tickets)
}

// Snapshot is Tickets under the name used by the rollback path.
func (s *Store) Snapshot() []models.Ticket {
	return s.Tickets()
}

// Filter returns tickets in the given status; an empty status matches all.
func (s *Store) Filter(status models.Status) []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Ticket
	for _, t := range s.tickets {
		if status == "" || t.Status == status {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (s *Store) Find(id int64) (models.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

func (s *Store) findLocked(id int64) (models.Ticket, bool) {
	for _, t := range s.tickets {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Ticket{}, false
}

// Select marks id as the selected ticket. The selected ticket is always read
// through the list, so status changes and rollbacks apply to it too.
func (s *Store) Select(id int64) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.findLocked(id)
	if !ok {
		return models.Ticket{}, fmt.Errorf("%w: %d", ErrTicketNotFound, id)
	}
	if !s.closed {
		s.selected = id
	}
	return t, nil
}

func (s *Store) Selected() (models.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == 0 {
		return models.Ticket{}, false
	}
	return s.findLocked(s.selected)
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = 0
}

// ApplyStatusLocally sets the status of ticket id. Unknown ids are ignored.
func (s *Store) ApplyStatusLocally(id int64, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets[i].Status = status
		}
	}
}

// ReplaceAll swaps in a full list atomically.
func (s *Store) ReplaceAll(tickets []models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.tickets = cloneAll(tickets)
}

// Close detaches the store from its consumer. Responses that arrive after
// Close no longer mutate the list.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func cloneAll(tickets []models.Ticket) []models.Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = t.Clone()
	}
	return out
}
