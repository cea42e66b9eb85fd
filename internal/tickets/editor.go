package tickets

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Ilia01/ticketdesk/internal/models"
)

// Editor holds the draft of the ticket currently open for editing and saves
// it. The draft lives only in the editor until a save succeeds.
type Editor struct {
	store       *Store
	remote      Assigner
	transitions *Transitioner
	log         zerolog.Logger

	mu        sync.Mutex
	persisted models.Ticket
	open      bool
	status    models.Status
	draft     *Draft

	saving atomic.Bool
}

func NewEditor(store *Store, remote Remote, log zerolog.Logger) *Editor {
	return &Editor{
		store:       store,
		remote:      remote,
		transitions: NewTransitioner(store, remote, log),
		log:         log,
	}
}

// Open selects ticket id and resets the draft to its persisted state.
func (e *Editor) Open(id int64) error {
	ticket, err := e.store.Select(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked(ticket)
	return nil
}

func (e *Editor) resetLocked(ticket models.Ticket) {
	e.persisted = ticket
	e.open = true
	e.status = ticket.Status
	e.draft = NewDraft(ticket.Assignees)
}

// Ticket returns the persisted ticket the draft is compared against.
func (e *Editor) Ticket() (models.Ticket, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persisted.Clone(), e.open
}

func (e *Editor) DraftStatus() models.Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Editor) SetStatus(status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrNoTicketOpen
	}
	e.status = status
	return nil
}

func (e *Editor) Assignees() []DraftAssignee {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return nil
	}
	return e.draft.Entries()
}

// AddAssignee queues an assignment. A target already in the draft is a no-op
// and reports false.
func (e *Editor) AddAssignee(target models.AssignTarget) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return false, ErrNoTicketOpen
	}
	return e.draft.AddPending(target)
}

func (e *Editor) RemoveAssignee(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open && e.draft.RemoveByID(id)
}

func (e *Editor) RemoveAssigneeAt(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open && e.draft.RemoveAt(index)
}

func (e *Editor) HasChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasChangesLocked()
}

func (e *Editor) hasChangesLocked() bool {
	if !e.open {
		return false
	}
	if e.status != e.persisted.Status {
		return true
	}
	return AssigneesChanged(e.persisted.Assignees, e.draft.Entries())
}

// CanSave reports whether a save would be accepted right now.
func (e *Editor) CanSave() bool {
	return !e.saving.Load() && e.HasChanges()
}

// Plan describes the calls a save would issue.
type Plan struct {
	TicketID  int64
	NewStatus models.Status
	Changes   Changes
}

func (p Plan) StatusChanged() bool {
	return p.NewStatus != ""
}

func (e *Editor) Plan() (Plan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return Plan{}, ErrNoTicketOpen
	}
	return e.planLocked(), nil
}

func (e *Editor) planLocked() Plan {
	plan := Plan{
		TicketID: e.persisted.ID,
		Changes:  Diff(e.persisted.Assignees, e.draft.Entries()),
	}
	if e.status != e.persisted.Status {
		plan.NewStatus = e.status
	}
	return plan
}

// Save sends the status change and every assignee add/remove concurrently and
// waits for all of them. When all succeed the store is reloaded and the
// draft is reset to the reloaded ticket. When any fails the returned error
// wraps ErrSaveFailed and the first failure; calls that succeeded are not
// undone and the draft is kept for a retry.
func (e *Editor) Save(ctx context.Context) error {
	if !e.saving.CompareAndSwap(false, true) {
		return ErrSaveInProgress
	}
	defer e.saving.Store(false)

	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return ErrNoTicketOpen
	}
	if !e.hasChangesLocked() {
		e.mu.Unlock()
		return ErrNoChanges
	}
	plan := e.planLocked()
	e.mu.Unlock()
	id := plan.TicketID

	var g errgroup.Group
	if plan.StatusChanged() {
		status := plan.NewStatus
		g.Go(func() error {
			return e.transitions.Apply(ctx, id, status)
		})
	}
	for _, added := range plan.Changes.Added {
		target := added.Target()
		g.Go(func() error {
			if _, err := e.remote.AssignTicket(ctx, id, target); err != nil {
				return fmt.Errorf("assign %s: %w", describeTarget(target), err)
			}
			return nil
		})
	}
	for _, removed := range plan.Changes.Removed {
		assigneeID := removed.ID
		g.Go(func() error {
			if err := e.remote.RemoveAssignee(ctx, id, assigneeID); err != nil {
				return fmt.Errorf("remove assignee %d: %w", assigneeID, err)
			}
			return nil
		})
	}

	e.log.Debug().
		Int64("ticket", id).
		Bool("status_changed", plan.StatusChanged()).
		Int("added", len(plan.Changes.Added)).
		Int("removed", len(plan.Changes.Removed)).
		Msg("saving ticket")

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if _, err := e.store.Load(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ticket, ok := e.store.Find(id); ok {
		e.resetLocked(ticket)
	} else {
		e.log.Debug().Int64("ticket", id).Msg("saved ticket left the current scope")
		e.open = false
		e.store.ClearSelection()
	}
	return nil
}

func describeTarget(t models.AssignTarget) string {
	if t.UserID != "" {
		return "user " + t.UserID
	}
	return "project " + t.ProjectID
}
