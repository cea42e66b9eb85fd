// Package tickets keeps the client side view of the ticket queue consistent
// with the server.
//
// A Store holds the last loaded ticket list. A Transitioner changes a
// ticket's status optimistically and restores the previous list when the
// server rejects the change. An Editor holds the draft status and draft
// assignee set of one open ticket and saves it: the status change and every
// assignee add/remove are sent together, and the store is reloaded once they
// have all succeeded.
//
// Saves are best effort. When one of the calls fails the ones that already
// landed are not compensated; the next reload shows whatever the server
// accepted.
package tickets

import (
	"context"
	"errors"

	"github.com/Ilia01/ticketdesk/internal/models"
)

var (
	ErrFetch              = errors.New("fetch tickets failed")
	ErrInvalidStatus      = models.ErrInvalidStatus
	ErrStatusUpdateFailed = errors.New("status update failed")
	ErrSaveFailed         = errors.New("save failed")
	ErrNoChanges          = errors.New("nothing to save")
	ErrSaveInProgress     = errors.New("save already in progress")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrNoTicketOpen       = errors.New("no ticket open")
)

type Source interface {
	ListTickets(ctx context.Context, q models.TicketQuery) ([]models.Ticket, error)
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, ticketID int64, status models.Status) (*models.Ticket, error)
}

type Assigner interface {
	AssignTicket(ctx context.Context, ticketID int64, target models.AssignTarget) (*models.Assignee, error)
	RemoveAssignee(ctx context.Context, ticketID, assigneeID int64) error
}

// Remote is everything the package needs from the ticket API.
type Remote interface {
	Source
	StatusUpdater
	Assigner
}
