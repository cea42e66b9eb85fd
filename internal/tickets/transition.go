package tickets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Ilia01/ticketdesk/internal/models"
)

// Transitioner applies status changes optimistically.
//
// Two transitions racing on the same ticket are not ordered: whichever
// response arrives last decides the final local state.
type Transitioner struct {
	store  *Store
	remote StatusUpdater
	log    zerolog.Logger
}

func NewTransitioner(store *Store, remote StatusUpdater, log zerolog.Logger) *Transitioner {
	return &Transitioner{store: store, remote: remote, log: log}
}

// Apply sets ticket id to status locally, then confirms with the server.
// If the server call fails the list is restored to what it was before the
// call and the returned error wraps ErrStatusUpdateFailed.
func (t *Transitioner) Apply(ctx context.Context, id int64, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	snapshot := t.store.Snapshot()
	t.store.ApplyStatusLocally(id, status)

	if _, err := t.remote.UpdateStatus(ctx, id, status); err != nil {
		t.store.ReplaceAll(snapshot)
		t.log.Warn().Err(err).Int64("ticket", id).Str("status", string(status)).Msg("status update rejected, rolled back")
		return fmt.Errorf("%w: ticket %d: %w", ErrStatusUpdateFailed, id, err)
	}

	t.log.Debug().Int64("ticket", id).Str("status", string(status)).Msg("status updated")
	return nil
}
