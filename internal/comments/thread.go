package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Ilia01/ticketdesk/internal/models"
)

var ErrEmptyComment = errors.New("comment is empty")

type Remote interface {
	ListComments(ctx context.Context, ticketID int64) ([]models.Comment, error)
	CreateComment(ctx context.Context, ticketID int64, text string) (*models.Comment, error)
}

// Thread is the comment list of a single ticket.
type Thread struct {
	remote   Remote
	ticketID int64

	mu       sync.RWMutex
	comments []models.Comment
}

func NewThread(remote Remote, ticketID int64) *Thread {
	return &Thread{remote: remote, ticketID: ticketID}
}

func (t *Thread) TicketID() int64 {
	return t.ticketID
}

func (t *Thread) Load(ctx context.Context) ([]models.Comment, error) {
	comments, err := t.remote.ListComments(ctx, t.ticketID)
	if err != nil {
		return nil, fmt.Errorf("load comments for ticket %d: %w", t.ticketID, err)
	}
	t.mu.Lock()
	t.comments = comments
	t.mu.Unlock()
	return t.Comments(), nil
}

func (t *Thread) Comments() []models.Comment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Comment, len(t.comments))
	copy(out, t.comments)
	return out
}

// Send posts text as a human written comment and reloads the thread so the
// server's ordering and timestamps are shown.
func (t *Thread) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyComment
	}
	if _, err := t.remote.CreateComment(ctx, t.ticketID, text); err != nil {
		return fmt.Errorf("add comment to ticket %d: %w", t.ticketID, err)
	}
	_, err := t.Load(ctx)
	return err
}
