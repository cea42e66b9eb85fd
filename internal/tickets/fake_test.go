package tickets

import (
	"context"
	"errors"
	"sync"

	"github.com/Ilia01/ticketdesk/internal/models"
)

var errBoom = errors.New("boom")

type statusCall struct {
	id     int64
	status models.Status
}

type fakeRemote struct {
	mu sync.Mutex

	tickets   []models.Ticket
	listErr   error
	statusErr error
	assignErr error
	removeErr error

	listCalls   int
	statusCalls []statusCall
	assignCalls []models.AssignTarget
	removeCalls []int64

	statusStarted chan struct{}
	statusRelease chan struct{}
}

func (f *fakeRemote) ListTickets(ctx context.Context, q models.TicketQuery) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return cloneAll(f.tickets), nil
}

func (f *fakeRemote) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Ticket, error) {
	f.mu.Lock()
	f.statusCalls = append(f.statusCalls, statusCall{id: id, status: status})
	started, release, err := f.statusStarted, f.statusRelease, f.statusErr
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &models.Ticket{ID: id, Status: status}, nil
}

func (f *fakeRemote) AssignTicket(ctx context.Context, id int64, target models.AssignTarget) (*models.Assignee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignCalls = append(f.assignCalls, target)
	if f.assignErr != nil {
		return nil, f.assignErr
	}
	return &models.Assignee{ID: 1000 + int64(len(f.assignCalls))}, nil
}

func (f *fakeRemote) RemoveAssignee(ctx context.Context, ticketID, assigneeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls = append(f.removeCalls, assigneeID)
	return f.removeErr
}

func (f *fakeRemote) setTickets(tickets ...models.Ticket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = tickets
}

func (f *fakeRemote) calls() (status []statusCall, assign []models.AssignTarget, remove []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]statusCall(nil), f.statusCalls...),
		append([]models.AssignTarget(nil), f.assignCalls...),
		append([]int64(nil), f.removeCalls...)
}

func userAssignee(id, userID int64) models.Assignee {
	return models.Assignee{ID: id, User: &models.User{ID: userID, Email: "dev@example.com"}}
}

func projectAssignee(id, projectID int64) models.Assignee {
	return models.Assignee{ID: id, Project: &models.Project{ID: projectID, Name: "Core"}}
}
