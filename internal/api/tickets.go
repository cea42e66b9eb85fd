package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Ilia01/ticketdesk/internal/models"
)

func ticketListPath(q models.TicketQuery) (string, error) {
	switch q.Scope {
	case models.ScopeAll, "":
		return "/support/all-tickets", nil
	case models.ScopeMine:
		return "/client/my", nil
	case models.ScopePersonal:
		return "/private/get-my-tickets", nil
	case models.ScopeProject:
		if q.ProjectID <= 0 {
			return "", fmt.Errorf("project scope requires a project id")
		}
		return idPath("/private/get-project-tickets/%s", q.ProjectID), nil
	}
	return "", fmt.Errorf("unknown ticket scope: %s", q.Scope)
}

func (c *Client) ListTickets(ctx context.Context, q models.TicketQuery) ([]models.Ticket, error) {
	path, err := ticketListPath(q)
	if err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	if err := c.call(ctx, http.MethodGet, path, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *Client) CreateTicket(ctx context.Context, t models.NewTicket) (*models.Ticket, error) {
	var created models.Ticket
	if err := c.call(ctx, http.MethodPost, "/client/add", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateStatus(ctx context.Context, ticketID int64, status models.Status) (*models.Ticket, error) {
	payload := map[string]models.Status{"status": status}
	var updated models.Ticket
	if err := c.call(ctx, http.MethodPatch, idPath("/support/ticket/%s/status", ticketID), payload, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) AssignTicket(ctx context.Context, ticketID int64, target models.AssignTarget) (*models.Assignee, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	var created models.Assignee
	if err := c.call(ctx, http.MethodPost, idPath("/support/assign/%s", ticketID), target, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) RemoveAssignee(ctx context.Context, ticketID, assigneeID int64) error {
	path := idPath("/delete/%s/assign", ticketID) + "?" + escapeQuery("id", strconv.FormatInt(assigneeID, 10))
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) ListComments(ctx context.Context, ticketID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.call(ctx, http.MethodGet, idPath("/private/comments/%s", ticketID), nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) CreateComment(ctx context.Context, ticketID int64, text string) (*models.Comment, error) {
	payload := struct {
		Comment     string `json:"comment"`
		AIGenerated bool   `json:"aiGenerated"`
	}{Comment: text}

	var created models.Comment
	if err := c.call(ctx, http.MethodPost, idPath("/private/comment/%s", ticketID), payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
