package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Ilia01/ticketdesk/internal/models"
)

func (c *Client) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	var users []models.User
	if err := c.call(ctx, http.MethodGet, "/private/users?"+escapeQuery("role", string(role)), nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) ListAllUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.call(ctx, http.MethodGet, "/admin/all-users", nil, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Token = ""
	}
	return users, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, userID int64, role models.Role) error {
	path := idPath("/admin/update/%s/role", userID) + "?" + escapeQuery("role", string(role))
	return c.call(ctx, http.MethodPut, path, nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	return c.projects(ctx, "/private/projects")
}

// ListMyProjects returns the projects the current user is a member of.
func (c *Client) ListMyProjects(ctx context.Context) ([]models.Project, error) {
	return c.projects(ctx, "/private/myProjects")
}

func (c *Client) projects(ctx context.Context, path string) ([]models.Project, error) {
	var projects []models.Project
	if err := c.call(ctx, http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, name string, members []models.User) (*models.Project, error) {
	payload := struct {
		Name  string        `json:"name"`
		Users []models.User `json:"users"`
	}{Name: name, Users: members}

	var created models.Project
	if err := c.call(ctx, http.MethodPost, "/private/create-project", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListApplications(ctx context.Context) ([]models.Application, error) {
	return c.applications(ctx, "/public/apps")
}

func (c *Client) ListMyApplications(ctx context.Context) ([]models.Application, error) {
	return c.applications(ctx, "/client/my-apps")
}

func (c *Client) applications(ctx context.Context, path string) ([]models.Application, error) {
	var apps []models.Application
	if err := c.call(ctx, http.MethodGet, path, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) OwnApplication(ctx context.Context, appID int64) error {
	return c.call(ctx, http.MethodPut, idPath("/client/own-app/%s", appID), nil, nil)
}

// AddApplication registers a new application. The response body is not
// part of the contract and is discarded.
func (c *Client) AddApplication(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodPost, "/admin/new-app/"+url.PathEscape(name), nil, nil)
}
