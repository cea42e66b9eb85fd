package api

import (
	"context"
	"net/http"

	"github.com/Ilia01/ticketdesk/internal/models"
	"github.com/Ilia01/ticketdesk/internal/session"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session. The caller decides whether to
// persist it.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) Signup(ctx context.Context, email, password string) (*session.Session, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*session.Session, error) {
	var user models.User
	if err := c.call(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, &user); err != nil {
		return nil, err
	}
	return session.FromUser(user)
}
