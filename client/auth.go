package client

import (
	"context"

	"github.com/openmechanic/garage-manager/models"
)

// loginResponse is the shape of the login/ and register/ responses
type loginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    models.User `json:"user"`
}

// Login exchanges credentials for a token pair and stores it in the session
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	var resp loginResponse
	err := c.Post(ctx, "login/", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.SetTokens(resp.Access, resp.Refresh); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Register creates a new user account and logs it in
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var resp loginResponse
	err := c.Post(ctx, "register/", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if err := c.session.SetTokens(resp.Access, resp.Refresh); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout discards the session credentials
func (c *Client) Logout() {
	c.session.Logout()
}
