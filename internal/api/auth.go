package api

import (
	"context"
	"net/http"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, username, password string) (*TokenResponse, error) {
	response := &TokenResponse{}
	if err := c.do(ctx, http.MethodPost, "/auth/register", &credentials{Username: username, Password: password}, response); err != nil {
		return nil, err
	}
	return response, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	response := &TokenResponse{}
	if err := c.do(ctx, http.MethodPost, "/auth/login", &credentials{Username: username, Password: password}, response); err != nil {
		return nil, err
	}
	return response, nil
}
