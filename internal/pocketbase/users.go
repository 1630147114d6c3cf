package pocketbase

import (
	"context"
	"fmt"
	"net/http"

	"eventplanner/internal/models"
)

// AuthResponse is the answer to a successful password login.
type AuthResponse struct {
	Token  string       `json:"token"`
	Record *models.User `json:"record"`
}

// NewUser is the body of a sign-up request.
type NewUser struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	EmailVisibility bool   `json:"emailVisibility"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
}

// CreateUser signs up a new user. The record store answers with the public
// profile; it does not log the user in.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (*models.User, error) {
	var created models.User
	if err := c.doJSON(ctx, http.MethodPost, recordsPath(UsersCollection), u, &created); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", u.Username, err)
	}
	return &created, nil
}

// GetUser fetches a user profile.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := c.getRecord(ctx, UsersCollection, id, &u); err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &u, nil
}

// AuthWithPassword logs in with a username or email and a password.
func (c *Client) AuthWithPassword(ctx context.Context, identity, password string) (*AuthResponse, error) {
	body := map[string]string{"identity": identity, "password": password}
	var auth AuthResponse
	path := "/collections/" + UsersCollection + "/auth-with-password"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &auth); err != nil {
		return nil, fmt.Errorf("failed to authenticate %s: %w", identity, err)
	}
	if auth.Token == "" {
		return nil, fmt.Errorf("failed to authenticate %s: empty token in response", identity)
	}
	return &auth, nil
}
