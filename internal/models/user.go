package models

import "strings"

// User is the public profile of a "users" record.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// DisplayName returns "Name Surname", falling back to the username.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.Name + " " + u.Surname)
	if full != "" {
		return full
	}
	return u.Username
}
