package models

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Group is a named set of users. Private events reference one group.
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Members []string `json:"users"`
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return userID != "" && slices.Contains(g.Members, userID)
}

// UnmarshalJSON accepts the embedded group object and a bare group id.
func (g *Group) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		*g = Group{}
		return json.Unmarshal(data, &g.ID)
	}
	type plain Group
	return json.Unmarshal(data, (*plain)(g))
}
