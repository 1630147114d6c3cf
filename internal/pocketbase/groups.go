package pocketbase

import (
	"context"
	"fmt"
	"net/http"

	"eventplanner/internal/models"
)

// groupBody is the writable part of a group record.
type groupBody struct {
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Members []string `json:"users"`
}

func newGroupBody(g *models.Group) groupBody {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return groupBody{Name: g.Name, Owner: g.Owner, Members: members}
}

// GetGroup fetches one group record.
func (c *Client) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var g models.Group
	if err := c.getRecord(ctx, GroupsCollection, id, &g); err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", id, err)
	}
	return &g, nil
}

// ListGroups fetches one page of groups.
func (c *Client) ListGroups(ctx context.Context, opts ListOptions) (*ListResult[models.Group], error) {
	var page ListResult[models.Group]
	if err := c.listRecords(ctx, GroupsCollection, opts, &page); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return &page, nil
}

// CreateGroup creates a group record.
func (c *Client) CreateGroup(ctx context.Context, g *models.Group) (*models.Group, error) {
	var created models.Group
	if err := c.doJSON(ctx, http.MethodPost, recordsPath(GroupsCollection), newGroupBody(g), &created); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	c.logger.Info("Created group", "id", created.ID, "name", created.Name)
	return &created, nil
}

// UpdateGroup overwrites the writable fields of a group record.
func (c *Client) UpdateGroup(ctx context.Context, g *models.Group) (*models.Group, error) {
	var updated models.Group
	if err := c.doJSON(ctx, http.MethodPatch, recordPath(GroupsCollection, g.ID), newGroupBody(g), &updated); err != nil {
		return nil, fmt.Errorf("failed to update group %s: %w", g.ID, err)
	}
	return &updated, nil
}

// DeleteGroup deletes a group record.
func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	if err := c.deleteRecord(ctx, GroupsCollection, id); err != nil {
		return fmt.Errorf("failed to delete group %s: %w", id, err)
	}
	c.logger.Info("Deleted group", "id", id)
	return nil
}
