package pocketbase

import (
	"context"
	"fmt"
	"net/http"

	"eventplanner/internal/models"
)

// GetEvent fetches one event record.
func (c *Client) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	if err := c.getRecord(ctx, EventsCollection, id, &ev); err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return &ev, nil
}

// ListEvents fetches one page of events.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) (*ListResult[models.Event], error) {
	var page ListResult[models.Event]
	if err := c.listRecords(ctx, EventsCollection, opts, &page); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &page, nil
}

// ListAllEvents walks every page of events matching filter.
func (c *Client) ListAllEvents(ctx context.Context, filter string) ([]models.Event, error) {
	var all []models.Event
	opts := ListOptions{Page: 1, PerPage: 200, Filter: filter, Sort: "from_date"}
	for {
		page, err := c.ListEvents(ctx, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if page.TotalPages <= opts.Page || len(page.Items) == 0 {
			return all, nil
		}
		opts.Page++
	}
}

// CreateEvent creates an event from a multipart form.
func (c *Client) CreateEvent(ctx context.Context, form *models.Form) (*models.Event, error) {
	var ev models.Event
	if err := c.sendForm(ctx, http.MethodPost, recordsPath(EventsCollection), form, &ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	c.logger.Info("Created event", "id", ev.ID, "title", ev.Title)
	return &ev, nil
}

// UpdateEvent patches an event with a multipart form.
func (c *Client) UpdateEvent(ctx context.Context, id string, form *models.Form) (*models.Event, error) {
	var ev models.Event
	if err := c.sendForm(ctx, http.MethodPatch, recordPath(EventsCollection, id), form, &ev); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	c.logger.Info("Updated event", "id", id)
	return &ev, nil
}

// ClearEventImages removes every attachment from the event's image field and
// touches nothing else.
func (c *Client) ClearEventImages(ctx context.Context, id string) error {
	body := map[string]any{"image": []string{}}
	if err := c.doJSON(ctx, http.MethodPatch, recordPath(EventsCollection, id), body, nil); err != nil {
		return fmt.Errorf("failed to clear images of event %s: %w", id, err)
	}
	return nil
}

// UpdateEventMembers replaces the event's roster.
func (c *Client) UpdateEventMembers(ctx context.Context, id string, members []string) (*models.Event, error) {
	if members == nil {
		members = []string{}
	}
	body := map[string]any{"users": members}
	var ev models.Event
	if err := c.doJSON(ctx, http.MethodPatch, recordPath(EventsCollection, id), body, &ev); err != nil {
		return nil, fmt.Errorf("failed to update roster of event %s: %w", id, err)
	}
	return &ev, nil
}

// DeleteEvent deletes an event record.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.deleteRecord(ctx, EventsCollection, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	c.logger.Info("Deleted event", "id", id)
	return nil
}
