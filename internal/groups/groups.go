// Package groups manages the user groups private events are shared with.
package groups

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"eventplanner/internal/models"
	"eventplanner/internal/pocketbase"
	"eventplanner/internal/session"
)

const (
	NameMinLen = 3
	NameMaxLen = 50

	maxParallelLookups = 8
)

var (
	ErrNoViewer    = errors.New("log in to manage groups")
	ErrNotOwner    = errors.New("group belongs to another user")
	ErrInvalidName = errors.New("group name must be 3-50 characters")
)

// Store is the subset of the record store the service needs.
type Store interface {
	ListGroups(ctx context.Context, opts pocketbase.ListOptions) (*pocketbase.ListResult[models.Group], error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	CreateGroup(ctx context.Context, g *models.Group) (*models.Group, error)
	UpdateGroup(ctx context.Context, g *models.Group) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ServiceConfig holds configuration for the group service
type ServiceConfig struct {
	Store    Store
	Identity session.Identity
	Logger   *slog.Logger
}

// Service handles group browsing and owner-only changes.
type Service struct {
	store    Store
	identity session.Identity
	logger   *slog.Logger
}

// NewService creates a new group service
func NewService(cfg ServiceConfig) *Service {
	identity := cfg.Identity
	if identity == nil {
		identity = session.Anonymous
	}
	return &Service{store: cfg.Store, identity: identity, logger: cfg.Logger}
}

// ValidateName requires 3 to 50 characters after trimming.
func ValidateName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= NameMinLen && n <= NameMaxLen
}

// List returns every group, sorted by name.
func (s *Service) List(ctx context.Context) ([]models.Group, error) {
	var all []models.Group
	opts := pocketbase.ListOptions{Page: 1, PerPage: 200, Sort: "name"}
	for {
		page, err := s.store.ListGroups(ctx, opts)
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

// Owned returns the groups the viewer owns. These are the ones a private
// event can be shared with.
func (s *Service) Owned(ctx context.Context) ([]models.Group, error) {
	viewer := s.identity.CurrentUserID()
	if viewer == "" {
		return nil, ErrNoViewer
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var owned []models.Group
	for _, g := range all {
		if g.Owner == viewer {
			owned = append(owned, g)
		}
	}
	return owned, nil
}

// Get fetches one group.
func (s *Service) Get(ctx context.Context, id string) (*models.Group, error) {
	return s.store.GetGroup(ctx, id)
}

// Create makes a group owned by the viewer with the viewer as first member.
func (s *Service) Create(ctx context.Context, name string) (*models.Group, error) {
	viewer := s.identity.CurrentUserID()
	if viewer == "" {
		return nil, ErrNoViewer
	}
	if !ValidateName(name) {
		return nil, ErrInvalidName
	}
	return s.store.CreateGroup(ctx, &models.Group{
		Name:    strings.TrimSpace(name),
		Owner:   viewer,
		Members: []string{viewer},
	})
}

// Rename changes the name of a group the viewer owns.
func (s *Service) Rename(ctx context.Context, id, name string) (*models.Group, error) {
	if !ValidateName(name) {
		return nil, ErrInvalidName
	}
	g, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Name = strings.TrimSpace(name)
	return s.store.UpdateGroup(ctx, g)
}

// Delete removes a group the viewer owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.owned(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteGroup(ctx, id)
}

func (s *Service) owned(ctx context.Context, id string) (*models.Group, error) {
	viewer := s.identity.CurrentUserID()
	if viewer == "" {
		return nil, ErrNoViewer
	}
	g, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Owner != viewer {
		return nil, fmt.Errorf("%w: %s", ErrNotOwner, id)
	}
	return g, nil
}

// Members resolves the profiles of a group's members, in roster order.
// Profiles that cannot be fetched are skipped.
func (s *Service) Members(ctx context.Context, g *models.Group) ([]models.User, error) {
	profiles := make([]*models.User, len(g.Members))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelLookups)
	for i, id := range g.Members {
		eg.Go(func() error {
			u, err := s.store.GetUser(egctx, id)
			if err != nil {
				s.logger.Warn("Failed to fetch group member", "groupID", g.ID, "userID", id, "error", err)
				return nil
			}
			profiles[i] = u
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(profiles))
	for _, u := range profiles {
		if u != nil {
			users = append(users, *u)
		}
	}
	return users, ctx.Err()
}
