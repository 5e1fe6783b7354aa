package services

import (
	"context"
	"errors"
	"fmt"

	"minder/internal/core"
	"minder/internal/views"
)

// ChildService implements the child operation set. Every write resolves the
// parent reference first; nothing is persisted for a child pointing at a
// parent that does not exist.
type ChildService struct {
	store Store
}

func NewChildService(store Store) *ChildService {
	return &ChildService{store: store}
}

// ChildPatch carries the fields of an update request; nil fields keep the
// stored value.
type ChildPatch struct {
	Name        *string
	DateOfBirth *core.Date
	ParentID    *string
}

func (s *ChildService) List(ctx context.Context) ([]views.Child, error) {
	children, err := s.store.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return views.ComposeChildren(ctx, s.store, children)
}

func (s *ChildService) Create(ctx context.Context, c core.Child) (views.Child, error) {
	if err := c.Validate(); err != nil {
		return views.Child{}, err
	}
	if err := s.resolveParent(ctx, c.ParentID); err != nil {
		return views.Child{}, err
	}

	created, err := s.store.CreateChild(ctx, c)
	if err != nil {
		return views.Child{}, fmt.Errorf("save child: %w", err)
	}
	return views.ComposeChild(ctx, s.store, created)
}

func (s *ChildService) Update(ctx context.Context, id string, patch ChildPatch) (views.Child, error) {
	c, err := s.store.GetChild(ctx, id)
	if err != nil {
		return views.Child{}, err
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.DateOfBirth != nil {
		c.DateOfBirth = *patch.DateOfBirth
	}
	if patch.ParentID != nil {
		c.ParentID = *patch.ParentID
	}

	if err := c.Validate(); err != nil {
		return views.Child{}, err
	}
	if err := s.resolveParent(ctx, c.ParentID); err != nil {
		return views.Child{}, err
	}

	if err := s.store.UpdateChild(ctx, c); err != nil {
		return views.Child{}, fmt.Errorf("save child: %w", err)
	}
	return views.ComposeChild(ctx, s.store, c)
}

// Delete is a leaf delete: the child's sessions are deliberately left in
// place, matching the cascade asymmetry of parent deletion.
func (s *ChildService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteChild(ctx, id)
}

func (s *ChildService) resolveParent(ctx context.Context, parentID string) error {
	_, err := s.store.GetParent(ctx, parentID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("parent %s: %w", parentID, core.ErrUnknownParent)
	}
	if err != nil {
		return fmt.Errorf("resolve parent: %w", err)
	}
	return nil
}
