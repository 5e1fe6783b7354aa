package services

import (
	"context"
	"fmt"
	"log/slog"

	"minder/internal/core"
)

// ParentService implements the parent operation set, including the cascade
// delete of the parent's children.
type ParentService struct {
	store Store
}

func NewParentService(store Store) *ParentService {
	return &ParentService{store: store}
}

// ParentPatch carries the fields of an update request; nil fields keep the
// stored value.
type ParentPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

func (s *ParentService) List(ctx context.Context) ([]core.Parent, error) {
	parents, err := s.store.ListParents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	return parents, nil
}

func (s *ParentService) Create(ctx context.Context, p core.Parent) (core.Parent, error) {
	if err := p.Validate(); err != nil {
		return core.Parent{}, err
	}
	created, err := s.store.CreateParent(ctx, p)
	if err != nil {
		return core.Parent{}, fmt.Errorf("save parent: %w", err)
	}
	return created, nil
}

func (s *ParentService) Update(ctx context.Context, id string, patch ParentPatch) (core.Parent, error) {
	p, err := s.store.GetParent(ctx, id)
	if err != nil {
		return core.Parent{}, err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}

	if err := p.Validate(); err != nil {
		return core.Parent{}, err
	}
	if err := s.store.UpdateParent(ctx, p); err != nil {
		return core.Parent{}, fmt.Errorf("save parent: %w", err)
	}
	return p, nil
}

// Delete removes the parent and cascades to its children. Sessions of the
// removed children are left untouched; billing history outlives enrollment.
func (s *ParentService) Delete(ctx context.Context, id string) error {
	removed, err := s.store.DeleteParent(ctx, id)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Parent removed with cascade", "id", id, "children_removed", removed)
	return nil
}
