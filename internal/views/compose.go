// Package views expands reference ids into embedded records for reads.
//
// Composition is a pure transform over a read-only resolver: nothing is
// persisted, input order is preserved, and a dangling reference omits the
// embedded record instead of failing the whole read.
package views

import (
	"context"
	"errors"

	"minder/internal/core"

	"golang.org/x/sync/errgroup"
)

// Bound on concurrent reference lookups when composing collections.
const resolveLimit = 8

// Resolver provides the lookups needed to expand references.
type Resolver interface {
	GetParent(ctx context.Context, id string) (core.Parent, error)
	GetChild(ctx context.Context, id string) (core.Child, error)
}

type (
	// Child is a child record with its parent embedded. Parent is nil when
	// the reference does not resolve.
	Child struct {
		core.Child
		Parent *core.Parent
	}

	// Session is a session record with its child (itself composed with the
	// parent) embedded, plus the derived total cost.
	Session struct {
		core.Session
		Child *Child
		Total core.Money
	}
)

// ComposeChild resolves the child's parent reference. A missing parent is
// tolerated and leaves Parent nil; any other resolver failure propagates.
func ComposeChild(ctx context.Context, r Resolver, c core.Child) (Child, error) {
	view := Child{Child: c}
	parent, err := r.GetParent(ctx, c.ParentID)
	if errors.Is(err, core.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return Child{}, err
	}
	view.Parent = &parent
	return view, nil
}

// ComposeSession resolves the session's child reference and, through it, the
// parent. The total cost is derived here so every composed session carries it.
func ComposeSession(ctx context.Context, r Resolver, s core.Session) (Session, error) {
	view := Session{Session: s, Total: s.TotalCost()}
	child, err := r.GetChild(ctx, s.ChildID)
	if errors.Is(err, core.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return Session{}, err
	}
	childView, err := ComposeChild(ctx, r, child)
	if err != nil {
		return Session{}, err
	}
	view.Child = &childView
	return view, nil
}

// ComposeChildren composes every child in the slice, resolving references
// concurrently. The result has the same length and order as the input.
func ComposeChildren(ctx context.Context, r Resolver, children []core.Child) ([]Child, error) {
	out := make([]Child, len(children))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for i, c := range children {
		g.Go(func() error {
			view, err := ComposeChild(gctx, r, c)
			if err != nil {
				return err
			}
			out[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ComposeSessions composes every session in the slice, resolving references
// concurrently. The result has the same length and order as the input.
func ComposeSessions(ctx context.Context, r Resolver, sessions []core.Session) ([]Session, error) {
	out := make([]Session, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveLimit)
	for i, s := range sessions {
		g.Go(func() error {
			view, err := ComposeSession(gctx, r, s)
			if err != nil {
				return err
			}
			out[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
