package services

import (
	"context"
	"fmt"

	"minder/internal/core"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	nextID   int
	parents  map[string]core.Parent
	children map[string]core.Child
	sessions map[string]core.Session

	parentOrder  []string
	childOrder   []string
	sessionOrder []string

	failWith error // when set, every call fails
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		parents:  make(map[string]core.Parent),
		children: make(map[string]core.Child),
		sessions: make(map[string]core.Session),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) CreateParent(ctx context.Context, p core.Parent) (core.Parent, error) {
	if f.failWith != nil {
		return core.Parent{}, f.failWith
	}
	p.ID = f.id("p")
	f.parents[p.ID] = p
	f.parentOrder = append(f.parentOrder, p.ID)
	return p, nil
}

func (f *fakeStore) GetParent(ctx context.Context, id string) (core.Parent, error) {
	if f.failWith != nil {
		return core.Parent{}, f.failWith
	}
	p, ok := f.parents[id]
	if !ok {
		return core.Parent{}, fmt.Errorf("parent %s: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (f *fakeStore) ListParents(ctx context.Context) ([]core.Parent, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]core.Parent, 0, len(f.parentOrder))
	for _, id := range f.parentOrder {
		out = append(out, f.parents[id])
	}
	return out, nil
}

func (f *fakeStore) UpdateParent(ctx context.Context, p core.Parent) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.parents[p.ID]; !ok {
		return fmt.Errorf("parent %s: %w", p.ID, core.ErrNotFound)
	}
	f.parents[p.ID] = p
	return nil
}

func (f *fakeStore) DeleteParent(ctx context.Context, id string) (int64, error) {
	if f.failWith != nil {
		return 0, f.failWith
	}
	if _, ok := f.parents[id]; !ok {
		return 0, fmt.Errorf("parent %s: %w", id, core.ErrNotFound)
	}
	var removed int64
	var keep []string
	for _, cid := range f.childOrder {
		if f.children[cid].ParentID == id {
			delete(f.children, cid)
			removed++
			continue
		}
		keep = append(keep, cid)
	}
	f.childOrder = keep
	delete(f.parents, id)
	f.parentOrder = remove(f.parentOrder, id)
	return removed, nil
}

func (f *fakeStore) CreateChild(ctx context.Context, c core.Child) (core.Child, error) {
	if f.failWith != nil {
		return core.Child{}, f.failWith
	}
	c.ID = f.id("c")
	f.children[c.ID] = c
	f.childOrder = append(f.childOrder, c.ID)
	return c, nil
}

func (f *fakeStore) GetChild(ctx context.Context, id string) (core.Child, error) {
	if f.failWith != nil {
		return core.Child{}, f.failWith
	}
	c, ok := f.children[id]
	if !ok {
		return core.Child{}, fmt.Errorf("child %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (f *fakeStore) ListChildren(ctx context.Context) ([]core.Child, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]core.Child, 0, len(f.childOrder))
	for _, id := range f.childOrder {
		out = append(out, f.children[id])
	}
	return out, nil
}

func (f *fakeStore) UpdateChild(ctx context.Context, c core.Child) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.children[c.ID]; !ok {
		return fmt.Errorf("child %s: %w", c.ID, core.ErrNotFound)
	}
	f.children[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteChild(ctx context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.children[id]; !ok {
		return fmt.Errorf("child %s: %w", id, core.ErrNotFound)
	}
	delete(f.children, id)
	f.childOrder = remove(f.childOrder, id)
	return nil
}

func (f *fakeStore) CreateSession(ctx context.Context, s core.Session) (core.Session, error) {
	if f.failWith != nil {
		return core.Session{}, f.failWith
	}
	s.ID = f.id("s")
	f.sessions[s.ID] = s
	f.sessionOrder = append(f.sessionOrder, s.ID)
	return s, nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (core.Session, error) {
	if f.failWith != nil {
		return core.Session{}, f.failWith
	}
	s, ok := f.sessions[id]
	if !ok {
		return core.Session{}, fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}
	return s, nil
}

func (f *fakeStore) ListSessions(ctx context.Context) ([]core.Session, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]core.Session, 0, len(f.sessionOrder))
	for _, id := range f.sessionOrder {
		out = append(out, f.sessions[id])
	}
	return out, nil
}

func (f *fakeStore) UpdateSession(ctx context.Context, s core.Session) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.sessions[s.ID]; !ok {
		return fmt.Errorf("session %s: %w", s.ID, core.ErrNotFound)
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}
	delete(f.sessions, id)
	f.sessionOrder = remove(f.sessionOrder, id)
	return nil
}

func remove(ids []string, id string) []string {
	var out []string
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
