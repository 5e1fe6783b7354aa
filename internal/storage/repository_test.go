package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"minder/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "minder.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedParent(t *testing.T, repo *SQLiteRepository) core.Parent {
	t.Helper()
	p, err := repo.CreateParent(context.Background(), core.Parent{
		Name: "Anna", Email: "a@x.com", Phone: "1", Address: "addr",
	})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	return p
}

func seedChild(t *testing.T, repo *SQLiteRepository, parentID string) core.Child {
	t.Helper()
	c, err := repo.CreateChild(context.Background(), core.Child{
		Name: "Kid", DateOfBirth: core.NewDate(2020, 1, 1), ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return c
}

func seedSession(t *testing.T, repo *SQLiteRepository, childID string) core.Session {
	t.Helper()
	s, err := repo.CreateSession(context.Background(), core.Session{
		ChildID:    childID,
		Date:       core.NewDate(2024, 3, 12),
		StartTime:  time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 3, 12, 17, 0, 0, 0, time.UTC),
		Type:       core.Hourly,
		PickupCost: core.Money{Cents: 1000},
		AdditionalCosts: []core.AdditionalCost{
			{Description: "snack", Amount: core.Money{Cents: 250}},
		},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return s
}

func TestParentCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := seedParent(t, repo)
	if p.ID == "" {
		t.Fatal("create must assign an id")
	}

	got, err := repo.GetParent(ctx, p.ID)
	if err != nil {
		t.Fatalf("get parent: %v", err)
	}
	if got != p {
		t.Fatalf("expected %+v, got %+v", p, got)
	}

	p.Email = "new@x.com"
	if err := repo.UpdateParent(ctx, p); err != nil {
		t.Fatalf("update parent: %v", err)
	}
	got, _ = repo.GetParent(ctx, p.ID)
	if got.Email != "new@x.com" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if _, err := repo.GetParent(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateParent(ctx, core.Parent{ID: "missing", Name: "x"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestListParentsInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var want []string
	for _, name := range []string{"Zoe", "Anna", "Mia"} {
		p, err := repo.CreateParent(ctx, core.Parent{Name: name})
		if err != nil {
			t.Fatalf("create parent: %v", err)
		}
		want = append(want, p.ID)
	}

	parents, err := repo.ListParents(ctx)
	if err != nil {
		t.Fatalf("list parents: %v", err)
	}
	if len(parents) != len(want) {
		t.Fatalf("expected %d parents, got %d", len(want), len(parents))
	}
	for i, p := range parents {
		if p.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.ID)
		}
	}
}

func TestDeleteParentCascadesChildrenOnly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := seedParent(t, repo)
	c1 := seedChild(t, repo, p.ID)
	c2 := seedChild(t, repo, p.ID)
	s := seedSession(t, repo, c1.ID)

	other := seedParent(t, repo)
	kept := seedChild(t, repo, other.ID)

	removed, err := repo.DeleteParent(ctx, p.ID)
	if err != nil {
		t.Fatalf("delete parent: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 children removed, got %d", removed)
	}

	for _, id := range []string{c1.ID, c2.ID} {
		if _, err := repo.GetChild(ctx, id); !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("child %s should be gone, got %v", id, err)
		}
	}
	if _, err := repo.GetChild(ctx, kept.ID); err != nil {
		t.Fatalf("unrelated child must survive: %v", err)
	}

	// Sessions are not cascaded when their child goes away.
	if _, err := repo.GetSession(ctx, s.ID); err != nil {
		t.Fatalf("session must survive parent cascade: %v", err)
	}
}

func TestDeleteParentZeroChildren(t *testing.T) {
	repo := newTestRepo(t)
	p := seedParent(t, repo)

	removed, err := repo.DeleteParent(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("delete childless parent: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 children removed, got %d", removed)
	}
}

func TestDeleteMissingRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.DeleteParent(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for parent, got %v", err)
	}
	if err := repo.DeleteChild(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for child, got %v", err)
	}
	if err := repo.DeleteSession(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for session, got %v", err)
	}

	// Repeat delete of an existing record also fails.
	p := seedParent(t, repo)
	if _, err := repo.DeleteParent(ctx, p.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if _, err := repo.DeleteParent(ctx, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("repeat delete must fail, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := seedParent(t, repo)
	c := seedChild(t, repo, p.ID)
	s := seedSession(t, repo, c.ID)

	got, err := repo.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.ChildID != c.ID || got.Type != core.Hourly {
		t.Fatalf("unexpected session: %+v", got)
	}
	if !got.StartTime.Equal(s.StartTime) || !got.EndTime.Equal(s.EndTime) {
		t.Fatalf("times not preserved: %+v", got)
	}
	if len(got.AdditionalCosts) != 1 || got.AdditionalCosts[0].Description != "snack" {
		t.Fatalf("additional costs not preserved: %+v", got.AdditionalCosts)
	}
	if got.TotalCost().Cents != 1250 {
		t.Fatalf("expected total 1250 cents, got %d", got.TotalCost().Cents)
	}
}

func TestUpdateSessionReplacesCosts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := seedParent(t, repo)
	c := seedChild(t, repo, p.ID)
	s := seedSession(t, repo, c.ID)

	s.AdditionalCosts = []core.AdditionalCost{
		{Description: "lunch", Amount: core.Money{Cents: 500}},
		{Description: "trip", Amount: core.Money{Cents: 300}},
	}
	s.Type = core.Daily
	if err := repo.UpdateSession(ctx, s); err != nil {
		t.Fatalf("update session: %v", err)
	}

	got, err := repo.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Type != core.Daily {
		t.Fatalf("type not updated: %+v", got)
	}
	if len(got.AdditionalCosts) != 2 || got.AdditionalCosts[0].Description != "lunch" {
		t.Fatalf("costs not replaced in order: %+v", got.AdditionalCosts)
	}
	if got.TotalCost().Cents != 1800 {
		t.Fatalf("expected total 1800 cents, got %d", got.TotalCost().Cents)
	}
}

func TestDeleteChildLeavesSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	p := seedParent(t, repo)
	c := seedChild(t, repo, p.ID)
	s := seedSession(t, repo, c.ID)

	if err := repo.DeleteChild(ctx, c.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if _, err := repo.GetSession(ctx, s.ID); err != nil {
		t.Fatalf("session must survive child delete: %v", err)
	}
}
