package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"minder/internal/amqp"
	"minder/internal/core"
	"minder/internal/ledger/memory"
)

type fakeSource struct {
	parents  map[string]core.Parent
	children map[string]core.Child
	sessions map[string]core.Session
}

func (f *fakeSource) GetParent(ctx context.Context, id string) (core.Parent, error) {
	p, ok := f.parents[id]
	if !ok {
		return core.Parent{}, fmt.Errorf("parent %s: %w", id, core.ErrNotFound)
	}
	return p, nil
}

func (f *fakeSource) GetChild(ctx context.Context, id string) (core.Child, error) {
	c, ok := f.children[id]
	if !ok {
		return core.Child{}, fmt.Errorf("child %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (f *fakeSource) GetSession(ctx context.Context, id string) (core.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return core.Session{}, fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}
	return s, nil
}

func newFixture() (*fakeSource, *memory.Store, *LedgerWorker) {
	src := &fakeSource{
		parents: map[string]core.Parent{
			"p1": {ID: "p1", Name: "Anna", Email: "a@x.com"},
		},
		children: map[string]core.Child{
			"c1": {ID: "c1", Name: "Kid", DateOfBirth: core.NewDate(2020, 1, 1), ParentID: "p1"},
		},
		sessions: map[string]core.Session{
			"s1": {
				ID:         "s1",
				ChildID:    "c1",
				Date:       core.NewDate(2024, 3, 12),
				StartTime:  time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC),
				EndTime:    time.Date(2024, 3, 12, 17, 0, 0, 0, time.UTC),
				Type:       core.Hourly,
				PickupCost: core.Money{Cents: 1000},
				AdditionalCosts: []core.AdditionalCost{
					{Description: "snack", Amount: core.Money{Cents: 250}},
				},
			},
		},
	}
	store := memory.New()
	return src, store, NewLedgerWorker(src, store, store)
}

func TestUpsertWritesLedgerRow(t *testing.T) {
	_, store, w := newFixture()

	ev := amqp.NewSessionUpsert("s1", 1)
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handle upsert: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(entries))
	}
	e := entries[0]
	if e.SessionID != "s1" || e.ChildName != "Kid" || e.ParentName != "Anna" {
		t.Fatalf("row mismatch: %+v", e)
	}
	if e.Total.Cents != 1250 {
		t.Fatalf("expected total 1250 cents, got %d", e.Total.Cents)
	}
}

func TestUpsertTwiceKeepsOneRow(t *testing.T) {
	src, store, w := newFixture()
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewSessionUpsert("s1", 1)); err != nil {
		t.Fatalf("handle upsert: %v", err)
	}

	s := src.sessions["s1"]
	s.PickupCost = core.Money{Cents: 2000}
	src.sessions["s1"] = s

	if err := w.HandleEvent(ctx, amqp.NewSessionUpsert("s1", 2)); err != nil {
		t.Fatalf("handle re-upsert: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger row after re-sync, got %d", len(entries))
	}
	if entries[0].Total.Cents != 2250 {
		t.Fatalf("expected refreshed total 2250, got %d", entries[0].Total.Cents)
	}
}

func TestUpsertToleratesDanglingChild(t *testing.T) {
	src, store, w := newFixture()
	delete(src.children, "c1")

	if err := w.HandleEvent(context.Background(), amqp.NewSessionUpsert("s1", 1)); err != nil {
		t.Fatalf("dangling child must not block the sync: %v", err)
	}

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 row, got %d", len(entries))
	}
	if entries[0].ChildName != "" || entries[0].ParentName != "" {
		t.Fatalf("expected blank names, got %+v", entries[0])
	}
}

func TestUpsertSkipsVanishedSession(t *testing.T) {
	_, store, w := newFixture()

	if err := w.HandleEvent(context.Background(), amqp.NewSessionUpsert("gone", 1)); err != nil {
		t.Fatalf("vanished session must be skipped, got %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Fatal("no row may be written for a vanished session")
	}
}

func TestDeleteRemovesLedgerRow(t *testing.T) {
	_, store, w := newFixture()
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewSessionUpsert("s1", 1)); err != nil {
		t.Fatalf("handle upsert: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewSessionDelete("s1")); err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Fatal("ledger row should be removed")
	}
}

func TestUnknownKindFails(t *testing.T) {
	_, _, w := newFixture()

	ev := &amqp.SessionEvent{Kind: "session.bogus", ID: "s1"}
	if err := w.HandleEvent(context.Background(), ev); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
}
