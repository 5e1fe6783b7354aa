// Package services orchestrates record operations: input validation,
// referential integrity at write boundaries, view composition for reads, and
// best-effort change events for the ledger worker.
package services

import (
	"context"

	"minder/internal/amqp"
	"minder/internal/core"
)

// Store is the persistence boundary. *storage.SQLiteRepository satisfies it;
// tests use an in-memory fake. It also covers views.Resolver, so services
// compose read views straight off the store.
type Store interface {
	CreateParent(ctx context.Context, p core.Parent) (core.Parent, error)
	GetParent(ctx context.Context, id string) (core.Parent, error)
	ListParents(ctx context.Context) ([]core.Parent, error)
	UpdateParent(ctx context.Context, p core.Parent) error
	DeleteParent(ctx context.Context, id string) (childrenRemoved int64, err error)

	CreateChild(ctx context.Context, c core.Child) (core.Child, error)
	GetChild(ctx context.Context, id string) (core.Child, error)
	ListChildren(ctx context.Context) ([]core.Child, error)
	UpdateChild(ctx context.Context, c core.Child) error
	DeleteChild(ctx context.Context, id string) error

	CreateSession(ctx context.Context, s core.Session) (core.Session, error)
	GetSession(ctx context.Context, id string) (core.Session, error)
	ListSessions(ctx context.Context) ([]core.Session, error)
	UpdateSession(ctx context.Context, s core.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// EventPublisher emits session change events. May be nil when AMQP is not
// configured; a publish failure never fails the originating request.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, ev *amqp.SessionEvent) error
}
