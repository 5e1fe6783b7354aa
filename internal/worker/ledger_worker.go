// Package worker mirrors session billing data into the configured ledger
// backend, driven by session events from the broker.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"minder/internal/amqp"
	"minder/internal/core"
	"minder/internal/ledger"
)

// Source is the subset of the storage layer the worker reads from.
type Source interface {
	GetSession(ctx context.Context, id string) (core.Session, error)
	GetChild(ctx context.Context, id string) (core.Child, error)
	GetParent(ctx context.Context, id string) (core.Parent, error)
}

// LedgerWorker keeps the billing ledger in sync with stored sessions.
type LedgerWorker struct {
	source  Source
	writer  ledger.Writer
	remover ledger.Remover
}

func NewLedgerWorker(source Source, writer ledger.Writer, remover ledger.Remover) *LedgerWorker {
	return &LedgerWorker{
		source:  source,
		writer:  writer,
		remover: remover,
	}
}

// HandleEvent processes one session event. Errors are returned so the
// consumer can nack and requeue the delivery.
func (w *LedgerWorker) HandleEvent(ctx context.Context, ev *amqp.SessionEvent) error {
	switch ev.Kind {
	case amqp.KindSessionUpsert:
		return w.upsert(ctx, ev)
	case amqp.KindSessionDelete:
		return w.remove(ctx, ev)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (w *LedgerWorker) upsert(ctx context.Context, ev *amqp.SessionEvent) error {
	slog.InfoContext(ctx, "Processing session upsert",
		"id", ev.ID,
		"version", ev.Version)

	session, err := w.source.GetSession(ctx, ev.ID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// The session was deleted before we got to the event. The
			// delete event will clean up the row, so drop this one.
			slog.WarnContext(ctx, "Session gone before sync, skipping", "id", ev.ID)
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}

	entry := ledger.Entry{
		SessionID: session.ID,
		Date:      session.Date,
		Type:      session.Type,
		Total:     session.TotalCost(),
	}

	// Names are best-effort: a dangling child or parent reference leaves
	// the column blank rather than blocking the sync.
	child, err := w.source.GetChild(ctx, session.ChildID)
	switch {
	case err == nil:
		entry.ChildName = child.Name
		parent, perr := w.source.GetParent(ctx, child.ParentID)
		switch {
		case perr == nil:
			entry.ParentName = parent.Name
		case errors.Is(perr, core.ErrNotFound):
			slog.WarnContext(ctx, "Parent missing for ledger row", "session_id", session.ID, "parent_id", child.ParentID)
		default:
			return fmt.Errorf("get parent: %w", perr)
		}
	case errors.Is(err, core.ErrNotFound):
		slog.WarnContext(ctx, "Child missing for ledger row", "session_id", session.ID, "child_id", session.ChildID)
	default:
		return fmt.Errorf("get child: %w", err)
	}

	ref, err := w.writer.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}

	slog.InfoContext(ctx, "Session synced to ledger",
		"id", session.ID,
		"total_cents", entry.Total.Cents,
		"ref", ref)
	return nil
}

func (w *LedgerWorker) remove(ctx context.Context, ev *amqp.SessionEvent) error {
	slog.InfoContext(ctx, "Processing session delete", "id", ev.ID)

	if err := w.remover.Remove(ctx, ev.ID); err != nil {
		return fmt.Errorf("remove ledger row: %w", err)
	}

	slog.InfoContext(ctx, "Session removed from ledger", "id", ev.ID)
	return nil
}
