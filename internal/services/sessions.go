package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"minder/internal/amqp"
	"minder/internal/core"
	"minder/internal/views"
)

// SessionService implements the session operation set. Writes resolve the
// child reference first and publish a change event afterwards so the ledger
// worker can mirror billing rows.
type SessionService struct {
	store     Store
	publisher EventPublisher
}

func NewSessionService(store Store, publisher EventPublisher) *SessionService {
	return &SessionService{store: store, publisher: publisher}
}

// SessionPatch carries the fields of an update request; nil fields keep the
// stored value. AdditionalCosts, when present, replaces the whole list.
type SessionPatch struct {
	ChildID         *string
	Date            *core.Date
	StartTime       *time.Time
	EndTime         *time.Time
	Type            *core.SessionType
	PickupCost      *core.Money
	AdditionalCosts *[]core.AdditionalCost
}

func (s *SessionService) List(ctx context.Context) ([]views.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return views.ComposeSessions(ctx, s.store, sessions)
}

func (s *SessionService) Create(ctx context.Context, sess core.Session) (views.Session, error) {
	if err := sess.Validate(); err != nil {
		return views.Session{}, err
	}
	if err := s.resolveChild(ctx, sess.ChildID); err != nil {
		return views.Session{}, err
	}

	created, err := s.store.CreateSession(ctx, sess)
	if err != nil {
		return views.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.publish(ctx, amqp.NewSessionUpsert(created.ID, 1))
	return views.ComposeSession(ctx, s.store, created)
}

func (s *SessionService) Update(ctx context.Context, id string, patch SessionPatch) (views.Session, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return views.Session{}, err
	}

	if patch.ChildID != nil {
		sess.ChildID = *patch.ChildID
	}
	if patch.Date != nil {
		sess.Date = *patch.Date
	}
	if patch.StartTime != nil {
		sess.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		sess.EndTime = *patch.EndTime
	}
	if patch.Type != nil {
		sess.Type = *patch.Type
	}
	if patch.PickupCost != nil {
		sess.PickupCost = *patch.PickupCost
	}
	if patch.AdditionalCosts != nil {
		sess.AdditionalCosts = *patch.AdditionalCosts
	}

	if err := sess.Validate(); err != nil {
		return views.Session{}, err
	}
	if err := s.resolveChild(ctx, sess.ChildID); err != nil {
		return views.Session{}, err
	}

	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return views.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.publish(ctx, amqp.NewSessionUpsert(sess.ID, 2))
	return views.ComposeSession(ctx, s.store, sess)
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewSessionDelete(id))
	return nil
}

func (s *SessionService) resolveChild(ctx context.Context, childID string) error {
	_, err := s.store.GetChild(ctx, childID)
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("child %s: %w", childID, core.ErrUnknownChild)
	}
	if err != nil {
		return fmt.Errorf("resolve child: %w", err)
	}
	return nil
}

// publish is best-effort: the session is already persisted, so a broker
// failure is logged and the request succeeds anyway.
func (s *SessionService) publish(ctx context.Context, ev *amqp.SessionEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping", "kind", ev.Kind, "id", ev.ID)
		return
	}
	if err := s.publisher.PublishSessionEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish session event",
			"kind", ev.Kind, "id", ev.ID, "error", err)
	}
}
