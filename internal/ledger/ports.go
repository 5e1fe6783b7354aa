// Package ledger defines the outbound billing-ledger ports. The worker
// mirrors session billing rows to whichever backend is configured.
package ledger

import (
	"context"

	"minder/internal/core"
)

// Entry is one billing row in the ledger.
type Entry struct {
	SessionID  string
	Date       core.Date
	ChildName  string
	ParentName string
	Type       core.SessionType
	Total      core.Money
}

// Ports for outbound adapters.
type (
	// Writer upserts a billing row keyed by session id.
	Writer interface {
		Append(ctx context.Context, e Entry) (rowRef string, err error)
	}

	// Remover deletes the billing row for a session.
	Remover interface {
		Remove(ctx context.Context, sessionID string) error
	}
)
