// Package storage persists parents, children and sessions in SQLite.
//
// The repository is the single source of truth: every record carries an
// opaque UUID assigned at creation, collections list in insertion order, and
// the parent cascade delete runs inside one transaction.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"minder/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- parents ---

func (r *SQLiteRepository) CreateParent(ctx context.Context, p core.Parent) (core.Parent, error) {
	p.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO parents (id, name, email, phone, address) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Email, p.Phone, p.Address)
	if err != nil {
		return core.Parent{}, fmt.Errorf("create parent: %w", err)
	}

	slog.InfoContext(ctx, "Parent saved", "id", p.ID, "name", p.Name)
	return p, nil
}

func (r *SQLiteRepository) GetParent(ctx context.Context, id string) (core.Parent, error) {
	var p core.Parent
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, address FROM parents WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Parent{}, fmt.Errorf("parent %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Parent{}, fmt.Errorf("get parent: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListParents(ctx context.Context) ([]core.Parent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, address FROM parents ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list parents: %w", err)
	}
	defer rows.Close()

	var parents []core.Parent
	for rows.Next() {
		var p core.Parent
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address); err != nil {
			return nil, fmt.Errorf("scan parent: %w", err)
		}
		parents = append(parents, p)
	}
	return parents, rows.Err()
}

func (r *SQLiteRepository) UpdateParent(ctx context.Context, p core.Parent) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parents SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?`,
		p.Name, p.Email, p.Phone, p.Address, p.ID)
	if err != nil {
		return fmt.Errorf("update parent: %w", err)
	}
	return requireAffected(res, "parent", p.ID)
}

// DeleteParent removes a parent and every child referencing it, in a single
// transaction. Sessions of removed children are left in place. Returns the
// number of children removed by the cascade.
func (r *SQLiteRepository) DeleteParent(ctx context.Context, id string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cascade delete: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM parents WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check parent: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("parent %s: %w", id, core.ErrNotFound)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM children WHERE parent_id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("cascade delete children: %w", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM parents WHERE id = ?`, id); err != nil {
		return 0, fmt.Errorf("delete parent: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cascade delete: %w", err)
	}

	slog.InfoContext(ctx, "Parent deleted", "id", id, "children_removed", removed)
	return removed, nil
}

// --- children ---

func (r *SQLiteRepository) CreateChild(ctx context.Context, c core.Child) (core.Child, error) {
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO children (id, name, date_of_birth, parent_id) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.DateOfBirth.Format(dateLayout), c.ParentID)
	if err != nil {
		return core.Child{}, fmt.Errorf("create child: %w", err)
	}

	slog.InfoContext(ctx, "Child saved", "id", c.ID, "name", c.Name, "parent_id", c.ParentID)
	return c, nil
}

func (r *SQLiteRepository) GetChild(ctx context.Context, id string) (core.Child, error) {
	var (
		c   core.Child
		dob string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, date_of_birth, parent_id FROM children WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &dob, &c.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Child{}, fmt.Errorf("child %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Child{}, fmt.Errorf("get child: %w", err)
	}
	if c.DateOfBirth, err = parseDate(dob); err != nil {
		return core.Child{}, fmt.Errorf("child %s date of birth: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListChildren(ctx context.Context) ([]core.Child, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, date_of_birth, parent_id FROM children ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var children []core.Child
	for rows.Next() {
		var (
			c   core.Child
			dob string
		)
		if err := rows.Scan(&c.ID, &c.Name, &dob, &c.ParentID); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		if c.DateOfBirth, err = parseDate(dob); err != nil {
			return nil, fmt.Errorf("child %s date of birth: %w", c.ID, err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

func (r *SQLiteRepository) UpdateChild(ctx context.Context, c core.Child) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE children SET name = ?, date_of_birth = ?, parent_id = ? WHERE id = ?`,
		c.Name, c.DateOfBirth.Format(dateLayout), c.ParentID, c.ID)
	if err != nil {
		return fmt.Errorf("update child: %w", err)
	}
	return requireAffected(res, "child", c.ID)
}

func (r *SQLiteRepository) DeleteChild(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return requireAffected(res, "child", id)
}

// --- sessions ---

func (r *SQLiteRepository) CreateSession(ctx context.Context, s core.Session) (core.Session, error) {
	s.ID = uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Session{}, fmt.Errorf("begin create session: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, child_id, date, start_time, end_time, type, pickup_cost_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ChildID, s.Date.Format(dateLayout),
		s.StartTime.UTC().Format(time.RFC3339), s.EndTime.UTC().Format(time.RFC3339),
		string(s.Type), s.PickupCost.Cents)
	if err != nil {
		return core.Session{}, fmt.Errorf("create session: %w", err)
	}

	if err := insertAdditionalCosts(ctx, tx, s.ID, s.AdditionalCosts); err != nil {
		return core.Session{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Session{}, fmt.Errorf("commit create session: %w", err)
	}

	slog.InfoContext(ctx, "Session saved",
		"id", s.ID,
		"child_id", s.ChildID,
		"type", s.Type,
		"total_cents", s.TotalCost().Cents)
	return s, nil
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (core.Session, error) {
	var (
		s          core.Session
		date       string
		start, end string
		sessType   string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, child_id, date, start_time, end_time, type, pickup_cost_cents
		 FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.ChildID, &date, &start, &end, &sessType, &s.PickupCost.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Session{}, fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("get session: %w", err)
	}
	if err := fillSessionTimes(&s, date, start, end, sessType); err != nil {
		return core.Session{}, fmt.Errorf("session %s: %w", id, err)
	}
	if s.AdditionalCosts, err = r.additionalCosts(ctx, id); err != nil {
		return core.Session{}, err
	}
	return s, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]core.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, child_id, date, start_time, end_time, type, pickup_cost_cents
		 FROM sessions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []core.Session
	for rows.Next() {
		var (
			s          core.Session
			date       string
			start, end string
			sessType   string
		)
		if err := rows.Scan(&s.ID, &s.ChildID, &date, &start, &end, &sessType, &s.PickupCost.Cents); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := fillSessionTimes(&s, date, start, end, sessType); err != nil {
			return nil, fmt.Errorf("session %s: %w", s.ID, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].AdditionalCosts, err = r.additionalCosts(ctx, sessions[i].ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *SQLiteRepository) UpdateSession(ctx context.Context, s core.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update session: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions SET child_id = ?, date = ?, start_time = ?, end_time = ?, type = ?, pickup_cost_cents = ?
		 WHERE id = ?`,
		s.ChildID, s.Date.Format(dateLayout),
		s.StartTime.UTC().Format(time.RFC3339), s.EndTime.UTC().Format(time.RFC3339),
		string(s.Type), s.PickupCost.Cents, s.ID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if err := requireAffected(res, "session", s.ID); err != nil {
		return err
	}

	// Itemized costs are replaced wholesale on update.
	if _, err := tx.ExecContext(ctx, `DELETE FROM additional_costs WHERE session_id = ?`, s.ID); err != nil {
		return fmt.Errorf("clear additional costs: %w", err)
	}
	if err := insertAdditionalCosts(ctx, tx, s.ID, s.AdditionalCosts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete session: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM additional_costs WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete additional costs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := requireAffected(res, "session", id); err != nil {
		return err
	}

	return tx.Commit()
}

// --- helpers ---

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAdditionalCosts(ctx context.Context, tx execer, sessionID string, costs []core.AdditionalCost) error {
	for i, ac := range costs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO additional_costs (session_id, position, description, amount_cents) VALUES (?, ?, ?, ?)`,
			sessionID, i, ac.Description, ac.Amount.Cents)
		if err != nil {
			return fmt.Errorf("insert additional cost %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) additionalCosts(ctx context.Context, sessionID string) ([]core.AdditionalCost, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT description, amount_cents FROM additional_costs WHERE session_id = ? ORDER BY position`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list additional costs: %w", err)
	}
	defer rows.Close()

	var costs []core.AdditionalCost
	for rows.Next() {
		var ac core.AdditionalCost
		if err := rows.Scan(&ac.Description, &ac.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan additional cost: %w", err)
		}
		costs = append(costs, ac)
	}
	return costs, rows.Err()
}

func fillSessionTimes(s *core.Session, date, start, end, sessType string) error {
	var err error
	if s.Date, err = parseDate(date); err != nil {
		return err
	}
	if s.StartTime, err = time.Parse(time.RFC3339, start); err != nil {
		return fmt.Errorf("parse start time: %w", err)
	}
	if s.EndTime, err = time.Parse(time.RFC3339, end); err != nil {
		return fmt.Errorf("parse end time: %w", err)
	}
	s.Type = core.SessionType(sessType)
	return nil
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date: %w", err)
	}
	return core.Date{Time: t}, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}
