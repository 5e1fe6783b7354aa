package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Hourly SessionType = "hourly"
	Daily  SessionType = "daily"
)

type (
	// SessionType distinguishes hourly and daily billed sessions. It is
	// informational only: the billing formula is identical for both.
	SessionType string

	Date struct {
		time.Time
	}

	// Parent is a guardian who owns zero or more children.
	Parent struct {
		ID      string
		Name    string
		Email   string
		Phone   string
		Address string
	}

	// Child belongs to exactly one parent. A child must never be written
	// with a parent reference that does not resolve.
	Child struct {
		ID          string
		Name        string
		DateOfBirth Date
		ParentID    string
	}

	AdditionalCost struct {
		Description string
		Amount      Money
	}

	// Session is one billed care session for a child. The total cost is
	// derived, never stored.
	Session struct {
		ID              string
		ChildID         string
		Date            Date
		StartTime       time.Time
		EndTime         time.Time
		Type            SessionType
		PickupCost      Money
		AdditionalCosts []AdditionalCost
	}
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmptyName          = errors.New("empty name")
	ErrNameTooLong        = errors.New("name too long (max 200 characters)")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidSessionType = errors.New("invalid session type")
	ErrEndBeforeStart     = errors.New("end time before start time")
	ErrMissingParentRef   = errors.New("missing parent reference")
	ErrMissingChildRef    = errors.New("missing child reference")
	ErrUnknownParent      = errors.New("referenced parent does not exist")
	ErrUnknownChild       = errors.New("referenced child does not exist")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t SessionType) Validate() error {
	switch t {
	case Hourly, Daily:
		return nil
	default:
		return ErrInvalidSessionType
	}
}

func (p Parent) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

func (c Child) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return ErrNameTooLong
	}
	if err := c.DateOfBirth.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ParentID) == "" {
		return ErrMissingParentRef
	}
	return nil
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.ChildID) == "" {
		return ErrMissingChildRef
	}
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return ErrInvalidDate
	}
	if s.EndTime.Before(s.StartTime) {
		return ErrEndBeforeStart
	}
	if err := s.Type.Validate(); err != nil {
		return err
	}
	if err := s.PickupCost.Validate(); err != nil {
		return err
	}
	for _, ac := range s.AdditionalCosts {
		if len(strings.TrimSpace(ac.Description)) == 0 {
			return ErrEmptyDescription
		}
		if err := ac.Amount.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TotalCost returns the pickup cost plus the sum of all additional cost
// amounts. Pure: it never mutates the session and is deterministic for
// identical inputs.
func (s Session) TotalCost() Money {
	total := s.PickupCost
	for _, ac := range s.AdditionalCosts {
		total = total.Add(ac.Amount)
	}
	return total
}
