// Package core holds the childminding domain model: parents, children,
// billed sessions and the money arithmetic behind session totals.
//
// Money is fixed-point int64 cents. The API accepts and emits plain decimal
// numbers, but all internal arithmetic stays in cents to avoid floating-point
// drift when summing itemized costs.
package core

import (
	"fmt"
	"math"
)

type Money struct {
	Cents int64
}

// CentsFromFloat converts a decimal amount (e.g. a JSON number) to cents
// with half-up rounding on fractions of a cent.
//
// Examples:
//
//	CentsFromFloat(12.34)  -> 1234
//	CentsFromFloat(12.345) -> 1235 (rounds up)
//	CentsFromFloat(2.5)    -> 250
func CentsFromFloat(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	const maxSafe = float64(1<<53) / 100
	if amount > maxSafe {
		return 0, ErrInvalidAmount
	}
	return int64(math.Round(amount * 100)), nil
}

// MoneyFromFloat is CentsFromFloat wrapped in a Money value.
func MoneyFromFloat(amount float64) (Money, error) {
	cents, err := CentsFromFloat(amount)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// Float64 returns the decimal value for display and JSON encoding.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Validate rejects negative amounts. Zero is a legal cost: a session with no
// pickup charge is still a valid session.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// String formats the amount with two decimal places, e.g. "12.50".
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}
