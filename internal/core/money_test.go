package core

import "testing"

func TestCentsFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
		ok  bool
	}{
		{1, 100, true},
		{1.23, 123, true},
		{0.01, 1, true},
		{0, 0, true},
		{2.5, 250, true},
		{12.345, 1235, true}, // half-up rounding
		{10.004, 1000, true},
		{-1, 0, false},
		{-0.01, 0, false},
	}
	for _, tc := range cases {
		got, err := CentsFromFloat(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%v expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%v expected error", tc.in)
			}
		}
	}
}

func TestMoneyAdd(t *testing.T) {
	got := Money{Cents: 1000}.Add(Money{Cents: 250})
	if got.Cents != 1250 {
		t.Fatalf("expected 1250 cents, got %d", got.Cents)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero cost should be valid: %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatal("negative cost should be invalid")
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1250, "12.50"},
		{5, "0.05"},
		{0, "0.00"},
		{-123, "-1.23"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.want {
			t.Fatalf("%d cents: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestMoneyFloat64(t *testing.T) {
	if got := (Money{Cents: 1250}).Float64(); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
}
