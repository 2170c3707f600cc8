package core

import (
	"errors"
	"testing"
)

func validLaunch() Launch {
	return Launch{
		Description: "salary",
		Month:       3,
		Year:        2024,
		Amount:      Money{Cents: 10000},
		Type:        Income,
		Status:      Pending,
		UserID:      1,
	}
}

func TestLaunchValidate_OK(t *testing.T) {
	if err := validLaunch().Validate(); err != nil {
		t.Fatalf("expected valid launch, got %v", err)
	}
}

func TestLaunchValidate_Order(t *testing.T) {
	// Each case breaks one rule while keeping every earlier rule satisfied,
	// and also breaks later rules to prove the first violation wins.
	cases := []struct {
		name    string
		mutate  func(*Launch)
		message string
	}{
		{
			name: "description reported first even when everything is invalid",
			mutate: func(l *Launch) {
				*l = Launch{}
			},
			message: "provide a valid description.",
		},
		{
			name: "whitespace description",
			mutate: func(l *Launch) {
				l.Description = "   "
			},
			message: "provide a valid description.",
		},
		{
			name: "month zero",
			mutate: func(l *Launch) {
				l.Month = 0
				l.Year = 0
				l.UserID = 0
			},
			message: "provide a valid month.",
		},
		{
			name: "month thirteen",
			mutate: func(l *Launch) {
				l.Month = 13
			},
			message: "provide a valid month.",
		},
		{
			name: "year too short",
			mutate: func(l *Launch) {
				l.Year = 202
				l.UserID = 0
				l.Amount = Money{}
			},
			message: "provide a valid year.",
		},
		{
			name: "year too long",
			mutate: func(l *Launch) {
				l.Year = 20240
			},
			message: "provide a valid year.",
		},
		{
			name: "missing user",
			mutate: func(l *Launch) {
				l.UserID = 0
				l.Amount = Money{}
				l.Type = ""
			},
			message: "provide a user.",
		},
		{
			name: "zero amount",
			mutate: func(l *Launch) {
				l.Amount = Money{}
				l.Type = ""
			},
			message: "provide a valid amount.",
		},
		{
			name: "negative amount",
			mutate: func(l *Launch) {
				l.Amount = Money{Cents: -100}
			},
			message: "provide a valid amount.",
		},
		{
			name: "missing type",
			mutate: func(l *Launch) {
				l.Type = ""
			},
			message: "provide a launch type.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := validLaunch()
			tc.mutate(&l)
			err := l.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, verr.Message)
			}
		})
	}
}

func TestLaunchValidate_StatusNotChecked(t *testing.T) {
	l := validLaunch()
	l.Status = ""
	if err := l.Validate(); err != nil {
		t.Errorf("status must not be validated, got %v", err)
	}
}

func TestErrorTypesDistinguishable(t *testing.T) {
	var err error = &PreconditionError{Message: "launch id is required"}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Error("PreconditionError must not match *ValidationError")
	}
	var perr *PreconditionError
	if !errors.As(err, &perr) {
		t.Error("expected *PreconditionError to match itself")
	}
}

func TestParseLaunchType(t *testing.T) {
	if v, ok := ParseLaunchType("income"); !ok || v != Income {
		t.Errorf("expected Income, got %q ok=%v", v, ok)
	}
	if v, ok := ParseLaunchType(" EXPENSE "); !ok || v != Expense {
		t.Errorf("expected Expense, got %q ok=%v", v, ok)
	}
	if _, ok := ParseLaunchType("transfer"); ok {
		t.Error("expected unknown type to be rejected")
	}
}

func TestParseLaunchStatus(t *testing.T) {
	for _, s := range []string{"pending", "SETTLED", "Cancelled"} {
		if _, ok := ParseLaunchStatus(s); !ok {
			t.Errorf("expected %q to parse", s)
		}
	}
	if _, ok := ParseLaunchStatus("done"); ok {
		t.Error("expected unknown status to be rejected")
	}
}
