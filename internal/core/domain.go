package core

import (
	"strconv"
	"strings"
	"time"
)

const (
	Income  LaunchType = "INCOME"
	Expense LaunchType = "EXPENSE"

	Pending   LaunchStatus = "PENDING"
	Settled   LaunchStatus = "SETTLED"
	Cancelled LaunchStatus = "CANCELLED"
)

type (
	LaunchType   string
	LaunchStatus string

	// User owns launches. PasswordHash is never part of any outward
	// representation.
	User struct {
		ID           int64
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Launch is a single financial entry (income or expense) owned by a user.
	Launch struct {
		ID           int64
		Description  string
		Month        int
		Year         int
		Amount       Money
		Type         LaunchType
		Status       LaunchStatus
		UserID       int64
		RegisteredAt time.Time
	}
)

// ValidationError is a recoverable business-rule violation. Its message is
// user-facing and returned verbatim to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthError reports an authentication failure (unknown email or wrong
// password). Like ValidationError its message is user-facing.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// PreconditionError is a programmer error, such as updating a launch that was
// never saved. It is deliberately a distinct type from ValidationError so
// callers cannot confuse the two.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string { return e.Message }

// Validate checks launch fields in a fixed order and reports the first
// violation. Status is intentionally not checked; creation forces it to
// Pending and updates accept whatever the caller set.
func (l Launch) Validate() error {
	if strings.TrimSpace(l.Description) == "" {
		return &ValidationError{Message: "provide a valid description."}
	}
	if l.Month < 1 || l.Month > 12 {
		return &ValidationError{Message: "provide a valid month."}
	}
	if len(strconv.Itoa(l.Year)) != 4 {
		return &ValidationError{Message: "provide a valid year."}
	}
	if l.UserID == 0 {
		return &ValidationError{Message: "provide a user."}
	}
	if l.Amount.Cents <= 0 {
		return &ValidationError{Message: "provide a valid amount."}
	}
	if l.Type == "" {
		return &ValidationError{Message: "provide a launch type."}
	}
	return nil
}

// ParseLaunchType converts a wire value into a LaunchType.
func ParseLaunchType(s string) (LaunchType, bool) {
	switch LaunchType(strings.ToUpper(strings.TrimSpace(s))) {
	case Income:
		return Income, true
	case Expense:
		return Expense, true
	}
	return "", false
}

// ParseLaunchStatus converts a wire value into a LaunchStatus.
func ParseLaunchStatus(s string) (LaunchStatus, bool) {
	switch LaunchStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case Pending:
		return Pending, true
	case Settled:
		return Settled, true
	case Cancelled:
		return Cancelled, true
	}
	return "", false
}

// Opt is a tagged optional value for filter fields, so "unset" and "zero" stay
// distinguishable without resorting to pointers.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some wraps v in a set Opt.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// LaunchFilter selects launches by any subset of its fields. Unset fields
// impose no constraint; Description matches as a case-insensitive substring,
// the scalar fields as exact equality.
type LaunchFilter struct {
	Description Opt[string]
	Month       Opt[int]
	Year        Opt[int]
	UserID      Opt[int64]
}
