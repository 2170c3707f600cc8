package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finances/internal/core"
)

// LaunchStore is the persistence surface the launch service needs. Satisfied
// by *storage.SQLiteRepository.
type LaunchStore interface {
	CreateLaunch(ctx context.Context, l core.Launch) (core.Launch, error)
	UpdateLaunch(ctx context.Context, l core.Launch) (core.Launch, error)
	DeleteLaunch(ctx context.Context, id int64) error
	LaunchByID(ctx context.Context, id int64) (*core.Launch, error)
	SearchLaunches(ctx context.Context, f core.LaunchFilter) ([]core.Launch, error)
	SumAmountByUserTypeStatus(ctx context.Context, userID int64, typ core.LaunchType, status core.LaunchStatus) (core.Money, error)
	UserByID(ctx context.Context, id int64) (*core.User, error)
}

// EventPublisher pushes launch lifecycle events to the audit queue. Satisfied
// by *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishLaunchEvent(ctx context.Context, event string, launchID, userID int64, status core.LaunchStatus) error
}

type LaunchService struct {
	store  LaunchStore
	events EventPublisher
}

func NewLaunchService(store LaunchStore, events EventPublisher) *LaunchService {
	return &LaunchService{store: store, events: events}
}

// Create validates and persists a new launch. Status is forced to Pending no
// matter what the caller supplied.
func (s *LaunchService) Create(ctx context.Context, l core.Launch) (core.Launch, error) {
	if err := l.Validate(); err != nil {
		return core.Launch{}, err
	}
	if err := s.checkUserExists(ctx, l.UserID); err != nil {
		return core.Launch{}, err
	}

	l.Status = core.Pending
	if l.RegisteredAt.IsZero() {
		l.RegisteredAt = time.Now().UTC()
	}

	created, err := s.store.CreateLaunch(ctx, l)
	if err != nil {
		return core.Launch{}, fmt.Errorf("save launch: %w", err)
	}

	s.publish(ctx, "launch.created", created)
	return created, nil
}

// Update re-validates and persists an existing launch. Calling it on an
// unsaved launch is a programmer error and fails before any store call.
// Unlike Create, the caller's status is preserved.
func (s *LaunchService) Update(ctx context.Context, l core.Launch) (core.Launch, error) {
	if l.ID == 0 {
		return core.Launch{}, &core.PreconditionError{Message: "launch id is required"}
	}
	if err := l.Validate(); err != nil {
		return core.Launch{}, err
	}
	if err := s.checkUserExists(ctx, l.UserID); err != nil {
		return core.Launch{}, err
	}

	updated, err := s.store.UpdateLaunch(ctx, l)
	if err != nil {
		return core.Launch{}, err
	}

	s.publish(ctx, "launch.updated", updated)
	return updated, nil
}

// UpdateStatus sets the status and runs the full update flow, re-validating
// the launch. No transition restrictions exist; any status may follow any
// other.
func (s *LaunchService) UpdateStatus(ctx context.Context, l core.Launch, status core.LaunchStatus) (core.Launch, error) {
	l.Status = status
	return s.Update(ctx, l)
}

// Delete removes a launch. Same precondition as Update: an unsaved launch is
// a programmer error.
func (s *LaunchService) Delete(ctx context.Context, l core.Launch) error {
	if l.ID == 0 {
		return &core.PreconditionError{Message: "launch id is required"}
	}
	if err := s.store.DeleteLaunch(ctx, l.ID); err != nil {
		return err
	}

	s.publish(ctx, "launch.deleted", l)
	return nil
}

// ByID returns the launch, or nil when absent.
func (s *LaunchService) ByID(ctx context.Context, id int64) (*core.Launch, error) {
	return s.store.LaunchByID(ctx, id)
}

// Search returns launches matching the filter in store-natural order.
func (s *LaunchService) Search(ctx context.Context, f core.LaunchFilter) ([]core.Launch, error) {
	return s.store.SearchLaunches(ctx, f)
}

// BalanceByUser computes settled income minus settled expense for one user.
// Pending and cancelled launches never count; the result may be negative.
func (s *LaunchService) BalanceByUser(ctx context.Context, userID int64) (core.Money, error) {
	income, err := s.store.SumAmountByUserTypeStatus(ctx, userID, core.Income, core.Settled)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := s.store.SumAmountByUserTypeStatus(ctx, userID, core.Expense, core.Settled)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expense: %w", err)
	}
	return income.Sub(expense), nil
}

func (s *LaunchService) checkUserExists(ctx context.Context, userID int64) error {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return &core.ValidationError{Message: "user not found for the given id"}
	}
	return nil
}

// publish is best effort: the launch is already persisted, so a broker
// failure is logged and the request still succeeds.
func (s *LaunchService) publish(ctx context.Context, event string, l core.Launch) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLaunchEvent(ctx, event, l.ID, l.UserID, l.Status); err != nil {
		slog.ErrorContext(ctx, "failed to publish launch event",
			"event", event, "launch_id", l.ID, "error", err)
	}
}
