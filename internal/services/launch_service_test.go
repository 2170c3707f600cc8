package services

import (
	"context"
	"errors"
	"testing"

	"finances/internal/core"
)

// fakeLaunchStore counts persistence calls so tests can assert that
// precondition faults never reach the store.
type fakeLaunchStore struct {
	createCalls int
	updateCalls int
	deleteCalls int

	users     map[int64]core.User
	launches  map[int64]core.Launch
	sums      map[string]int64 // "TYPE/STATUS" -> cents
	lastStore core.Launch
	filter    core.LaunchFilter
	nextID    int64
}

func newFakeLaunchStore() *fakeLaunchStore {
	return &fakeLaunchStore{
		users:    map[int64]core.User{1: {ID: 1, Name: "Maria", Email: "maria@example.com"}},
		launches: make(map[int64]core.Launch),
		sums:     make(map[string]int64),
		nextID:   100,
	}
}

func (f *fakeLaunchStore) CreateLaunch(ctx context.Context, l core.Launch) (core.Launch, error) {
	f.createCalls++
	f.nextID++
	l.ID = f.nextID
	f.launches[l.ID] = l
	f.lastStore = l
	return l, nil
}

func (f *fakeLaunchStore) UpdateLaunch(ctx context.Context, l core.Launch) (core.Launch, error) {
	f.updateCalls++
	f.launches[l.ID] = l
	f.lastStore = l
	return l, nil
}

func (f *fakeLaunchStore) DeleteLaunch(ctx context.Context, id int64) error {
	f.deleteCalls++
	delete(f.launches, id)
	return nil
}

func (f *fakeLaunchStore) LaunchByID(ctx context.Context, id int64) (*core.Launch, error) {
	l, ok := f.launches[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *fakeLaunchStore) SearchLaunches(ctx context.Context, filter core.LaunchFilter) ([]core.Launch, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeLaunchStore) SumAmountByUserTypeStatus(ctx context.Context, userID int64, typ core.LaunchType, status core.LaunchStatus) (core.Money, error) {
	return core.Money{Cents: f.sums[string(typ)+"/"+string(status)]}, nil
}

func (f *fakeLaunchStore) UserByID(ctx context.Context, id int64) (*core.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type fakeEventPublisher struct {
	events []string
	err    error
}

func (f *fakeEventPublisher) PublishLaunchEvent(ctx context.Context, event string, launchID, userID int64, status core.LaunchStatus) error {
	f.events = append(f.events, event)
	return f.err
}

func validCandidate() core.Launch {
	return core.Launch{
		Description: "salary",
		Month:       3,
		Year:        2024,
		Amount:      core.Money{Cents: 10000},
		Type:        core.Income,
		UserID:      1,
	}
}

func TestCreate_ForcesPendingStatus(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	candidate := validCandidate()
	candidate.Status = core.Cancelled

	created, err := svc.Create(context.Background(), candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != core.Pending {
		t.Errorf("expected status forced to PENDING, got %s", created.Status)
	}
	if created.ID == 0 {
		t.Error("expected assigned id on created launch")
	}
	if created.RegisteredAt.IsZero() {
		t.Error("expected registration date to be stamped")
	}
}

func TestCreate_InvalidLaunchNeverPersisted(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	candidate := validCandidate()
	candidate.Description = "  "

	_, err := svc.Create(context.Background(), candidate)
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message != "provide a valid description." {
		t.Errorf("unexpected message %q", verr.Message)
	}
	if store.createCalls != 0 {
		t.Errorf("expected no persistence call, got %d", store.createCalls)
	}
}

func TestCreate_UnknownOwnerRejected(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	candidate := validCandidate()
	candidate.UserID = 42

	_, err := svc.Create(context.Background(), candidate)
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Message != "user not found for the given id" {
		t.Errorf("unexpected message %q", verr.Message)
	}
	if store.createCalls != 0 {
		t.Errorf("expected no persistence call, got %d", store.createCalls)
	}
}

func TestCreate_PublishesEvent(t *testing.T) {
	store := newFakeLaunchStore()
	events := &fakeEventPublisher{}
	svc := NewLaunchService(store, events)

	if _, err := svc.Create(context.Background(), validCandidate()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.events) != 1 || events.events[0] != "launch.created" {
		t.Errorf("expected launch.created event, got %v", events.events)
	}
}

func TestCreate_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := newFakeLaunchStore()
	events := &fakeEventPublisher{err: errors.New("broker down")}
	svc := NewLaunchService(store, events)

	if _, err := svc.Create(context.Background(), validCandidate()); err != nil {
		t.Fatalf("expected success despite publish failure, got %v", err)
	}
}

func TestUpdate_RequiresID(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	_, err := svc.Update(context.Background(), validCandidate())
	var perr *core.PreconditionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PreconditionError, got %v", err)
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		t.Error("precondition fault must not be a ValidationError")
	}
	if store.updateCalls != 0 {
		t.Errorf("expected no persistence call, got %d", store.updateCalls)
	}
}

func TestUpdate_PreservesCallerStatus(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	candidate := validCandidate()
	candidate.ID = 7
	candidate.Status = core.Cancelled

	updated, err := svc.Update(context.Background(), candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != core.Cancelled {
		t.Errorf("update must keep caller status, got %s", updated.Status)
	}
}

func TestUpdateStatus_RunsFullUpdateFlow(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	candidate := validCandidate()
	candidate.ID = 7
	candidate.Status = core.Pending

	updated, err := svc.UpdateStatus(context.Background(), candidate, core.Settled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != core.Settled {
		t.Errorf("expected SETTLED, got %s", updated.Status)
	}
	if store.updateCalls != 1 {
		t.Errorf("expected one update call, got %d", store.updateCalls)
	}

	// Re-validation still applies on the status path.
	invalid := candidate
	invalid.Month = 0
	if _, err := svc.UpdateStatus(context.Background(), invalid, core.Settled); err == nil {
		t.Error("expected validation error on status update of invalid launch")
	}
}

func TestDelete_RequiresID(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	err := svc.Delete(context.Background(), core.Launch{})
	var perr *core.PreconditionError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PreconditionError, got %v", err)
	}
	if store.deleteCalls != 0 {
		t.Errorf("expected no persistence call, got %d", store.deleteCalls)
	}
}

func TestDelete_RemovesAndPublishes(t *testing.T) {
	store := newFakeLaunchStore()
	events := &fakeEventPublisher{}
	svc := NewLaunchService(store, events)

	if err := svc.Delete(context.Background(), core.Launch{ID: 9, UserID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.deleteCalls != 1 {
		t.Errorf("expected one delete call, got %d", store.deleteCalls)
	}
	if len(events.events) != 1 || events.events[0] != "launch.deleted" {
		t.Errorf("expected launch.deleted event, got %v", events.events)
	}
}

func TestBalanceByUser(t *testing.T) {
	cases := []struct {
		name    string
		income  int64
		expense int64
		want    int64
	}{
		{name: "income minus expense", income: 10000, expense: 5000, want: 5000},
		{name: "no rows on either side", want: 0},
		{name: "only income", income: 7500, want: 7500},
		{name: "expense exceeds income", income: 1000, expense: 2500, want: -1500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeLaunchStore()
			store.sums["INCOME/SETTLED"] = tc.income
			store.sums["EXPENSE/SETTLED"] = tc.expense
			svc := NewLaunchService(store, nil)

			balance, err := svc.BalanceByUser(context.Background(), 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if balance.Cents != tc.want {
				t.Errorf("expected %d cents, got %d", tc.want, balance.Cents)
			}
		})
	}
}

func TestSearch_PassesFilterThrough(t *testing.T) {
	store := newFakeLaunchStore()
	svc := NewLaunchService(store, nil)

	filter := core.LaunchFilter{
		Description: core.Some("sal"),
		UserID:      core.Some(int64(1)),
	}
	if _, err := svc.Search(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.filter.Description.Valid || store.filter.Description.Value != "sal" {
		t.Errorf("expected description filter forwarded, got %+v", store.filter)
	}
	if store.filter.Month.Valid || store.filter.Year.Valid {
		t.Error("unset filter fields must stay unset")
	}
}
