// Package services orchestrates domain operations across storage and the
// event publisher.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"finances/internal/core"
)

// UserStore is the persistence surface the user service needs. Satisfied by
// *storage.SQLiteRepository.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	UserByID(ctx context.Context, id int64) (*core.User, error)
	UserByEmail(ctx context.Context, email string) (*core.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type UserService struct {
	store      UserStore
	bcryptCost int
}

func NewUserService(store UserStore, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, bcryptCost: bcryptCost}
}

// Register creates a user after checking the email is free. The check here is
// advisory; the unique index in storage is what holds under concurrent
// registrations. Passwords are stored as bcrypt hashes, never as given.
func (s *UserService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return core.User{}, &core.ValidationError{Message: "a user is already registered with this email"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, core.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "user registered", "id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate returns the user matching email and password. Both failure
// modes carry their own message so clients can tell them apart.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return core.User{}, &core.AuthError{Message: "user not found for the given email"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return core.User{}, &core.AuthError{Message: "invalid password"}
	}

	return *user, nil
}

// ByID returns the user, or nil when absent.
func (s *UserService) ByID(ctx context.Context, id int64) (*core.User, error) {
	return s.store.UserByID(ctx, id)
}
