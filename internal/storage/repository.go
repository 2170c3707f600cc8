// Package storage persists users and launches in SQLite. Column mapping is
// explicit in the queries below; the schema lives in migrations/.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finances/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// sqlite allows a single writer; one pooled connection also keeps
	// in-memory databases coherent across queries.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
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

// CreateUser inserts a user and returns it with its assigned id. The email
// existence pre-check gives a clean message; the unique index on email is the
// actual guarantee under concurrent registrations, so a constraint violation
// maps to the same ValidationError.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	err := r.execTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)", u.Email,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return &core.ValidationError{Message: "a user is already registered with this email"}
		}

		res, err := tx.ExecContext(ctx,
			"INSERT INTO users (name, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
			u.Name, u.Email, u.PasswordHash, u.CreatedAt,
		)
		if err != nil {
			if isUniqueEmailViolation(err) {
				return &core.ValidationError{Message: "a user is already registered with this email"}
			}
			return fmt.Errorf("insert user: %w", err)
		}

		u.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}

// isUniqueEmailViolation detects the sqlite unique-index error without
// depending on driver error types.
func isUniqueEmailViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email")
}

// UserByID returns the user, or nil when absent. Absence is not an error.
func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?", id))
}

// UserByEmail returns the user, or nil when absent.
func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?", email))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// EmailExists reports whether any user has the given email.
func (r *SQLiteRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)", email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

// CreateLaunch inserts a launch and returns it with its assigned id.
func (r *SQLiteRepository) CreateLaunch(ctx context.Context, l core.Launch) (core.Launch, error) {
	err := r.execTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO launches (description, month, year, amount_cents, type, status, user_id, registered_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.Description, l.Month, l.Year, l.Amount.Cents, string(l.Type), string(l.Status), l.UserID, l.RegisteredAt,
		)
		if err != nil {
			return fmt.Errorf("insert launch: %w", err)
		}
		l.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Launch{}, err
	}
	return l, nil
}

// UpdateLaunch overwrites every mutable field of an existing launch. The
// registration date is immutable after creation and deliberately not updated.
func (r *SQLiteRepository) UpdateLaunch(ctx context.Context, l core.Launch) (core.Launch, error) {
	err := r.execTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE launches
			 SET description = ?, month = ?, year = ?, amount_cents = ?, type = ?, status = ?, user_id = ?
			 WHERE id = ?`,
			l.Description, l.Month, l.Year, l.Amount.Cents, string(l.Type), string(l.Status), l.UserID, l.ID,
		)
		if err != nil {
			return fmt.Errorf("update launch: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return &core.ValidationError{Message: "launch not found"}
		}
		return nil
	})
	if err != nil {
		return core.Launch{}, err
	}
	return l, nil
}

// DeleteLaunch removes a launch by id.
func (r *SQLiteRepository) DeleteLaunch(ctx context.Context, id int64) error {
	return r.execTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM launches WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete launch: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return &core.ValidationError{Message: "launch not found"}
		}
		return nil
	})
}

// LaunchByID returns the launch, or nil when absent.
func (r *SQLiteRepository) LaunchByID(ctx context.Context, id int64) (*core.Launch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, month, year, amount_cents, type, status, user_id, registered_at
		 FROM launches WHERE id = ?`, id)

	var l core.Launch
	err := row.Scan(&l.ID, &l.Description, &l.Month, &l.Year, &l.Amount.Cents,
		&l.Type, &l.Status, &l.UserID, &l.RegisteredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan launch: %w", err)
	}
	return &l, nil
}

// SearchLaunches returns launches matching every set filter field: the
// description as a case-insensitive substring, the scalars as equality.
// Unset fields add no predicate.
func (r *SQLiteRepository) SearchLaunches(ctx context.Context, f core.LaunchFilter) ([]core.Launch, error) {
	query := `SELECT id, description, month, year, amount_cents, type, status, user_id, registered_at FROM launches`
	var (
		conds []string
		args  []any
	)
	if f.Description.Valid {
		conds = append(conds, "LOWER(description) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.Description.Value)
	}
	if f.Month.Valid {
		conds = append(conds, "month = ?")
		args = append(args, f.Month.Value)
	}
	if f.Year.Valid {
		conds = append(conds, "year = ?")
		args = append(args, f.Year.Value)
	}
	if f.UserID.Valid {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID.Value)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search launches: %w", err)
	}
	defer rows.Close()

	var launches []core.Launch
	for rows.Next() {
		var l core.Launch
		if err := rows.Scan(&l.ID, &l.Description, &l.Month, &l.Year, &l.Amount.Cents,
			&l.Type, &l.Status, &l.UserID, &l.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		launches = append(launches, l)
	}
	return launches, rows.Err()
}

// SumAmountByUserTypeStatus aggregates launch amounts for one user, type and
// status. No matching rows yields zero, not an error.
func (r *SQLiteRepository) SumAmountByUserTypeStatus(ctx context.Context, userID int64, typ core.LaunchType, status core.LaunchStatus) (core.Money, error) {
	var sum sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT SUM(amount_cents) FROM launches WHERE user_id = ? AND type = ? AND status = ?",
		userID, string(typ), string(status),
	).Scan(&sum)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum launches: %w", err)
	}
	if !sum.Valid {
		return core.Money{}, nil
	}
	return core.Money{Cents: sum.Int64}, nil
}

// LaunchCountsByStatus returns how many launches exist per status.
func (r *SQLiteRepository) LaunchCountsByStatus(ctx context.Context) (map[core.LaunchStatus]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM launches GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count launches: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.LaunchStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[core.LaunchStatus(status)] = n
	}
	return counts, rows.Err()
}
