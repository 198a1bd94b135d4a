package directory

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"
)

var (
	// ErrNotFound means the identifier does not resolve to a complete user record.
	ErrNotFound = errors.New("user not found")
	// ErrNoConnection means the directory store could not be reached.
	ErrNoConnection = errors.New("directory store unavailable")
)

// User is a directory record assembled from the staff and user tables.
type User struct {
	UserID     int64  `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
}

// Repository resolves staff numbers against the directory database.
type Repository struct {
	db      *sql.DB
	dialect dialect
	timeout time.Duration
}

// NewRepository creates a repo for the given database/sql driver name
// ("mysql" or "pgx"). A nil db is allowed; lookups then fail with ErrNoConnection.
func NewRepository(db *sql.DB, driver string, timeout time.Duration) *Repository {
	return &Repository{db: db, dialect: dialectFor(driver), timeout: timeout}
}

// Lookup finds the user whose staff number equals iin.
func (r *Repository) Lookup(ctx context.Context, iin string) (User, error) {
	if r == nil || r.db == nil {
		return User{}, ErrNoConnection
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var u User
	err := r.db.QueryRowContext(ctx, r.dialect.staffQuery, iin).Scan(&u.UserID)
	if err != nil {
		return User{}, r.classify("staff lookup", err)
	}

	var first, last, middle sql.NullString
	err = r.db.QueryRowContext(ctx, r.dialect.userQuery, u.UserID).Scan(&first, &last, &middle)
	if err != nil {
		return User{}, r.classify("user lookup", err)
	}
	u.FirstName = first.String
	u.LastName = last.String
	u.MiddleName = middle.String
	return u, nil
}

func (r *Repository) classify(stage string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %v", stage, ErrNoConnection, err)
	}
	return fmt.Errorf("%s: %w", stage, err)
}
