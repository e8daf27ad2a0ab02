package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/models"
	"github.com/cleansweep/litterwatch/internal/sqlite"
	sqlite3 "github.com/mattn/go-sqlite3"
)

type UserRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewUserRepository(dbs *sqlite.Database, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		dbs:    dbs,
		logger: logger.With("source", "UserRepository"),
	}
}

// Create inserts a new user and returns its id. A taken username yields
// ErrDuplicateUsername.
func (r *UserRepository) Create(
	ctx context.Context,
	username string,
	email string,
	passwordHash string,
	role models.Role,
) (int64, error) {
	stmt := `INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, username, email, passwordHash, role)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, errors.Wrap(ErrDuplicateUsername, "insert user", slog.String("username", username))
		}
		return 0, errors.Wrap(err, "insert user")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "last insert id")
	}
	return id, nil
}

// GetByUsername resolves a username to a user record or ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	stmt := `SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &user, stmt, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "user not found", slog.String("username", username))
		}
		return nil, errors.Wrap(err, "read user")
	}
	return &user, nil
}

// GetByID reads a user by primary key or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	stmt := `SELECT id, username, email, password_hash, role, created_at FROM users WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &user, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "user not found", slog.Int64("id", id))
		}
		return nil, errors.Wrap(err, "read user")
	}
	return &user, nil
}

// SetRole updates a user's role. The role column is not exposed over the API,
// this is used by the admin CLI.
func (r *UserRepository) SetRole(ctx context.Context, username string, role models.Role) error {
	stmt := `UPDATE users SET role = ? WHERE username = ?`
	res, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, role, username)
	if err != nil {
		return errors.Wrap(err, "update role")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "user not found", slog.String("username", username))
	}
	return nil
}
