package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authkeeper/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, email, username, name, password_hash, image, role, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.Name, &user.PasswordHash,
		&user.Image, &user.Role, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt,
	)
	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, mapError(fmt.Errorf("failed to get user by email: %w", err))
	}

	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, mapError(fmt.Errorf("failed to get user by username: %w", err))
	}

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, mapError(fmt.Errorf("failed to get user by id: %w", err))
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, email, username, name, password_hash, image, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns

	savedUser, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Email, user.Username, user.Name, user.PasswordHash,
		user.Image, user.Role, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if taken := mapUniqueViolation(err); taken != nil {
			return model.User{}, taken
		}
		return model.User{}, mapError(fmt.Errorf("failed to create user: %w", err))
	}

	return savedUser, nil
}

// mapUniqueViolation turns a 23505 on the users table into the field-specific
// already-exists error. The constraint is the real transaction boundary for
// sign-up uniqueness; service-level pre-checks only shape the error message.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return model.NewErrUsernameTaken("")
	}
	return model.NewErrEmailTaken("")
}
