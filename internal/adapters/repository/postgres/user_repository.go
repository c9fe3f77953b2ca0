package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/auth-service/internal/core/domain"
	"github.com/vncsmyrnk/auth-service/internal/core/ports"
)

const uniqueViolation = pq.ErrorCode("23505")

const userColumns = `id, name, email, password, is_adult, is_online, refresh_token, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password, is_adult)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_online, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.IsAdult).
		Scan(&user.ID, &user.IsOnline, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, userID))
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	query := `
		UPDATE users
		SET is_online = COALESCE($2::boolean, is_online),
		    refresh_token = CASE WHEN $3::boolean THEN $4::text ELSE refresh_token END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var refreshToken sql.NullString
	if patch.RefreshToken != nil {
		refreshToken = sql.NullString{String: *patch.RefreshToken, Valid: true}
	}
	var isOnline sql.NullBool
	if patch.IsOnline != nil {
		isOnline = sql.NullBool{Bool: *patch.IsOnline, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, query, id, isOnline, patch.SetRefreshToken, refreshToken)
	return r.scanUser(row)
}

// ListWithRefreshToken returns every user holding a stored refresh token.
func (r *UserRepository) ListWithRefreshToken(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token IS NOT NULL ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ClearRefreshTokenIf(ctx context.Context, id uuid.UUID, expected string) (bool, error) {
	query := `
		UPDATE users
		SET is_online = FALSE,
		    refresh_token = NULL,
		    updated_at = NOW()
		WHERE id = $1 AND refresh_token = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to clear refresh token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var refreshToken sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdult,
		&user.IsOnline,
		&refreshToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}
	return user, nil
}
