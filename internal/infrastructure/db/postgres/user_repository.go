package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
)

const userColumns = `id, username, email, role, first_name, last_name, bio, confirmation_hash, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		id   uuid.UUID
		role string
	)
	if err := row.Scan(&id, &u.Username, &u.Email, &role, &u.FirstName, &u.LastName, &u.Bio,
		&u.ConfirmationHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ID = id.String()
	u.Role = domain.Role(role)
	return &u, nil
}

func userWriteErr(err error, op string) error {
	code, constraint := pgCode(err)
	if code == codeUniqueViolation {
		if constraint == "users_email_key" {
			return domain.ErrEmailTaken
		}
		return domain.ErrUsernameTaken
	}
	return fmt.Errorf("%s user: %w", op, err)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, username, email, role, first_name, last_name, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		uuid.New(), user.Username, user.Email, string(user.Role),
		user.FirstName, user.LastName, user.Bio, user.CreatedAt, user.UpdatedAt,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, userWriteErr(err, "insert")
	}
	return created, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, "id", uid)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *UserRepository) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, int64, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add("username ILIKE ?", containsPattern(f.Search))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	where := w.sql()
	limit := w.page(f.Limit, f.Skip())
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users`+where+` ORDER BY username`+limit, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Update rewrites the profile fields. The confirmation hash is only ever
// touched by SetConfirmationHash.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	uid, ok := parseID(user.ID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET username = $2, email = $3, role = $4, first_name = $5, last_name = $6, bio = $7, updated_at = $8
		WHERE id = $1
		RETURNING `+userColumns,
		uid, user.Username, user.Email, string(user.Role), user.FirstName, user.LastName, user.Bio, user.UpdatedAt,
	)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, userWriteErr(err, "update")
	}
	return updated, nil
}

// Delete removes the user; reviews and comments follow by ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	uid, ok := parseID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetConfirmationHash(ctx context.Context, userID, hash string) error {
	uid, ok := parseID(userID)
	if !ok {
		return domain.ErrUserNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE users SET confirmation_hash = $2 WHERE id = $1`, uid, hash)
	if err != nil {
		return fmt.Errorf("set confirmation hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
