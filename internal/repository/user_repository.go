package repository

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"todo-service/internal/apperr"
	"todo-service/internal/model"
)

const userColumns = `id, email, password_hash, name, role, auth_token_hash, created_at, updated_at`

const (
	MsgUserNotFound = "User not found."
	MsgEmailTaken   = "Email already exists"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.User, error)
	// SetTokenHash replaces the user's session token; nil ends the session.
	SetTokenHash(ctx context.Context, id int64, tokenHash *string) error
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users (email, password_hash, name, role) VALUES ($1, $2, $3, $4) RETURNING id`
	var newID int64
	err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.Name, string(user.Role)).Scan(&newID)

	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return 0, apperr.Conflict(MsgEmailTaken)
		}
		return 0, storageError(ctx, "Failed to create user.", err)
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.findOne(ctx, query, email)
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresUserRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_token_hash = $1`
	return r.findOne(ctx, query, tokenHash)
}

func (r *postgresUserRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, query, arg)

	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, storageError(ctx, "Failed to retrieve user.", err)
	}

	user.Role = model.ParseRole(string(user.Role))

	return &user, nil
}

func (r *postgresUserRepository) SetTokenHash(ctx context.Context, id int64, tokenHash *string) error {
	query := `UPDATE users SET auth_token_hash = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, tokenHash, id)
	if err != nil {
		return storageError(ctx, "Failed to update session.", err, slog.Int64("user_id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageError(ctx, "Failed to update session.", err, slog.Int64("user_id", id))
	}
	if affected == 0 {
		return apperr.NotFound(MsgUserNotFound)
	}

	return nil
}
