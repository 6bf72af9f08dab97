package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"todo-service/internal/apperr"
	"todo-service/internal/model"
)

const todoColumns = `id, user_id, title, description, status, priority, category_id, created_at, updated_at`

const (
	MsgTodoNotFound     = "Todo not found."
	MsgCategoryNotFound = "Category not found."
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) (*model.Todo, error)
	FindByID(ctx context.Context, id int64) (*model.Todo, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Todo, error)
	ListByOwnerAndStatus(ctx context.Context, ownerID int64, status model.Status) ([]model.Todo, error)
	ListByOwnerAndPriority(ctx context.Context, ownerID int64, priority model.Priority) ([]model.Todo, error)
	ListByOwnerAndCategory(ctx context.Context, ownerID int64, categoryID int64) ([]model.Todo, error)
	SearchByOwnerAndKeyword(ctx context.Context, ownerID int64, keyword string) ([]model.Todo, error)
	Update(ctx context.Context, id int64, update model.TodoUpdate) (*model.Todo, error)
	Delete(ctx context.Context, id int64) error
	// WithTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise; fn's
	// error is returned as is.
	WithTx(ctx context.Context, fn func(repo TodoRepository) error) error
}

type postgresTodoRepository struct {
	db   *sqlx.DB
	q    queryer
	inTx bool
}

func NewPostgresTodoRepository(db *sqlx.DB) TodoRepository {
	return &postgresTodoRepository{db: db, q: db}
}

func (r *postgresTodoRepository) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	query := `
		INSERT INTO todos (user_id, title, description, status, priority, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + todoColumns

	var created model.Todo
	err := r.q.QueryRowxContext(ctx, query,
		todo.UserID, todo.Title, todo.Description, string(todo.Status), string(todo.Priority), todo.CategoryID,
	).StructScan(&created)

	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, apperr.InvalidArgument(MsgCategoryNotFound)
		}
		return nil, storageError(ctx, "Failed to create todo.", err, slog.Int64("user_id", todo.UserID))
	}

	return &created, nil
}

// FindByID locks the row when called inside WithTx so the caller's ownership
// check and the following write see the same row.
func (r *postgresTodoRepository) FindByID(ctx context.Context, id int64) (*model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1`
	if r.inTx {
		query += ` FOR UPDATE`
	}

	var todo model.Todo
	err := r.q.GetContext(ctx, &todo, query, id)

	if err != nil {
		if isNoRows(err) {
			slog.WarnContext(ctx, "Todo not found", slog.Int64("todo_id", id))
			return nil, apperr.NotFound(MsgTodoNotFound)
		}
		return nil, storageError(ctx, "Failed to retrieve todo.", err, slog.Int64("todo_id", id))
	}

	return &todo, nil
}

func (r *postgresTodoRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ORDER BY id ASC`
	return r.list(ctx, "Failed to retrieve todos.", query, ownerID)
}

func (r *postgresTodoRepository) ListByOwnerAndStatus(ctx context.Context, ownerID int64, status model.Status) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 AND status = $2 ORDER BY id ASC`
	return r.list(ctx, "Failed to retrieve todos by status.", query, ownerID, string(status))
}

func (r *postgresTodoRepository) ListByOwnerAndPriority(ctx context.Context, ownerID int64, priority model.Priority) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 AND priority = $2 ORDER BY id ASC`
	return r.list(ctx, "Failed to retrieve todos by priority.", query, ownerID, string(priority))
}

func (r *postgresTodoRepository) ListByOwnerAndCategory(ctx context.Context, ownerID int64, categoryID int64) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 AND category_id = $2 ORDER BY id ASC`
	return r.list(ctx, "Failed to retrieve todos by category.", query, ownerID, categoryID)
}

// SearchByOwnerAndKeyword matches keyword case-insensitively as a literal
// substring of the title or the description.
func (r *postgresTodoRepository) SearchByOwnerAndKeyword(ctx context.Context, ownerID int64, keyword string) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 AND (title ILIKE $2 OR description ILIKE $2) ORDER BY id ASC`
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	return r.list(ctx, "Failed to search todos.", query, ownerID, pattern)
}

func (r *postgresTodoRepository) list(ctx context.Context, failMsg, query string, args ...interface{}) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.q.SelectContext(ctx, &todos, query, args...)
	if err != nil {
		return nil, storageError(ctx, failMsg, err)
	}

	if todos == nil {
		todos = []model.Todo{}
	}

	return todos, nil
}

func (r *postgresTodoRepository) Update(ctx context.Context, id int64, update model.TodoUpdate) (*model.Todo, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if update.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *update.Title)
		argID++
	}
	if update.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *update.Description)
		argID++
	}
	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argID))
		args = append(args, string(*update.Status))
		argID++
	}
	if update.Priority != nil {
		setClauses = append(setClauses, fmt.Sprintf("priority = $%d", argID))
		args = append(args, string(*update.Priority))
		argID++
	}
	if update.CategoryID != nil {
		setClauses = append(setClauses, fmt.Sprintf("category_id = $%d", argID))
		args = append(args, *update.CategoryID)
		argID++
	}
	setClauses = append(setClauses, "updated_at = now()")

	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = $%d RETURNING %s", strings.Join(setClauses, ", "), argID, todoColumns)
	args = append(args, id)

	var updated model.Todo
	err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&updated)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound(MsgTodoNotFound)
		}
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, apperr.InvalidArgument(MsgCategoryNotFound)
		}
		return nil, storageError(ctx, "Failed to update todo.", err, slog.Int64("todo_id", id))
	}

	return &updated, nil
}

func (r *postgresTodoRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return storageError(ctx, "Failed to delete todo.", err, slog.Int64("todo_id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageError(ctx, "Failed to delete todo.", err, slog.Int64("todo_id", id))
	}
	if affected == 0 {
		return apperr.NotFound(MsgTodoNotFound)
	}

	return nil
}

func (r *postgresTodoRepository) WithTx(ctx context.Context, fn func(repo TodoRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageError(ctx, "Failed to start transaction.", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&postgresTodoRepository{db: r.db, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction", slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError(ctx, "Failed to commit transaction.", err)
	}

	return nil
}
