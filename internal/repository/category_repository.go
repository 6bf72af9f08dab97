package repository

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"todo-service/internal/model"
)

type CategoryRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.Category, error)
}

type postgresCategoryRepository struct {
	db *sqlx.DB
}

func NewPostgresCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`
	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, storageError(ctx, "Failed to retrieve category.", err, slog.Int64("category_id", id))
	}
	return exists, nil
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.SelectContext(ctx, &categories, `SELECT id, name, created_at FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, storageError(ctx, "Failed to retrieve categories.", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}
