package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateTodosTable, downCreateTodosTable)
}

func upCreateTodosTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE todos (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			priority TEXT NOT NULL DEFAULT 'medium',
			category_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			CONSTRAINT check_status CHECK (status IN ('pending', 'in_progress', 'done')),
			CONSTRAINT check_priority CHECK (priority IN ('low', 'medium', 'high'))
		);

		CREATE INDEX idx_todos_user_id ON todos (user_id);
		CREATE INDEX idx_todos_user_status ON todos (user_id, status);
		CREATE INDEX idx_todos_user_priority ON todos (user_id, priority);
		CREATE INDEX idx_todos_user_category ON todos (user_id, category_id);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateTodosTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS todos;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
