package migrations

import (
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateCategoriesTable, downCreateCategoriesTable)
}

func upCreateCategoriesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		);

		-- Seed data categories
		INSERT INTO categories (name) VALUES
		('Work'),
		('Personal'),
		('Shopping'),
		('Health');
	`)
	return err
}

func downCreateCategoriesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS categories;`)
	return err
}
