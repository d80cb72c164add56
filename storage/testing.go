package storage

import (
	"database/sql"
	"fmt"

	"github.com/loganlanou/merch-storefront/storage/db"
	_ "github.com/mattn/go-sqlite3"
)

// NewTestDB creates an in-memory SQLite database for testing. The pool is
// pinned to one connection because every :memory: connection is a separate
// database.
func NewTestDB() (*sql.DB, *db.Queries, func(), error) {
	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open test database: %w", err)
	}
	database.SetMaxOpenConns(1)

	if err := migrate(database); err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		database.Close()
	}

	return database, db.New(database), cleanup, nil
}

// NewTestStorage wraps NewTestDB in a Storage.
func NewTestStorage() (*Storage, func(), error) {
	database, queries, cleanup, err := NewTestDB()
	if err != nil {
		return nil, nil, err
	}
	return &Storage{db: database, Queries: queries}, cleanup, nil
}
