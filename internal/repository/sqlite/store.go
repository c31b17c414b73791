// Package sqlite implements the repository interfaces on the dashboard's
// local SQLite database.
package sqlite

import (
	"database/sql"

	"github.com/creamcroissant/ovenboard/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db              *sql.DB
	settings        repository.SettingRepository
	orderStatusLogs repository.OrderStatusLogRepository
}

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:              db,
		settings:        &settingRepo{db: db},
		orderStatusLogs: &orderStatusLogRepo{db: db},
	}
}

func (s *Store) Settings() repository.SettingRepository { return s.settings }

func (s *Store) OrderStatusLogs() repository.OrderStatusLogRepository { return s.orderStatusLogs }
