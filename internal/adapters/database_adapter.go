package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fleetboss/fleet-service/internal/database"
	"github.com/fleetboss/fleet-service/internal/storage"
)

// DatabaseAdapter адаптирует database.DB для storage.DatabaseInterface
type DatabaseAdapter struct {
	db *database.DB
}

// NewDatabaseAdapter создает новый адаптер для базы данных
func NewDatabaseAdapter(db *database.DB) storage.DatabaseInterface {
	return &DatabaseAdapter{db: db}
}

// QueryRow выполняет запрос, ожидающий одну строку результата
func (a *DatabaseAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) storage.Row {
	return a.db.Pool().QueryRow(ctx, query, args...)
}

// Query выполняет запрос, возвращающий множество строк
func (a *DatabaseAdapter) Query(ctx context.Context, query string, args ...interface{}) (storage.Rows, error) {
	rows, err := a.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &RowsAdapter{rows: rows}, nil
}

// Exec выполняет запрос без возврата строк и возвращает число затронутых строк
func (a *DatabaseAdapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	tag, err := a.db.Pool().Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Health проверяет состояние базы данных
func (a *DatabaseAdapter) Health(ctx context.Context) error {
	return a.db.Health(ctx)
}

// RowsAdapter адаптирует pgx.Rows для storage.Rows
type RowsAdapter struct {
	rows pgx.Rows
}

func (r *RowsAdapter) Next() bool {
	return r.rows.Next()
}

func (r *RowsAdapter) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

func (r *RowsAdapter) Err() error {
	return r.rows.Err()
}

func (r *RowsAdapter) Close() {
	r.rows.Close()
}
