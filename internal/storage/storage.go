package storage

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
)

// NewRepository создает новый экземпляр Repository со всеми репозиториями
func NewRepository(deps *RepositoryDependencies) *Repository {
	return &Repository{
		Character:   NewCharacterRepository(deps),
		Credential:  NewCredentialRepository(deps),
		FleetAccess: NewFleetAccessRepository(deps),
	}
}

// PostgreSQL error codes
const (
	pgErrorCodeForeignKeyViolation = "23503"
)

// observe учитывает запрос в метриках, вызывается через defer
func observe(metrics MetricsInterface, operation string) func() {
	start := time.Now()
	metrics.IncDBQuery(operation)
	return func() {
		metrics.ObserveDBQueryDuration(operation, time.Since(start))
	}
}

// isNoRows проверяет отсутствие строки в результате
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// characterNotFound преобразует нарушение внешнего ключа на персонажа в ErrCharacterNotFound
func characterNotFound(err error, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrorCodeForeignKeyViolation {
		return errors.Wrap(internalerrors.ErrCharacterNotFound, message)
	}
	return errors.Wrap(err, message)
}
