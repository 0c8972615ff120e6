package storage

import (
	"context"
	"time"

	"github.com/fleetboss/fleet-service/internal/models"
)

// CharacterRepository определяет интерфейс для работы с персонажами
type CharacterRepository interface {
	// GetCharacter возвращает персонажа по EVE ID
	GetCharacter(ctx context.Context, characterID int64) (*models.Character, error)

	// UpsertCharacter создает персонажа или обновляет его имя
	UpsertCharacter(ctx context.Context, character *models.Character) error
}

// CredentialRepository определяет интерфейс для работы с токенами SSO
type CredentialRepository interface {
	// GetCredential возвращает токены персонажа
	GetCredential(ctx context.Context, characterID int64) (*models.Credential, error)

	// SaveCredential сохраняет обновленные токены одним UPDATE
	SaveCredential(ctx context.Context, credential *models.Credential) error
}

// FleetAccessRepository определяет интерфейс для работы с настройками доступа к флотам
type FleetAccessRepository interface {
	// GetFleetAccess возвращает настройки флота или nil, если флот еще не открывался
	GetFleetAccess(ctx context.Context, fleetID int64) (*models.FleetAccess, error)

	// SaveFleetAccess создает или обновляет владельца и флаг fleet_access
	SaveFleetAccess(ctx context.Context, access *models.FleetAccess) error

	// HasViewer проверяет явный доступ персонажа к флоту
	HasViewer(ctx context.Context, fleetID, characterID int64) (bool, error)

	// AddViewer выдает персонажу явный доступ
	AddViewer(ctx context.Context, fleetID, characterID int64) error

	// RemoveViewer отзывает явный доступ
	RemoveViewer(ctx context.Context, fleetID, characterID int64) error

	// ListViewers возвращает персонажей с явным доступом
	ListViewers(ctx context.Context, fleetID int64) ([]models.Character, error)
}

// Repository объединяет все репозитории
type Repository struct {
	Character   CharacterRepository
	Credential  CredentialRepository
	FleetAccess FleetAccessRepository
}

// RepositoryDependencies содержит зависимости для создания репозиториев
type RepositoryDependencies struct {
	DB               DatabaseInterface
	MetricsCollector MetricsInterface
}

// DatabaseInterface определяет интерфейс для работы с базой данных
type DatabaseInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) Row
	Query(ctx context.Context, query string, args ...interface{}) (Rows, error)
	// Exec возвращает количество затронутых строк
	Exec(ctx context.Context, query string, args ...interface{}) (int64, error)
	Health(ctx context.Context) error
}

// MetricsInterface определяет интерфейс для сбора метрик
type MetricsInterface interface {
	IncDBQuery(operation string)
	ObserveDBQueryDuration(operation string, duration time.Duration)
}

// Row интерфейс для работы с результатом одной строки
type Row interface {
	Scan(dest ...interface{}) error
}

// Rows интерфейс для работы с результатом множества строк
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
	Close()
}
