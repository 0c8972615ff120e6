package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/auth"
	"github.com/fleetboss/fleet-service/internal/crest"
	"github.com/fleetboss/fleet-service/internal/fleet"
	"github.com/fleetboss/fleet-service/internal/models"
	"github.com/fleetboss/fleet-service/internal/storage"
)

// FleetService определяет интерфейс сервиса просмотра флотов
type FleetService interface {
	// ViewFleet проверяет доступ зрителя, подбирает рабочий ключ и собирает представление флота
	ViewFleet(ctx context.Context, viewer *auth.Viewer, fleetID int64) (*models.FleetView, error)

	// RawResource возвращает неизмененный ресурс флота, прочитанный ключом зрителя
	RawResource(ctx context.Context, viewer *auth.Viewer, fleetID int64, resource crest.Resource) (json.RawMessage, error)

	// UpdateSettings выполняет первое заданное действие над настройками доступа
	UpdateSettings(ctx context.Context, viewer *auth.Viewer, fleetID int64, req *models.FleetSettingsRequest) (*models.FleetSettingsResponse, error)

	// ResolveFleetURL извлекает ID флота из ссылки CREST или числа
	ResolveFleetURL(raw string) (*models.ResolveFleetResponse, error)
}

// FleetOpener создает агрегат флота, читаемого ключом персонажа ownerID
type FleetOpener interface {
	Open(fleetID, ownerID int64) *fleet.Fleet
}

// FleetURLParser разбирает ссылку на флот
type FleetURLParser interface {
	ParseFleetURL(raw string) (int64, error)
}

// ServiceDependencies содержит зависимости для создания сервисов
type ServiceDependencies struct {
	Repository *storage.Repository
	Fleets     FleetOpener
	URLParser  FleetURLParser
	Logger     *zap.Logger
}

// Service объединяет все сервисы
type Service struct {
	Fleet FleetService
}

// NewService создает новый экземпляр Service со всеми сервисами
func NewService(deps *ServiceDependencies) *Service {
	return &Service{
		Fleet: NewFleetService(deps),
	}
}
