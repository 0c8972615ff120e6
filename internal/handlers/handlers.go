package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/handlers/public"
	"github.com/fleetboss/fleet-service/internal/service"
)

// Handlers содержит все HTTP обработчики
type Handlers struct {
	Health *HealthHandler
	Fleet  *public.FleetHandler
}

// HandlerDependencies содержит зависимости для создания handlers
type HandlerDependencies struct {
	Service *service.Service
	DB      DatabaseHealth
	Redis   HealthChecker
	Logger  *zap.Logger
}

// NewHandlers создает новый экземпляр Handlers со всеми обработчиками
func NewHandlers(deps *HandlerDependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.DB, deps.Redis),
		Fleet:  public.NewFleetHandler(deps.Service.Fleet, deps.Logger),
	}
}

// RegisterFleetRoutes подключает публичные маршруты флотов под auth middleware
func (h *Handlers) RegisterFleetRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/fleets", func(r chi.Router) {
		r.Use(auth)

		r.Get("/resolve", h.Fleet.ResolveFleet)

		r.Route("/{fleetID}", func(r chi.Router) {
			r.Get("/", h.Fleet.GetFleet)
			r.Get("/raw", h.Fleet.GetRaw)
			r.Get("/raw/{resource}", h.Fleet.GetRaw)
			r.Post("/settings", h.Fleet.UpdateSettings)
		})
	})
}
