package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/auth"
	"github.com/fleetboss/fleet-service/internal/crest"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/internal/models"
	"github.com/fleetboss/fleet-service/internal/service"
)

// FleetHandler обрабатывает HTTP запросы к флотам
type FleetHandler struct {
	fleetService service.FleetService
	logger       *zap.Logger
	validator    *validator.Validate
}

// NewFleetHandler создает новый экземпляр FleetHandler
func NewFleetHandler(fleetService service.FleetService, logger *zap.Logger) *FleetHandler {
	return &FleetHandler{
		fleetService: fleetService,
		logger:       logger,
		validator:    validator.New(),
	}
}

// GetFleet обрабатывает GET /fleets/{fleetID}
func (h *FleetHandler) GetFleet(w http.ResponseWriter, r *http.Request) {
	viewer, fleetID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	view, err := h.fleetService.ViewFleet(r.Context(), viewer, fleetID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, view)
}

// GetRaw обрабатывает GET /fleets/{fleetID}/raw и /fleets/{fleetID}/raw/{resource}
func (h *FleetHandler) GetRaw(w http.ResponseWriter, r *http.Request) {
	viewer, fleetID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	resource := crest.ResourceOverview
	if name := chi.URLParam(r, "resource"); name != "" {
		parsed, ok := crest.ParseResource(name)
		if !ok || parsed == crest.ResourceOverview {
			h.writeErrorResponse(w, http.StatusNotFound, models.ErrorCodeNotFound, "Unknown fleet resource", nil)
			return
		}
		resource = parsed
	}

	raw, err := h.fleetService.RawResource(r.Context(), viewer, fleetID, resource)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		h.logger.Error("Failed to write raw resource", zap.Error(err))
	}
}

// UpdateSettings обрабатывает POST /fleets/{fleetID}/settings
func (h *FleetHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	viewer, fleetID, ok := h.requestTarget(w, r)
	if !ok {
		return
	}

	var req models.FleetSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body", nil)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeValidation,
			"One of allow_fleet, add_viewer, remove_viewer is required", map[string]interface{}{
				"validation": err.Error(),
			})
		return
	}

	resp, err := h.fleetService.UpdateSettings(r.Context(), viewer, fleetID, &req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, resp)
}

// ResolveFleet обрабатывает GET /fleets/resolve?url=
func (h *FleetHandler) ResolveFleet(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Query parameter url is required", nil)
		return
	}

	resp, err := h.fleetService.ResolveFleetURL(raw)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, resp)
}

// requestTarget извлекает зрителя из JWT и ID флота из пути
func (h *FleetHandler) requestTarget(w http.ResponseWriter, r *http.Request) (*auth.Viewer, int64, bool) {
	viewer, err := auth.GetViewer(r.Context())
	if err != nil {
		h.writeErrorResponse(w, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "Viewer not found in context", nil)
		return nil, 0, false
	}

	fleetID, err := strconv.ParseInt(chi.URLParam(r, "fleetID"), 10, 64)
	if err != nil || fleetID <= 0 {
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid fleet ID", nil)
		return nil, 0, false
	}

	return viewer, fleetID, true
}

// writeServiceError переводит вид ошибки сервиса в HTTP статус
func (h *FleetHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, internalerrors.ErrAuthExpired):
		h.writeErrorResponse(w, http.StatusUnauthorized, models.ErrorCodeAuthExpired,
			"Character login expired, please log in again", nil)
	case errors.Is(err, internalerrors.ErrRemoteUnavailable):
		h.writeErrorResponse(w, http.StatusBadGateway, models.ErrorCodeRemoteUnavailable,
			"API key/connection not valid for this fleet", nil)
	case errors.Is(err, internalerrors.ErrInconsistentFleetData):
		w.Header().Set("Retry-After", "1")
		h.writeErrorResponse(w, http.StatusServiceUnavailable, models.ErrorCodeFleetInconsistent,
			"Fleet is changing, try again", nil)
	case errors.Is(err, internalerrors.ErrFleetAccessDenied):
		h.writeErrorResponse(w, http.StatusForbidden, models.ErrorCodeAccessDenied,
			"You do not have access to the requested fleet", nil)
	case errors.Is(err, internalerrors.ErrCharacterNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, models.ErrorCodeNotFound, "Character not found", nil)
	case errors.Is(err, internalerrors.ErrInvalidFleetURL):
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeBadRequest,
			"The URL you entered was not of the correct format", nil)
	case errors.Is(err, internalerrors.ErrNoSettingsAction):
		h.writeErrorResponse(w, http.StatusBadRequest, models.ErrorCodeValidation, err.Error(), nil)
	default:
		h.logger.Error("Fleet request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.writeErrorResponse(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error", nil)
		return
	}

	h.logger.Debug("Fleet request rejected",
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// writeJSONResponse отправляет JSON ответ
func (h *FleetHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeErrorResponse отправляет JSON ответ с ошибкой
func (h *FleetHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, details map[string]interface{}) {
	errorResponse := models.ErrorResponse{
		Error:   errorCode,
		Message: message,
		Details: details,
	}

	h.writeJSONResponse(w, statusCode, errorResponse)
}
