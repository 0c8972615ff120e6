package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/auth"
	"github.com/fleetboss/fleet-service/internal/crest"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/internal/fleet"
	"github.com/fleetboss/fleet-service/internal/models"
	"github.com/fleetboss/fleet-service/internal/storage"
)

// fleetService реализует FleetService
type fleetService struct {
	repository *storage.Repository
	fleets     FleetOpener
	urlParser  FleetURLParser
	logger     *zap.Logger
}

// NewFleetService создает новый экземпляр сервиса флотов
func NewFleetService(deps *ServiceDependencies) FleetService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fleetService{
		repository: deps.Repository,
		fleets:     deps.Fleets,
		urlParser:  deps.URLParser,
		logger:     logger.Named("fleet_service"),
	}
}

// ViewFleet возвращает представление флота для зрителя.
// Зритель без явного доступа должен сам состоять во флоте.
func (s *fleetService) ViewFleet(ctx context.Context, viewer *auth.Viewer, fleetID int64) (*models.FleetView, error) {
	access, explicit, err := s.loadAccess(ctx, viewer, fleetID)
	if err != nil {
		return nil, err
	}

	if !access.FleetAccess && !explicit {
		return nil, fmt.Errorf("fleet %d: %w", fleetID, internalerrors.ErrFleetAccessDenied)
	}

	f, err := s.openWithWorkingKey(ctx, access, viewer)
	if err != nil {
		return nil, err
	}

	if !explicit {
		member, err := f.HasMember(ctx, viewer.CharacterName)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf("fleet %d: character %d is not a member: %w",
				fleetID, viewer.CharacterID, internalerrors.ErrFleetAccessDenied)
		}
	}

	view, err := buildView(ctx, f)
	if err != nil {
		return nil, err
	}

	view.IsOwner = access.IsOwner(viewer.CharacterID)
	if view.IsOwner {
		viewers, err := s.repository.FleetAccess.ListViewers(ctx, fleetID)
		if err != nil {
			return nil, fmt.Errorf("failed to list fleet viewers: %w", err)
		}
		view.Settings = &models.FleetSettingsView{FleetAccess: access.FleetAccess, Viewers: viewers}
	}

	return view, nil
}

// loadAccess возвращает настройки флота или черновик, где владелец - сам зритель
func (s *fleetService) loadAccess(ctx context.Context, viewer *auth.Viewer, fleetID int64) (*models.FleetAccess, bool, error) {
	access, err := s.repository.FleetAccess.GetFleetAccess(ctx, fleetID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get fleet access: %w", err)
	}

	if access == nil {
		draft := &models.FleetAccess{FleetID: fleetID, OwnerID: viewer.CharacterID}
		return draft, true, nil
	}

	if access.IsOwner(viewer.CharacterID) {
		return access, true, nil
	}

	explicit, err := s.repository.FleetAccess.HasViewer(ctx, fleetID, viewer.CharacterID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check fleet viewer: %w", err)
	}
	return access, explicit, nil
}

// openWithWorkingKey пробует ключ владельца, затем ключ зрителя.
// Сработавший ключ сохраняется как владелец флота.
func (s *fleetService) openWithWorkingKey(ctx context.Context, access *models.FleetAccess, viewer *auth.Viewer) (*fleet.Fleet, error) {
	candidates := make([]int64, 0, 2)
	if access.OwnerID != 0 {
		candidates = append(candidates, access.OwnerID)
	}
	if access.OwnerID != viewer.CharacterID {
		candidates = append(candidates, viewer.CharacterID)
	}

	var lastErr error
	for _, ownerID := range candidates {
		f := s.fleets.Open(access.FleetID, ownerID)
		if err := f.Validate(ctx); err != nil {
			s.logger.Debug("Fleet key rejected",
				zap.Int64("fleet_id", access.FleetID),
				zap.Int64("owner_id", ownerID),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		access.OwnerID = ownerID
		if err := s.repository.FleetAccess.SaveFleetAccess(ctx, access); err != nil {
			return nil, fmt.Errorf("failed to save fleet access: %w", err)
		}
		return f, nil
	}

	return nil, fmt.Errorf("no valid key for fleet %d: %w", access.FleetID, lastErr)
}

// RawResource читает ресурс ключом самого зрителя, доступ проверяет удаленный API
func (s *fleetService) RawResource(ctx context.Context, viewer *auth.Viewer, fleetID int64, resource crest.Resource) (json.RawMessage, error) {
	return s.fleets.Open(fleetID, viewer.CharacterID).Raw(ctx, resource)
}

// UpdateSettings изменяет настройки флота. Доступно только владельцу.
func (s *fleetService) UpdateSettings(ctx context.Context, viewer *auth.Viewer, fleetID int64, req *models.FleetSettingsRequest) (*models.FleetSettingsResponse, error) {
	access, err := s.repository.FleetAccess.GetFleetAccess(ctx, fleetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fleet access: %w", err)
	}
	if access == nil || !access.IsOwner(viewer.CharacterID) {
		return nil, fmt.Errorf("fleet %d settings: %w", fleetID, internalerrors.ErrFleetAccessDenied)
	}

	switch {
	case req.AllowFleet != nil:
		access.FleetAccess = *req.AllowFleet
		if err := s.repository.FleetAccess.SaveFleetAccess(ctx, access); err != nil {
			return nil, fmt.Errorf("failed to save fleet access: %w", err)
		}
		s.logger.Info("Fleet access changed",
			zap.Int64("fleet_id", fleetID),
			zap.Bool("fleet_access", access.FleetAccess),
		)
		return &models.FleetSettingsResponse{Success: true, Message: "Fleet access updated"}, nil

	case req.AddViewer != nil:
		character, err := s.repository.Character.GetCharacter(ctx, *req.AddViewer)
		if err != nil {
			return nil, err
		}
		if err := s.repository.FleetAccess.AddViewer(ctx, fleetID, character.ID); err != nil {
			return nil, fmt.Errorf("failed to add fleet viewer: %w", err)
		}
		s.logger.Info("Fleet viewer added", zap.Int64("fleet_id", fleetID), zap.Int64("character_id", character.ID))
		return &models.FleetSettingsResponse{Success: true, Message: "Viewer added", Viewer: character}, nil

	case req.RemoveViewer != nil:
		character, err := s.repository.Character.GetCharacter(ctx, *req.RemoveViewer)
		if err != nil {
			return nil, err
		}
		if err := s.repository.FleetAccess.RemoveViewer(ctx, fleetID, character.ID); err != nil {
			return nil, fmt.Errorf("failed to remove fleet viewer: %w", err)
		}
		s.logger.Info("Fleet viewer removed", zap.Int64("fleet_id", fleetID), zap.Int64("character_id", character.ID))
		return &models.FleetSettingsResponse{Success: true, Message: "Viewer removed"}, nil
	}

	return nil, internalerrors.ErrNoSettingsAction
}

// ResolveFleetURL возвращает ID флота и путь его страницы
func (s *fleetService) ResolveFleetURL(raw string) (*models.ResolveFleetResponse, error) {
	fleetID, err := s.urlParser.ParseFleetURL(raw)
	if err != nil {
		return nil, err
	}
	return &models.ResolveFleetResponse{FleetID: fleetID, Path: fmt.Sprintf("/fleets/%d", fleetID)}, nil
}
