package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/fleetboss/fleet-service/internal/models"
)

// fleetAccessRepository реализует FleetAccessRepository
type fleetAccessRepository struct {
	db      DatabaseInterface
	metrics MetricsInterface
}

// NewFleetAccessRepository создает новый экземпляр репозитория настроек доступа
func NewFleetAccessRepository(deps *RepositoryDependencies) FleetAccessRepository {
	return &fleetAccessRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

// GetFleetAccess возвращает настройки флота или nil, если записи нет
func (r *fleetAccessRepository) GetFleetAccess(ctx context.Context, fleetID int64) (*models.FleetAccess, error) {
	defer observe(r.metrics, "fleet_access_get")()

	query := `
		SELECT fleet_id, COALESCE(owner_id, 0), fleet_access, updated_at
		FROM fleetboss.fleet_access
		WHERE fleet_id = $1
	`

	var access models.FleetAccess
	err := r.db.QueryRow(ctx, query, fleetID).Scan(&access.FleetID, &access.OwnerID, &access.FleetAccess, &access.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to query fleet access")
	}

	return &access, nil
}

// SaveFleetAccess создает или обновляет настройки флота
func (r *fleetAccessRepository) SaveFleetAccess(ctx context.Context, access *models.FleetAccess) error {
	defer observe(r.metrics, "fleet_access_save")()

	query := `
		INSERT INTO fleetboss.fleet_access (fleet_id, owner_id, fleet_access)
		VALUES ($1, $2, $3)
		ON CONFLICT (fleet_id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id, fleet_access = EXCLUDED.fleet_access, updated_at = now()
	`

	if _, err := r.db.Exec(ctx, query, access.FleetID, access.OwnerID, access.FleetAccess); err != nil {
		return characterNotFound(err, "failed to save fleet access")
	}
	return nil
}

// HasViewer проверяет явный доступ персонажа к флоту
func (r *fleetAccessRepository) HasViewer(ctx context.Context, fleetID, characterID int64) (bool, error) {
	defer observe(r.metrics, "fleet_viewer_check")()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM fleetboss.fleet_access_viewers
			WHERE fleet_id = $1 AND character_id = $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, fleetID, characterID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check fleet viewer")
	}
	return exists, nil
}

// AddViewer выдает персонажу явный доступ, повторная выдача не является ошибкой
func (r *fleetAccessRepository) AddViewer(ctx context.Context, fleetID, characterID int64) error {
	defer observe(r.metrics, "fleet_viewer_add")()

	query := `
		INSERT INTO fleetboss.fleet_access_viewers (fleet_id, character_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, fleetID, characterID); err != nil {
		return characterNotFound(err, "failed to add fleet viewer")
	}
	return nil
}

// RemoveViewer отзывает явный доступ
func (r *fleetAccessRepository) RemoveViewer(ctx context.Context, fleetID, characterID int64) error {
	defer observe(r.metrics, "fleet_viewer_remove")()

	query := `
		DELETE FROM fleetboss.fleet_access_viewers
		WHERE fleet_id = $1 AND character_id = $2
	`

	if _, err := r.db.Exec(ctx, query, fleetID, characterID); err != nil {
		return errors.Wrap(err, "failed to remove fleet viewer")
	}
	return nil
}

// ListViewers возвращает персонажей с явным доступом в порядке выдачи
func (r *fleetAccessRepository) ListViewers(ctx context.Context, fleetID int64) ([]models.Character, error) {
	defer observe(r.metrics, "fleet_viewer_list")()

	query := `
		SELECT c.id, c.name, c.created_at
		FROM fleetboss.fleet_access_viewers v
		JOIN fleetboss.characters c ON c.id = v.character_id
		WHERE v.fleet_id = $1
		ORDER BY v.created_at, c.id
	`

	rows, err := r.db.Query(ctx, query, fleetID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query fleet viewers")
	}
	defer rows.Close()

	viewers := []models.Character{}
	for rows.Next() {
		var c models.Character
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan fleet viewer")
		}
		viewers = append(viewers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate fleet viewers")
	}

	return viewers, nil
}
