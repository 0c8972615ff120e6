package storage

import (
	"context"

	"github.com/pkg/errors"

	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/internal/models"
)

// characterRepository реализует CharacterRepository и CredentialRepository
type characterRepository struct {
	db      DatabaseInterface
	metrics MetricsInterface
}

// NewCharacterRepository создает новый экземпляр репозитория персонажей
func NewCharacterRepository(deps *RepositoryDependencies) CharacterRepository {
	return &characterRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

// NewCredentialRepository создает репозиторий токенов, токены хранятся в строке персонажа
func NewCredentialRepository(deps *RepositoryDependencies) CredentialRepository {
	return &characterRepository{
		db:      deps.DB,
		metrics: deps.MetricsCollector,
	}
}

// GetCharacter возвращает персонажа по EVE ID
func (r *characterRepository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	defer observe(r.metrics, "character_get")()

	query := `
		SELECT id, name, created_at
		FROM fleetboss.characters
		WHERE id = $1
	`

	var character models.Character
	err := r.db.QueryRow(ctx, query, characterID).Scan(&character.ID, &character.Name, &character.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, internalerrors.ErrCharacterNotFound
		}
		return nil, errors.Wrap(err, "failed to query character")
	}

	return &character, nil
}

// UpsertCharacter создает персонажа или обновляет его имя
func (r *characterRepository) UpsertCharacter(ctx context.Context, character *models.Character) error {
	defer observe(r.metrics, "character_upsert")()

	query := `
		INSERT INTO fleetboss.characters (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
	`

	if _, err := r.db.Exec(ctx, query, character.ID, character.Name); err != nil {
		return errors.Wrap(err, "failed to upsert character")
	}
	return nil
}

// GetCredential возвращает токены персонажа
func (r *characterRepository) GetCredential(ctx context.Context, characterID int64) (*models.Credential, error) {
	defer observe(r.metrics, "credential_get")()

	query := `
		SELECT id, access_token, refresh_token, expires_at, updated_at
		FROM fleetboss.characters
		WHERE id = $1
	`

	var credential models.Credential
	err := r.db.QueryRow(ctx, query, characterID).Scan(
		&credential.CharacterID,
		&credential.AccessToken,
		&credential.RefreshToken,
		&credential.ExpiresAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, internalerrors.ErrCharacterNotFound
		}
		return nil, errors.Wrap(err, "failed to query credential")
	}

	return &credential, nil
}

// SaveCredential сохраняет обновленные токены.
// Все поля записываются одним UPDATE, частичная запись невозможна.
func (r *characterRepository) SaveCredential(ctx context.Context, credential *models.Credential) error {
	defer observe(r.metrics, "credential_save")()

	query := `
		UPDATE fleetboss.characters
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = $5
		WHERE id = $1
	`

	affected, err := r.db.Exec(ctx, query,
		credential.CharacterID,
		credential.AccessToken,
		credential.RefreshToken,
		credential.ExpiresAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to save credential")
	}
	if affected == 0 {
		return internalerrors.ErrCharacterNotFound
	}
	return nil
}
