package models

import "time"

// Character представляет персонажа, вошедшего через SSO
type Character struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Credential представляет токены SSO персонажа и срок действия access token
type Credential struct {
	CharacterID  int64     `db:"character_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Remaining возвращает оставшееся время жизни access token
func (c *Credential) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// FleetAccess представляет настройки доступа к флоту.
// OwnerID - персонаж, чьим ключом читается флот.
type FleetAccess struct {
	FleetID     int64     `json:"fleet_id" db:"fleet_id"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	FleetAccess bool      `json:"fleet_access" db:"fleet_access"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsOwner проверяет, является ли персонаж владельцем флота
func (a *FleetAccess) IsOwner(characterID int64) bool {
	return a.OwnerID == characterID
}
