package errors

import (
	"errors"
	"fmt"
)

// Виды ошибок, различаемые вызывающей стороной
var (
	// ErrAuthExpired - не удалось обновить токен доступа персонажа
	ErrAuthExpired = errors.New("credential refresh failed")
	// ErrRemoteUnavailable - CREST вернул не 200 или запрос не выполнился
	ErrRemoteUnavailable = errors.New("remote fleet api unavailable")
	// ErrInconsistentFleetData - участник ссылается на отсутствующее крыло или сквад
	ErrInconsistentFleetData = errors.New("inconsistent fleet data")

	ErrFleetAccessDenied = errors.New("fleet access denied")
	ErrCharacterNotFound = errors.New("character not found")
	ErrInvalidFleetURL   = errors.New("invalid fleet url")
	ErrNoSettingsAction  = errors.New("no settings action given")
)

// RemoteError описывает неуспешный запрос к ресурсу флота
type RemoteError struct {
	FleetID    int64
	Resource   string
	StatusCode int
	Cause      error
}

func (e *RemoteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fleet %d resource %q: %v", e.FleetID, e.Resource, e.Cause)
	}
	return fmt.Sprintf("fleet %d resource %q: unexpected status %d", e.FleetID, e.Resource, e.StatusCode)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// InconsistencyError описывает ссылку участника на неизвестное крыло или сквад
type InconsistencyError struct {
	CharacterID int64
	WingID      int64
	SquadID     int64
	Reason      string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("member %d (wing %d, squad %d): %s", e.CharacterID, e.WingID, e.SquadID, e.Reason)
}

func (e *InconsistencyError) Is(target error) bool {
	return target == ErrInconsistentFleetData
}

// AuthError описывает неудачное обновление токена
type AuthError struct {
	CharacterID int64
	Cause       error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("character %d: %v: %v", e.CharacterID, ErrAuthExpired, e.Cause)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuthExpired
}
