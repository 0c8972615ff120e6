package fleet

import (
	"encoding/json"
	"fmt"

	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
)

// Overview - ресурс /fleets/{id}/
type Overview struct {
	IsFreeMove     bool   `json:"isFreeMove"`
	IsRegistered   bool   `json:"isRegistered"`
	IsVoiceEnabled bool   `json:"isVoiceEnabled"`
	Motd           string `json:"motd"`
}

// Ref - ссылка CREST на именованную сущность (персонаж, корабль, система, станция)
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MemberEntry - элемент ресурса /fleets/{id}/members/
type MemberEntry struct {
	Character      Ref    `json:"character"`
	Ship           Ref    `json:"ship"`
	SolarSystem    Ref    `json:"solarSystem"`
	Station        *Ref   `json:"station,omitempty"`
	WingID         int64  `json:"wingID"`
	SquadID        int64  `json:"squadID"`
	RoleID         int    `json:"roleID"`
	RoleName       string `json:"roleName"`
	TakesFleetWarp bool   `json:"takesFleetWarp"`
}

// Docked сообщает, находится ли участник на станции
func (m MemberEntry) Docked() bool {
	return m.Station != nil
}

// SquadEntry - описание сквада внутри крыла
type SquadEntry struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WingEntry - элемент ресурса /fleets/{id}/wings/
type WingEntry struct {
	ID     int64        `json:"id"`
	Name   string       `json:"name"`
	Squads []SquadEntry `json:"squadsList"`
}

type collection[T any] struct {
	Items []T `json:"items"`
}

// DecodeOverview разбирает тело ответа обзора флота
func DecodeOverview(fleetID int64, raw json.RawMessage) (Overview, error) {
	var overview Overview
	if err := json.Unmarshal(raw, &overview); err != nil {
		return Overview{}, decodeError(fleetID, "overview", err)
	}
	return overview, nil
}

// DecodeMembers разбирает коллекцию участников
func DecodeMembers(fleetID int64, raw json.RawMessage) ([]MemberEntry, error) {
	var body collection[MemberEntry]
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, decodeError(fleetID, "members", err)
	}
	if body.Items == nil {
		return []MemberEntry{}, nil
	}
	return body.Items, nil
}

// DecodeWings разбирает коллекцию крыльев
func DecodeWings(fleetID int64, raw json.RawMessage) ([]WingEntry, error) {
	var body collection[WingEntry]
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, decodeError(fleetID, "wings", err)
	}
	if body.Items == nil {
		return []WingEntry{}, nil
	}
	return body.Items, nil
}

// Неразборчивое тело считается недоступностью удаленного API
func decodeError(fleetID int64, resource string, err error) error {
	return &internalerrors.RemoteError{
		FleetID:  fleetID,
		Resource: resource,
		Cause:    fmt.Errorf("failed to decode response: %w", err),
	}
}
