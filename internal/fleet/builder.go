package fleet

import (
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
)

// SquadCommanderRoleID - roleID, которым CREST помечает командира сквада
const SquadCommanderRoleID = 3

// Slot - позиция участника в иерархии
type Slot int

const (
	SlotFleetCommander Slot = iota
	SlotWingCommander
	SlotSquadCommander
	SlotSquadMember
)

func (s Slot) String() string {
	switch s {
	case SlotFleetCommander:
		return "fleet_commander"
	case SlotWingCommander:
		return "wing_commander"
	case SlotSquadCommander:
		return "squad_commander"
	case SlotSquadMember:
		return "squad_member"
	default:
		return "unknown"
	}
}

// placementKey - признаки записи участника, определяющие его позицию
type placementKey struct {
	inWing             bool // wingID >= 0
	inSquad            bool // squadID >= 0
	squadCommanderRole bool // roleID == SquadCommanderRoleID
}

// placement - полная таблица решений по знаку wingID, знаку squadID и roleID
var placement = map[placementKey]Slot{
	{inWing: false, inSquad: false, squadCommanderRole: false}: SlotFleetCommander,
	{inWing: false, inSquad: false, squadCommanderRole: true}:  SlotFleetCommander,
	{inWing: false, inSquad: true, squadCommanderRole: false}:  SlotFleetCommander,
	{inWing: false, inSquad: true, squadCommanderRole: true}:   SlotFleetCommander,
	{inWing: true, inSquad: false, squadCommanderRole: false}:  SlotWingCommander,
	{inWing: true, inSquad: false, squadCommanderRole: true}:   SlotWingCommander,
	{inWing: true, inSquad: true, squadCommanderRole: false}:   SlotSquadMember,
	{inWing: true, inSquad: true, squadCommanderRole: true}:    SlotSquadCommander,
}

// Classify определяет позицию записи участника в иерархии
func Classify(entry MemberEntry) Slot {
	return placement[placementKey{
		inWing:             entry.WingID >= 0,
		inSquad:            entry.SquadID >= 0,
		squadCommanderRole: entry.RoleID == SquadCommanderRoleID,
	}]
}

// Build строит иерархию флота из трех ресурсов CREST.
// Ссылка на неизвестное крыло или сквад, повторный идентификатор и второй
// командир на одной позиции возвращают ErrInconsistentFleetData.
func Build(fleetID int64, overview Overview, members []MemberEntry, wings []WingEntry) (*Hierarchy, error) {
	h := &Hierarchy{
		fleetID:    fleetID,
		freeMove:   overview.IsFreeMove,
		registered: overview.IsRegistered,
		wings:      make([]*Wing, 0, len(wings)),
		wingIndex:  make(map[int64]*Wing, len(wings)),
	}

	// 1. Крылья и сквады без участников
	for _, we := range wings {
		if _, exists := h.wingIndex[we.ID]; exists {
			return nil, &internalerrors.InconsistencyError{WingID: we.ID, SquadID: -1, Reason: "duplicate wing id"}
		}

		wing := &Wing{
			id:         we.ID,
			name:       we.Name,
			squads:     make([]*Squad, 0, len(we.Squads)),
			squadIndex: make(map[int64]*Squad, len(we.Squads)),
		}
		for _, se := range we.Squads {
			if _, exists := wing.squadIndex[se.ID]; exists {
				return nil, &internalerrors.InconsistencyError{WingID: we.ID, SquadID: se.ID, Reason: "duplicate squad id"}
			}
			squad := &Squad{id: se.ID, name: se.Name, members: []*Member{}}
			wing.squads = append(wing.squads, squad)
			wing.squadIndex[se.ID] = squad
		}

		h.wings = append(h.wings, wing)
		h.wingIndex[we.ID] = wing
	}

	// 2. Распределение участников по таблице решений.
	// Персонаж занимает в иерархии ровно одну позицию.
	seen := make(map[int64]struct{}, len(members))
	for _, entry := range members {
		if _, dup := seen[entry.Character.ID]; dup {
			return nil, &internalerrors.InconsistencyError{
				CharacterID: entry.Character.ID,
				WingID:      entry.WingID,
				SquadID:     entry.SquadID,
				Reason:      "duplicate member",
			}
		}
		seen[entry.Character.ID] = struct{}{}

		if err := h.place(entry); err != nil {
			return nil, err
		}
	}

	return h, nil
}

func (h *Hierarchy) place(entry MemberEntry) error {
	member := &Member{ID: entry.Character.ID, Name: entry.Character.Name}
	slot := Classify(entry)

	inconsistent := func(reason string) error {
		return &internalerrors.InconsistencyError{
			CharacterID: entry.Character.ID,
			WingID:      entry.WingID,
			SquadID:     entry.SquadID,
			Reason:      reason,
		}
	}

	if slot == SlotFleetCommander {
		if h.commander != nil {
			return inconsistent("second fleet commander")
		}
		h.commander = member
		return nil
	}

	wing, ok := h.wingIndex[entry.WingID]
	if !ok {
		return inconsistent("unknown wing")
	}

	if slot == SlotWingCommander {
		if wing.commander != nil {
			return inconsistent("second wing commander")
		}
		wing.commander = member
		return nil
	}

	squad, ok := wing.squadIndex[entry.SquadID]
	if !ok {
		return inconsistent("unknown squad")
	}

	if slot == SlotSquadCommander {
		if squad.commander != nil {
			return inconsistent("second squad commander")
		}
		squad.commander = member
		return nil
	}

	squad.members = append(squad.members, member)
	return nil
}
