package models

// FleetView представляет ответ эндпоинта GET /fleets/{fleetID}
type FleetView struct {
	FleetID      int64              `json:"fleet_id"`
	OwnerID      int64              `json:"owner_id"`
	IsOwner      bool               `json:"is_owner"`
	Boss         string             `json:"boss,omitempty"`
	Commander    *MemberView        `json:"commander,omitempty"`
	IsFreeMove   bool               `json:"is_free_move"`
	IsAdvertised bool               `json:"is_advertised"`
	MemberCount  int                `json:"member_count"`
	SquadCount   int                `json:"squad_count"`
	Composition  CompositionView    `json:"composition"`
	Location     LocationView       `json:"location"`
	Warnings     []WarningView      `json:"warnings"`
	Wings        []WingView         `json:"wings"`
	Settings     *FleetSettingsView `json:"settings,omitempty"`
}

// CountBucket представляет одну строку статистики
type CountBucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompositionView представляет состав флота по кораблям
type CompositionView struct {
	ByClass    []CountBucket `json:"by_class"`
	ByCategory []CountBucket `json:"by_category"`
	BySize     []CountBucket `json:"by_size"`
}

// LocationView представляет расположение участников флота
type LocationView struct {
	BySystem []CountBucket `json:"by_system"`
	Docked   []CountBucket `json:"docked"`
}

// WarningView представляет предупреждение о структуре флота
type WarningView struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// MemberView представляет участника флота
type MemberView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WingView представляет крыло со сквадами
type WingView struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Commander   *MemberView `json:"commander,omitempty"`
	MemberCount int         `json:"member_count"`
	Squads      []SquadView `json:"squads"`
}

// SquadView представляет сквад с участниками
type SquadView struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Commander *MemberView  `json:"commander,omitempty"`
	Members   []MemberView `json:"members"`
}

// FleetSettingsView представляет настройки доступа, видимые только владельцу
type FleetSettingsView struct {
	FleetAccess bool        `json:"fleet_access"`
	Viewers     []Character `json:"viewers"`
}

// FleetSettingsRequest представляет запрос POST /fleets/{fleetID}/settings.
// Выполняется первое заданное действие: allow_fleet, add_viewer, remove_viewer.
type FleetSettingsRequest struct {
	AllowFleet   *bool  `json:"allow_fleet,omitempty" validate:"required_without_all=AddViewer RemoveViewer"`
	AddViewer    *int64 `json:"add_viewer,omitempty" validate:"omitempty,gt=0"`
	RemoveViewer *int64 `json:"remove_viewer,omitempty" validate:"omitempty,gt=0"`
}

// FleetSettingsResponse представляет ответ на изменение настроек
type FleetSettingsResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Viewer  *Character `json:"viewer,omitempty"`
}

// ResolveFleetResponse представляет ответ GET /fleets/resolve
type ResolveFleetResponse struct {
	FleetID int64  `json:"fleet_id"`
	Path    string `json:"path"`
}

// ErrorResponse представляет стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Коды ошибок API
const (
	ErrorCodeUnauthorized      = "unauthorized"
	ErrorCodeBadRequest        = "bad_request"
	ErrorCodeValidation        = "validation_error"
	ErrorCodeNotFound          = "not_found"
	ErrorCodeAccessDenied      = "access_denied"
	ErrorCodeAuthExpired       = "auth_expired"
	ErrorCodeRemoteUnavailable = "remote_unavailable"
	ErrorCodeFleetInconsistent = "fleet_inconsistent"
	ErrorCodeInternalError     = "internal_error"
)
