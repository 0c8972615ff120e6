package service

import (
	"context"

	"github.com/fleetboss/fleet-service/internal/fleet"
	"github.com/fleetboss/fleet-service/internal/models"
)

// buildView собирает представление флота. Все три ресурса загружаются
// параллельно до построения иерархии, остальные аксессоры сеть не используют.
func buildView(ctx context.Context, f *fleet.Fleet) (*models.FleetView, error) {
	if err := f.Prefetch(ctx); err != nil {
		return nil, err
	}

	h, err := f.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}

	boss, err := f.Boss(ctx)
	if err != nil {
		return nil, err
	}
	overview, err := f.Overview(ctx)
	if err != nil {
		return nil, err
	}
	memberCount, err := f.MemberCount(ctx)
	if err != nil {
		return nil, err
	}
	squadCount, err := f.SquadCount(ctx)
	if err != nil {
		return nil, err
	}
	warnings, err := f.Warnings(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string][]models.CountBucket, 5)
	for name, stat := range map[string]func(context.Context) (map[string]int, error){
		"class":    f.CompositionByClass,
		"category": f.CompositionByCategory,
		"size":     f.CompositionBySize,
		"system":   f.LocationBySystem,
		"docked":   f.LocationDocked,
	} {
		counts, err := stat(ctx)
		if err != nil {
			return nil, err
		}
		stats[name] = buckets(counts)
	}

	view := &models.FleetView{
		FleetID:      f.ID,
		OwnerID:      f.OwnerID,
		Boss:         boss,
		Commander:    memberView(h.Commander()),
		IsFreeMove:   overview.IsFreeMove,
		IsAdvertised: overview.IsRegistered,
		MemberCount:  memberCount,
		SquadCount:   squadCount,
		Composition: models.CompositionView{
			ByClass:    stats["class"],
			ByCategory: stats["category"],
			BySize:     stats["size"],
		},
		Location: models.LocationView{
			BySystem: stats["system"],
			Docked:   stats["docked"],
		},
		Warnings: make([]models.WarningView, 0, len(warnings)),
		Wings:    make([]models.WingView, 0, h.WingCount()),
	}

	for _, w := range warnings {
		view.Warnings = append(view.Warnings, models.WarningView{Severity: string(w.Severity), Message: w.Message})
	}
	for _, wing := range h.Wings() {
		view.Wings = append(view.Wings, wingView(wing))
	}

	return view, nil
}

func wingView(wing *fleet.Wing) models.WingView {
	out := models.WingView{
		ID:          wing.ID(),
		Name:        wing.Name(),
		Commander:   memberView(wing.Commander()),
		MemberCount: wing.MemberCount(),
		Squads:      make([]models.SquadView, 0, wing.SquadCount()),
	}
	for _, squad := range wing.Squads() {
		sv := models.SquadView{
			ID:        squad.ID(),
			Name:      squad.Name(),
			Commander: memberView(squad.Commander()),
			Members:   make([]models.MemberView, 0, squad.MemberCount()),
		}
		for _, m := range squad.Members() {
			sv.Members = append(sv.Members, models.MemberView{ID: m.ID, Name: m.Name})
		}
		out.Squads = append(out.Squads, sv)
	}
	return out
}

func memberView(m *fleet.Member) *models.MemberView {
	if m == nil {
		return nil
	}
	return &models.MemberView{ID: m.ID, Name: m.Name}
}

func buckets(counts map[string]int) []models.CountBucket {
	sorted := fleet.Sorted(counts)
	out := make([]models.CountBucket, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, models.CountBucket{Name: b.Name, Count: b.Count})
	}
	return out
}
