package fleet

import (
	"fmt"
	"sort"
)

const (
	// UnknownBucket - корзина для кораблей и категорий вне справочников
	UnknownBucket = "Unknown"

	DockedBucket   = "Docked"
	UndockedBucket = "Undocked"
)

// Severity - уровень предупреждения о структуре флота
type Severity string

const (
	SeverityWarning Severity = "warning"
)

// Warning - предупреждение о нарушении командной структуры
type Warning struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Bucket - одна корзина агрегата для упорядоченного вывода
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompositionByClass считает корабли по названию
func CompositionByClass(members []MemberEntry) map[string]int {
	return countBy(members, func(m MemberEntry) string { return m.Ship.Name })
}

// CompositionByCategory перекладывает состав по классам в категории кораблей
func CompositionByCategory(members []MemberEntry) map[string]int {
	return rebucket(CompositionByClass(members), ShipCategories)
}

// CompositionBySize перекладывает состав по категориям в размеры корпусов
func CompositionBySize(members []MemberEntry) map[string]int {
	return rebucket(CompositionByCategory(members), CategorySizes)
}

// LocationBySystem считает участников по солнечным системам
func LocationBySystem(members []MemberEntry) map[string]int {
	return countBy(members, func(m MemberEntry) string { return m.SolarSystem.Name })
}

// LocationDocked делит участников на Docked и Undocked
func LocationDocked(members []MemberEntry) map[string]int {
	return countBy(members, func(m MemberEntry) string {
		if m.Docked() {
			return DockedBucket
		}
		return UndockedBucket
	})
}

// Warnings обходит иерархию и собирает предупреждения об отсутствующих командирах:
// флот без командира, непустое крыло с несколькими сквадами без командира,
// непустой сквад без командира.
func Warnings(h *Hierarchy) []Warning {
	res := []Warning{}

	if h.Commander() == nil {
		res = append(res, Warning{Severity: SeverityWarning, Message: "The fleet has no commander."})
	}

	for _, wing := range h.wings {
		if wing.MemberCount() == 0 {
			continue
		}

		if wing.commander == nil && wing.SquadCount() > 1 {
			res = append(res, Warning{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Wing %s has no commander.", wing.name),
			})
		}

		for _, squad := range wing.squads {
			if squad.commander == nil && squad.MemberCount() > 0 {
				res = append(res, Warning{
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("Squad %s of wing %s has no commander.", squad.name, wing.name),
				})
			}
		}
	}

	return res
}

// Sorted возвращает корзины по убыванию количества, при равенстве - по имени
func Sorted(counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for name, count := range counts {
		out = append(out, Bucket{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func countBy(members []MemberEntry, key func(MemberEntry) string) map[string]int {
	res := make(map[string]int)
	for _, m := range members {
		res[key(m)]++
	}
	return res
}

func rebucket(counts map[string]int, table map[string]string) map[string]int {
	res := make(map[string]int, len(counts))
	for name, count := range counts {
		bucket, ok := table[name]
		if !ok {
			bucket = UnknownBucket
		}
		res[bucket] += count
	}
	return res
}
