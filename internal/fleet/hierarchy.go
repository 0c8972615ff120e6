package fleet

// Member - участник флота. После создания не изменяется
type Member struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Squad - нижний уровень иерархии: командир и рядовые участники
type Squad struct {
	id        int64
	name      string
	commander *Member
	members   []*Member
}

func (s *Squad) ID() int64 { return s.id }

func (s *Squad) Name() string { return s.name }

// Commander возвращает командира сквада или nil
func (s *Squad) Commander() *Member { return s.commander }

// Members возвращает рядовых участников, командир в список не входит
func (s *Squad) Members() []*Member {
	out := make([]*Member, len(s.members))
	copy(out, s.members)
	return out
}

// MemberCount - количество рядовых участников
func (s *Squad) MemberCount() int { return len(s.members) }

// Wing - крыло: командир и упорядоченный набор сквадов
type Wing struct {
	id         int64
	name       string
	commander  *Member
	squads     []*Squad
	squadIndex map[int64]*Squad
}

func (w *Wing) ID() int64 { return w.id }

func (w *Wing) Name() string { return w.name }

// Commander возвращает командира крыла или nil
func (w *Wing) Commander() *Member { return w.commander }

// Squads возвращает сквады в порядке ресурса wings
func (w *Wing) Squads() []*Squad {
	out := make([]*Squad, len(w.squads))
	copy(out, w.squads)
	return out
}

// Squad ищет сквад по идентификатору
func (w *Wing) Squad(id int64) (*Squad, bool) {
	s, ok := w.squadIndex[id]
	return s, ok
}

func (w *Wing) SquadCount() int { return len(w.squads) }

// MemberCount - сумма рядовых участников сквадов, командиры не учитываются
func (w *Wing) MemberCount() int {
	total := 0
	for _, s := range w.squads {
		total += s.MemberCount()
	}
	return total
}

// Hierarchy - построенное дерево флота: Fleet -> Wings -> Squads -> Members
type Hierarchy struct {
	fleetID    int64
	commander  *Member
	freeMove   bool
	registered bool
	wings      []*Wing
	wingIndex  map[int64]*Wing
}

func (h *Hierarchy) FleetID() int64 { return h.fleetID }

// Commander возвращает командира флота или nil
func (h *Hierarchy) Commander() *Member { return h.commander }

func (h *Hierarchy) IsFreeMove() bool { return h.freeMove }

func (h *Hierarchy) IsRegistered() bool { return h.registered }

// Wings возвращает крылья в порядке ресурса wings
func (h *Hierarchy) Wings() []*Wing {
	out := make([]*Wing, len(h.wings))
	copy(out, h.wings)
	return out
}

// Wing ищет крыло по идентификатору
func (h *Hierarchy) Wing(id int64) (*Wing, bool) {
	w, ok := h.wingIndex[id]
	return w, ok
}

func (h *Hierarchy) WingCount() int { return len(h.wings) }

// SquadCount - общее количество сквадов во всех крыльях
func (h *Hierarchy) SquadCount() int {
	total := 0
	for _, w := range h.wings {
		total += w.SquadCount()
	}
	return total
}
