package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fleetboss/fleet-service/internal/crest"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/pkg/metrics"
)

// BossMarker - подстрока roleName, которой CREST помечает босса флота
const BossMarker = "(Boss)"

// Fetcher загружает сырой ресурс флота
type Fetcher interface {
	Fetch(ctx context.Context, fleetID int64, token string, resource crest.Resource) (json.RawMessage, error)
}

// TokenSource выдает действующий токен доступа персонажа.
// Может выполнять сетевой запрос на обновление токена.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Fleet - агрегат одного флота в рамках одного запроса.
// Ресурсы загружаются при первом обращении и запоминаются до конца жизни экземпляра.
type Fleet struct {
	ID      int64
	OwnerID int64

	client Fetcher
	tokens TokenSource
	logger *zap.Logger

	overview deferred[Overview]
	members  deferred[[]MemberEntry]
	wings    deferred[[]WingEntry]

	buildMu   sync.Mutex
	hierarchy *Hierarchy
}

// New создает агрегат флота с токеном владельца ключа
func New(fleetID, ownerID int64, client Fetcher, tokens TokenSource, logger *zap.Logger) *Fleet {
	return &Fleet{
		ID:      fleetID,
		OwnerID: ownerID,
		client:  client,
		tokens:  tokens,
		logger:  logger.With(zap.Int64("fleet_id", fleetID), zap.Int64("owner_id", ownerID)),
	}
}

// Opener создает агрегаты флотов для разных владельцев ключа
type Opener struct {
	client Fetcher
	tokens func(characterID int64) TokenSource
	logger *zap.Logger
}

// NewOpener создает фабрику агрегатов
func NewOpener(client Fetcher, tokens func(characterID int64) TokenSource, logger *zap.Logger) *Opener {
	return &Opener{client: client, tokens: tokens, logger: logger}
}

// Open создает агрегат флота fleetID, читаемого ключом персонажа ownerID
func (o *Opener) Open(fleetID, ownerID int64) *Fleet {
	return New(fleetID, ownerID, o.client, o.tokens(ownerID), o.logger)
}

func (f *Fleet) fetch(ctx context.Context, resource crest.Resource) (json.RawMessage, error) {
	token, err := f.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return f.client.Fetch(ctx, f.ID, token, resource)
}

func (f *Fleet) loadOverview(ctx context.Context) (json.RawMessage, Overview, error) {
	return f.overview.get(ctx, func(ctx context.Context) (json.RawMessage, Overview, error) {
		raw, err := f.fetch(ctx, crest.ResourceOverview)
		if err != nil {
			return nil, Overview{}, err
		}
		overview, err := DecodeOverview(f.ID, raw)
		return raw, overview, err
	})
}

func (f *Fleet) loadMembers(ctx context.Context) (json.RawMessage, []MemberEntry, error) {
	return f.members.get(ctx, func(ctx context.Context) (json.RawMessage, []MemberEntry, error) {
		raw, err := f.fetch(ctx, crest.ResourceMembers)
		if err != nil {
			return nil, nil, err
		}
		members, err := DecodeMembers(f.ID, raw)
		return raw, members, err
	})
}

func (f *Fleet) loadWings(ctx context.Context) (json.RawMessage, []WingEntry, error) {
	return f.wings.get(ctx, func(ctx context.Context) (json.RawMessage, []WingEntry, error) {
		raw, err := f.fetch(ctx, crest.ResourceWings)
		if err != nil {
			return nil, nil, err
		}
		wings, err := DecodeWings(f.ID, raw)
		return raw, wings, err
	})
}

// Validate загружает обзор флота и возвращает ошибку, если ключ не подходит
func (f *Fleet) Validate(ctx context.Context) error {
	_, _, err := f.loadOverview(ctx)
	return err
}

// ValidKey сообщает, может ли владелец ключа читать этот флот.
// Ошибки не выходят за пределы метода, только логируются.
func (f *Fleet) ValidKey(ctx context.Context) bool {
	if err := f.Validate(ctx); err != nil {
		f.logger.Debug("Fleet key is not valid", zap.Error(err))
		return false
	}
	return true
}

// Prefetch параллельно загружает все три ресурса
func (f *Fleet) Prefetch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, _, err := f.loadOverview(gctx)
		return err
	})
	g.Go(func() error {
		_, _, err := f.loadMembers(gctx)
		return err
	})
	g.Go(func() error {
		_, _, err := f.loadWings(gctx)
		return err
	})
	return g.Wait()
}

// Raw возвращает неизмененное тело ресурса
func (f *Fleet) Raw(ctx context.Context, resource crest.Resource) (json.RawMessage, error) {
	var (
		raw json.RawMessage
		err error
	)
	switch resource {
	case crest.ResourceOverview:
		raw, _, err = f.loadOverview(ctx)
	case crest.ResourceMembers:
		raw, _, err = f.loadMembers(ctx)
	case crest.ResourceWings:
		raw, _, err = f.loadWings(ctx)
	default:
		return nil, &internalerrors.RemoteError{FleetID: f.ID, Resource: string(resource), Cause: errors.New("unknown resource")}
	}
	return raw, err
}

// Overview возвращает разобранный обзор флота
func (f *Fleet) Overview(ctx context.Context) (Overview, error) {
	_, overview, err := f.loadOverview(ctx)
	return overview, err
}

// Members возвращает записи участников в порядке ресурса members
func (f *Fleet) Members(ctx context.Context) ([]MemberEntry, error) {
	_, members, err := f.loadMembers(ctx)
	return members, err
}

// Hierarchy строит дерево флота при первом обращении.
// Участники и крылья загружаются параллельно, обзор не запрашивается:
// флаги обзора берутся, только если он уже был получен.
func (f *Fleet) Hierarchy(ctx context.Context) (*Hierarchy, error) {
	f.buildMu.Lock()
	defer f.buildMu.Unlock()

	if f.hierarchy != nil {
		return f.hierarchy, nil
	}

	var (
		members []MemberEntry
		wings   []WingEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		_, members, err = f.loadMembers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		_, wings, err = f.loadWings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordFleetBuild("fetch_error", 0)
		return nil, err
	}

	overview, _ := f.overview.peek()

	h, err := Build(f.ID, overview, members, wings)
	if err != nil {
		metrics.RecordFleetBuild("inconsistent", 0)
		f.logger.Warn("Fleet data is inconsistent", zap.Error(err))
		return nil, err
	}

	metrics.RecordFleetBuild("success", len(members))
	f.hierarchy = h
	return h, nil
}

// Boss возвращает имя участника с ролью "(Boss)" или пустую строку
func (f *Fleet) Boss(ctx context.Context) (string, error) {
	members, err := f.Members(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		if strings.Contains(m.RoleName, BossMarker) {
			return m.Character.Name, nil
		}
	}
	return "", nil
}

func (f *Fleet) IsFreeMove(ctx context.Context) (bool, error) {
	overview, err := f.Overview(ctx)
	return overview.IsFreeMove, err
}

// IsAdvertised сообщает, зарегистрирован ли флот в списке флотов
func (f *Fleet) IsAdvertised(ctx context.Context) (bool, error) {
	overview, err := f.Overview(ctx)
	return overview.IsRegistered, err
}

func (f *Fleet) CompositionByClass(ctx context.Context) (map[string]int, error) {
	return f.stat(ctx, CompositionByClass)
}

func (f *Fleet) CompositionByCategory(ctx context.Context) (map[string]int, error) {
	return f.stat(ctx, CompositionByCategory)
}

func (f *Fleet) CompositionBySize(ctx context.Context) (map[string]int, error) {
	return f.stat(ctx, CompositionBySize)
}

func (f *Fleet) LocationBySystem(ctx context.Context) (map[string]int, error) {
	return f.stat(ctx, LocationBySystem)
}

func (f *Fleet) LocationDocked(ctx context.Context) (map[string]int, error) {
	return f.stat(ctx, LocationDocked)
}

func (f *Fleet) stat(ctx context.Context, fn func([]MemberEntry) map[string]int) (map[string]int, error) {
	members, err := f.Members(ctx)
	if err != nil {
		return nil, err
	}
	return fn(members), nil
}

// Warnings возвращает предупреждения о структуре построенного флота
func (f *Fleet) Warnings(ctx context.Context) ([]Warning, error) {
	h, err := f.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return Warnings(h), nil
}

// MemberNames возвращает последовательность имен участников.
// Последовательность можно обходить повторно, сеть при этом не используется.
func (f *Fleet) MemberNames(ctx context.Context) (iter.Seq[string], error) {
	members, err := f.Members(ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		for _, m := range members {
			if !yield(m.Character.Name) {
				return
			}
		}
	}, nil
}

// HasMember сообщает, есть ли во флоте участник с таким именем
func (f *Fleet) HasMember(ctx context.Context, name string) (bool, error) {
	names, err := f.MemberNames(ctx)
	if err != nil {
		return false, err
	}
	for n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// SquadCount - количество сквадов по ресурсу wings, не зависит от участников
func (f *Fleet) SquadCount(ctx context.Context) (int, error) {
	_, wings, err := f.loadWings(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, w := range wings {
		total += len(w.Squads)
	}
	return total, nil
}

// MemberCount - количество записей в ресурсе members, включая командиров
func (f *Fleet) MemberCount(ctx context.Context) (int, error) {
	members, err := f.Members(ctx)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// Wings возвращает крылья построенной иерархии в порядке ресурса wings
func (f *Fleet) Wings(ctx context.Context) ([]*Wing, error) {
	h, err := f.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return h.Wings(), nil
}
