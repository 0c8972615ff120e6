package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/config"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/internal/models"
	"github.com/fleetboss/fleet-service/internal/sso"
	"github.com/fleetboss/fleet-service/pkg/metrics"
)

// Store хранит токены персонажей
type Store interface {
	GetCredential(ctx context.Context, characterID int64) (*models.Credential, error)
	SaveCredential(ctx context.Context, credential *models.Credential) error
}

// Refresher обменивает refresh token на новый access token
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*sso.TokenResponse, error)
}

// Locker - межпроцессная блокировка обновления токена одного персонажа
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// Options задает параметры обновления токенов
type Options struct {
	// RefreshMargin - токен обновляется, если до истечения осталось меньше
	RefreshMargin time.Duration
	// TokenLifetime - срок действия нового токена, отсчитывается от момента обновления
	TokenLifetime time.Duration
	LockTTL       time.Duration
	Now           func() time.Time
}

// OptionsFromConfig собирает Options из секции sso
func OptionsFromConfig(cfg config.SSOConfig) Options {
	return Options{
		RefreshMargin: cfg.RefreshMargin,
		TokenLifetime: cfg.TokenLifetime,
		LockTTL:       cfg.LockTTL,
		Now:           time.Now,
	}
}

// Manager выдает Provider на каждого персонажа.
// Provider одного персонажа общий для всех запросов процесса.
type Manager struct {
	store     Store
	refresher Refresher
	locker    Locker
	opts      Options
	logger    *zap.Logger

	mu        sync.Mutex
	providers map[int64]*Provider
}

// NewManager создает менеджер токенов. locker может быть nil для одного экземпляра сервиса.
func NewManager(store Store, refresher Refresher, locker Locker, opts Options, logger *zap.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if locker == nil {
		locker = localLocker{}
	}
	return &Manager{
		store:     store,
		refresher: refresher,
		locker:    locker,
		opts:      opts,
		logger:    logger,
		providers: make(map[int64]*Provider),
	}
}

// For возвращает Provider персонажа
func (m *Manager) For(characterID int64) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.providers[characterID]
	if !ok {
		p = &Provider{characterID: characterID, manager: m}
		m.providers[characterID] = p
	}
	return p
}

// Provider выдает действующий access token одного персонажа
type Provider struct {
	characterID int64
	manager     *Manager

	mu      sync.Mutex
	current *models.Credential
}

// Token возвращает access token, при необходимости обновляя его через SSO.
// Может выполнять сетевой запрос. Ошибка обновления возвращается как AuthError,
// сохраненный токен при этом не изменяется.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.manager

	if p.current == nil {
		stored, err := m.store.GetCredential(ctx, p.characterID)
		if err != nil {
			return "", &internalerrors.AuthError{CharacterID: p.characterID, Cause: err}
		}
		p.current = stored
	}

	if p.fresh(p.current) {
		return p.current.AccessToken, nil
	}

	refreshed, err := p.refresh(ctx)
	if err != nil {
		metrics.RecordTokenRefresh("failure")
		m.logger.Error("Failed to refresh character token",
			zap.Int64("character_id", p.characterID),
			zap.Error(err))
		return "", &internalerrors.AuthError{CharacterID: p.characterID, Cause: err}
	}

	p.current = refreshed
	return refreshed.AccessToken, nil
}

func (p *Provider) fresh(c *models.Credential) bool {
	return c.Remaining(p.manager.opts.Now()) >= p.manager.opts.RefreshMargin
}

// refresh обновляет токен под блокировкой персонажа.
// После захвата блокировки запись перечитывается: другой экземпляр мог уже обновить токен.
func (p *Provider) refresh(ctx context.Context) (*models.Credential, error) {
	m := p.manager

	release, err := m.locker.Acquire(ctx, lockKey(p.characterID), m.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	defer release()

	stored, err := m.store.GetCredential(ctx, p.characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload credential: %w", err)
	}
	if p.fresh(stored) {
		metrics.RecordTokenRefresh("reused")
		return stored, nil
	}

	token, err := m.refresher.Refresh(ctx, stored.RefreshToken)
	if err != nil {
		return nil, err
	}

	now := m.opts.Now()
	updated := *stored
	updated.AccessToken = token.AccessToken
	updated.RefreshToken = token.RefreshToken
	updated.ExpiresAt = now.Add(m.opts.TokenLifetime)
	updated.UpdatedAt = now

	if err := m.store.SaveCredential(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save refreshed credential: %w", err)
	}

	metrics.RecordTokenRefresh("success")
	m.logger.Info("Character token refreshed",
		zap.Int64("character_id", p.characterID),
		zap.Time("expires_at", updated.ExpiresAt))

	return &updated, nil
}

func lockKey(characterID int64) string {
	return fmt.Sprintf("fleet-service:credential-refresh:%d", characterID)
}

// localLocker используется без Redis: Provider.mu уже сериализует обновления в процессе
type localLocker struct{}

func (localLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	return func() {}, nil
}
