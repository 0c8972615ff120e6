package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/crest"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
)

const (
	overviewJSON = `{"isFreeMove": true, "isRegistered": false, "isVoiceEnabled": true, "motd": "x up"}`
	membersJSON  = `{"items": [
		{"character": {"id": 1, "name": "Alice"}, "ship": {"id": 1, "name": "Megathron"}, "solarSystem": {"id": 1, "name": "Jita"}, "wingID": -1, "squadID": -1, "roleID": 1, "roleName": "Fleet Commander (Boss)"},
		{"character": {"id": 2, "name": "Bob"}, "ship": {"id": 2, "name": "Guardian"}, "solarSystem": {"id": 1, "name": "Jita"}, "station": {"id": 5, "name": "Jita 4-4"}, "wingID": 3, "squadID": 7, "roleID": 4, "roleName": "Squad Member"},
		{"character": {"id": 3, "name": "Carol"}, "ship": {"id": 3, "name": "Rifter"}, "solarSystem": {"id": 2, "name": "Amarr"}, "wingID": 3, "squadID": 7, "roleID": 3, "roleName": "Squad Commander"}
	]}`
	wingsJSON = `{"items": [{"id": 3, "name": "Alpha", "squadsList": [{"id": 7, "name": "Squad 7"}, {"id": 8, "name": "Squad 8"}]}]}`
)

// fakeFetcher отдает заготовленные ответы и считает обращения к каждому ресурсу
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[crest.Resource]string
	failures map[crest.Resource]error
	calls    map[crest.Resource]int
	tokens   []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		payloads: map[crest.Resource]string{
			crest.ResourceOverview: overviewJSON,
			crest.ResourceMembers:  membersJSON,
			crest.ResourceWings:    wingsJSON,
		},
		failures: map[crest.Resource]error{},
		calls:    map[crest.Resource]int{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, fleetID int64, token string, resource crest.Resource) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[resource]++
	f.tokens = append(f.tokens, token)
	if err, ok := f.failures[resource]; ok {
		return nil, err
	}
	return json.RawMessage(f.payloads[resource]), nil
}

func (f *fakeFetcher) callCount(resource crest.Resource) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[resource]
}

type staticToken struct {
	token string
	err   error
}

func (s staticToken) Token(ctx context.Context) (string, error) {
	return s.token, s.err
}

func newTestFleet(fetcher *fakeFetcher) *Fleet {
	return New(42, 1, fetcher, staticToken{token: "access"}, zap.NewNop())
}

func remoteFailure(resource crest.Resource) error {
	return &internalerrors.RemoteError{FleetID: 42, Resource: string(resource), StatusCode: 403}
}

func TestFleet_LazyFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	f := newTestFleet(fetcher)
	ctx := context.Background()

	// Обзор не загружает участников и крылья
	freeMove, err := f.IsFreeMove(ctx)
	require.NoError(t, err)
	assert.True(t, freeMove)
	assert.Equal(t, 1, fetcher.callCount(crest.ResourceOverview))
	assert.Equal(t, 0, fetcher.callCount(crest.ResourceMembers))
	assert.Equal(t, 0, fetcher.callCount(crest.ResourceWings))

	advertised, err := f.IsAdvertised(ctx)
	require.NoError(t, err)
	assert.False(t, advertised)

	count, err := f.MemberCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = f.CompositionByClass(ctx)
	require.NoError(t, err)
	_, err = f.LocationDocked(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.callCount(crest.ResourceOverview))
	assert.Equal(t, 1, fetcher.callCount(crest.ResourceMembers))
	assert.Equal(t, 0, fetcher.callCount(crest.ResourceWings))
	assert.False(t, f.wings.loaded())
	assert.Equal(t, []string{"access", "access"}, fetcher.tokens)
}

func TestFleet_HierarchyMemoized(t *testing.T) {
	fetcher := newFakeFetcher()
	f := newTestFleet(fetcher)
	ctx := context.Background()

	first, err := f.Hierarchy(ctx)
	require.NoError(t, err)
	second, err := f.Hierarchy(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	wings, err := f.Wings(ctx)
	require.NoError(t, err)
	require.Len(t, wings, 1)
	assert.Equal(t, "Alpha", wings[0].Name())

	warnings, err := f.Warnings(ctx)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Wing Alpha has no commander.", warnings[0].Message)

	assert.Equal(t, 0, fetcher.callCount(crest.ResourceOverview))
	assert.Equal(t, 1, fetcher.callCount(crest.ResourceMembers))
	assert.Equal(t, 1, fetcher.callCount(crest.ResourceWings))
}

func TestFleet_HierarchyWithoutOverview(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failures[crest.ResourceOverview] = remoteFailure(crest.ResourceOverview)
	f := newTestFleet(fetcher)

	// Построение иерархии не зависит от ресурса overview
	h, err := f.Hierarchy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.WingCount())
	assert.False(t, h.IsFreeMove())
	assert.Equal(t, 0, fetcher.callCount(crest.ResourceOverview))
}

func TestFleet_HierarchyUsesLoadedOverview(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.payloads[crest.ResourceOverview] = `{"isFreeMove": true, "isRegistered": true, "motd": ""}`
	f := newTestFleet(fetcher)
	ctx := context.Background()

	require.NoError(t, f.Prefetch(ctx))

	h, err := f.Hierarchy(ctx)
	require.NoError(t, err)
	assert.True(t, h.IsFreeMove())
	assert.True(t, h.IsRegistered())

	for _, r := range crest.Resources {
		assert.Equal(t, 1, fetcher.callCount(r), r)
	}
}

func TestFleet_Accessors(t *testing.T) {
	f := newTestFleet(newFakeFetcher())
	ctx := context.Background()

	boss, err := f.Boss(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", boss)

	squads, err := f.SquadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, squads)

	bySize, err := f.CompositionBySize(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{SizeLarge: 1, SizeMedium: 1, SizeSmall: 1}, bySize)

	byCategory, err := f.CompositionByCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Battleship": 1, "Logistics Cruiser": 1, "Frigate": 1}, byCategory)

	bySystem, err := f.LocationBySystem(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Jita": 2, "Amarr": 1}, bySystem)

	docked, err := f.LocationDocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{DockedBucket: 1, UndockedBucket: 2}, docked)

	raw, err := f.Raw(ctx, crest.ResourceWings)
	require.NoError(t, err)
	assert.JSONEq(t, wingsJSON, string(raw))

	present, err := f.HasMember(ctx, "Carol")
	require.NoError(t, err)
	assert.True(t, present)

	present, err = f.HasMember(ctx, "Mallory")
	require.NoError(t, err)
	assert.False(t, present)
}

func TestFleet_BossAbsent(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.payloads[crest.ResourceMembers] = `{"items": []}`
	f := newTestFleet(fetcher)

	boss, err := f.Boss(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", boss)
}

func TestFleet_MemberNamesRestartable(t *testing.T) {
	fetcher := newFakeFetcher()
	f := newTestFleet(fetcher)

	names, err := f.MemberNames(context.Background())
	require.NoError(t, err)

	want := []string{"Alice", "Bob", "Carol"}
	assert.Equal(t, want, slices.Collect(names))
	assert.Equal(t, want, slices.Collect(names))

	// Ранний выход из обхода
	for name := range names {
		assert.Equal(t, "Alice", name)
		break
	}

	assert.Equal(t, 1, fetcher.callCount(crest.ResourceMembers))
}

func TestFleet_ValidKey(t *testing.T) {
	fetcher := newFakeFetcher()
	assert.True(t, newTestFleet(fetcher).ValidKey(context.Background()))

	fetcher = newFakeFetcher()
	fetcher.failures[crest.ResourceOverview] = remoteFailure(crest.ResourceOverview)
	f := newTestFleet(fetcher)
	assert.False(t, f.ValidKey(context.Background()))

	err := f.Validate(context.Background())
	assert.True(t, errors.Is(err, internalerrors.ErrRemoteUnavailable))
}

func TestFleet_FailureNotMemoized(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failures[crest.ResourceMembers] = remoteFailure(crest.ResourceMembers)
	f := newTestFleet(fetcher)
	ctx := context.Background()

	_, err := f.MemberCount(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerrors.ErrRemoteUnavailable))

	delete(fetcher.failures, crest.ResourceMembers)

	count, err := f.MemberCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, fetcher.callCount(crest.ResourceMembers))
}

func TestFleet_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fakeFetcher)
		tokens  TokenSource
		wantErr error
	}{
		{
			name:    "members unavailable",
			setup:   func(f *fakeFetcher) { f.failures[crest.ResourceMembers] = remoteFailure(crest.ResourceMembers) },
			tokens:  staticToken{token: "access"},
			wantErr: internalerrors.ErrRemoteUnavailable,
		},
		{
			name:    "malformed wings",
			setup:   func(f *fakeFetcher) { f.payloads[crest.ResourceWings] = `{"items": 5}` },
			tokens:  staticToken{token: "access"},
			wantErr: internalerrors.ErrRemoteUnavailable,
		},
		{
			name:    "member in unknown wing",
			setup:   func(f *fakeFetcher) { f.payloads[crest.ResourceWings] = `{"items": []}` },
			tokens:  staticToken{token: "access"},
			wantErr: internalerrors.ErrInconsistentFleetData,
		},
		{
			name:    "credential refresh failed",
			setup:   func(f *fakeFetcher) {},
			tokens:  staticToken{err: &internalerrors.AuthError{CharacterID: 1, Cause: errors.New("invalid_grant")}},
			wantErr: internalerrors.ErrAuthExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newFakeFetcher()
			tt.setup(fetcher)
			f := New(42, 1, fetcher, tt.tokens, zap.NewNop())

			_, err := f.Hierarchy(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			for _, other := range []error{
				internalerrors.ErrAuthExpired,
				internalerrors.ErrRemoteUnavailable,
				internalerrors.ErrInconsistentFleetData,
			} {
				if other != tt.wantErr {
					assert.False(t, errors.Is(err, other), "unexpected kind %v", other)
				}
			}
		})
	}
}

func TestOpener_UsesOwnerToken(t *testing.T) {
	fetcher := newFakeFetcher()
	opener := NewOpener(fetcher, func(characterID int64) TokenSource {
		if characterID == 7 {
			return staticToken{token: "seven"}
		}
		return staticToken{token: "other"}
	}, zap.NewNop())

	f := opener.Open(42, 7)
	assert.Equal(t, int64(42), f.ID)
	assert.Equal(t, int64(7), f.OwnerID)
	require.True(t, f.ValidKey(context.Background()))
	assert.Equal(t, []string{"seven"}, fetcher.tokens)
}
