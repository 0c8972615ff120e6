package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetboss/fleet-service/internal/auth"
	"github.com/fleetboss/fleet-service/internal/config"
	"github.com/fleetboss/fleet-service/internal/crest"
	internalerrors "github.com/fleetboss/fleet-service/internal/errors"
	"github.com/fleetboss/fleet-service/internal/fleet"
	"github.com/fleetboss/fleet-service/internal/models"
	"github.com/fleetboss/fleet-service/internal/storage"
)

const (
	testFleetID = int64(1001)

	overviewJSON = `{"isFreeMove": false, "isRegistered": true, "isVoiceEnabled": false, "motd": ""}`
	membersJSON  = `{"items": [
		{"character": {"id": 1, "name": "Alice"}, "ship": {"id": 1, "name": "Megathron"}, "solarSystem": {"id": 1, "name": "Jita"}, "wingID": -1, "squadID": -1, "roleID": 1, "roleName": "Fleet Commander (Boss)"},
		{"character": {"id": 2, "name": "Bob"}, "ship": {"id": 2, "name": "Guardian"}, "solarSystem": {"id": 1, "name": "Jita"}, "station": {"id": 5, "name": "Jita 4-4"}, "wingID": 3, "squadID": 7, "roleID": 4, "roleName": "Squad Member"}
	]}`
	wingsJSON = `{"items": [{"id": 3, "name": "Alpha", "squadsList": [{"id": 7, "name": "Squad 7"}]}]}`
)

var (
	alice = &auth.Viewer{CharacterID: 1, CharacterName: "Alice"}
	bob   = &auth.Viewer{CharacterID: 2, CharacterName: "Bob"}
	dave  = &auth.Viewer{CharacterID: 9, CharacterName: "Dave"}
)

// MockFleetAccessRepository - мок для FleetAccessRepository
type MockFleetAccessRepository struct {
	mock.Mock
}

func (m *MockFleetAccessRepository) GetFleetAccess(ctx context.Context, fleetID int64) (*models.FleetAccess, error) {
	args := m.Called(ctx, fleetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FleetAccess), args.Error(1)
}

func (m *MockFleetAccessRepository) SaveFleetAccess(ctx context.Context, access *models.FleetAccess) error {
	args := m.Called(ctx, access)
	return args.Error(0)
}

func (m *MockFleetAccessRepository) HasViewer(ctx context.Context, fleetID, characterID int64) (bool, error) {
	args := m.Called(ctx, fleetID, characterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFleetAccessRepository) AddViewer(ctx context.Context, fleetID, characterID int64) error {
	args := m.Called(ctx, fleetID, characterID)
	return args.Error(0)
}

func (m *MockFleetAccessRepository) RemoveViewer(ctx context.Context, fleetID, characterID int64) error {
	args := m.Called(ctx, fleetID, characterID)
	return args.Error(0)
}

func (m *MockFleetAccessRepository) ListViewers(ctx context.Context, fleetID int64) ([]models.Character, error) {
	args := m.Called(ctx, fleetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Character), args.Error(1)
}

// MockCharacterRepository - мок для CharacterRepository
type MockCharacterRepository struct {
	mock.Mock
}

func (m *MockCharacterRepository) GetCharacter(ctx context.Context, characterID int64) (*models.Character, error) {
	args := m.Called(ctx, characterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Character), args.Error(1)
}

func (m *MockCharacterRepository) UpsertCharacter(ctx context.Context, character *models.Character) error {
	args := m.Called(ctx, character)
	return args.Error(0)
}

// keyFetcher отвечает только на токены персонажей из списка valid
type keyFetcher struct {
	mu    sync.Mutex
	valid map[string]bool
	calls int
}

func newKeyFetcher(validOwners ...int64) *keyFetcher {
	f := &keyFetcher{valid: map[string]bool{}}
	for _, id := range validOwners {
		f.valid[tokenFor(id)] = true
	}
	return f
}

func (f *keyFetcher) Fetch(ctx context.Context, fleetID int64, token string, resource crest.Resource) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if !f.valid[token] {
		return nil, &internalerrors.RemoteError{FleetID: fleetID, Resource: string(resource), StatusCode: 403}
	}
	switch resource {
	case crest.ResourceOverview:
		return json.RawMessage(overviewJSON), nil
	case crest.ResourceMembers:
		return json.RawMessage(membersJSON), nil
	default:
		return json.RawMessage(wingsJSON), nil
	}
}

func (f *keyFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type ownerToken int64

func (t ownerToken) Token(ctx context.Context) (string, error) {
	return tokenFor(int64(t)), nil
}

func tokenFor(characterID int64) string {
	return fmt.Sprintf("token-%d", characterID)
}

type testEnv struct {
	access     *MockFleetAccessRepository
	characters *MockCharacterRepository
	fetcher    *keyFetcher
	service    FleetService
}

func newTestEnv(validOwners ...int64) *testEnv {
	env := &testEnv{
		access:     &MockFleetAccessRepository{},
		characters: &MockCharacterRepository{},
		fetcher:    newKeyFetcher(validOwners...),
	}

	opener := fleet.NewOpener(env.fetcher, func(characterID int64) fleet.TokenSource {
		return ownerToken(characterID)
	}, zap.NewNop())

	parser := crest.NewClient(config.CRESTConfig{BaseURL: "https://crest-tq.eveonline.com", Timeout: time.Second}, zap.NewNop())

	env.service = NewFleetService(&ServiceDependencies{
		Repository: &storage.Repository{Character: env.characters, FleetAccess: env.access},
		Fleets:     opener,
		URLParser:  parser,
		Logger:     zap.NewNop(),
	})
	return env
}

func TestViewFleet_NewFleetOwnedByViewer(t *testing.T) {
	env := newTestEnv(alice.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).Return(nil, nil)
	env.access.On("SaveFleetAccess", ctx, mock.MatchedBy(func(a *models.FleetAccess) bool {
		return a.FleetID == testFleetID && a.OwnerID == alice.CharacterID && !a.FleetAccess
	})).Return(nil)
	env.access.On("ListViewers", ctx, testFleetID).Return([]models.Character{{ID: 2, Name: "Bob"}}, nil)

	view, err := env.service.ViewFleet(ctx, alice, testFleetID)
	require.NoError(t, err)

	assert.True(t, view.IsOwner)
	assert.Equal(t, alice.CharacterID, view.OwnerID)
	assert.Equal(t, "Alice", view.Boss)
	assert.Equal(t, &models.MemberView{ID: 1, Name: "Alice"}, view.Commander)
	assert.True(t, view.IsAdvertised)
	assert.False(t, view.IsFreeMove)
	assert.Equal(t, 2, view.MemberCount)
	assert.Equal(t, 1, view.SquadCount)

	require.Len(t, view.Wings, 1)
	require.Len(t, view.Wings[0].Squads, 1)
	assert.Equal(t, []models.MemberView{{ID: 2, Name: "Bob"}}, view.Wings[0].Squads[0].Members)
	assert.Equal(t, []models.CountBucket{{Name: "Jita", Count: 2}}, view.Location.BySystem)

	// Сквад без командира с одним участником
	require.Len(t, view.Warnings, 1)
	assert.Equal(t, "Squad Squad 7 of wing Alpha has no commander.", view.Warnings[0].Message)

	require.NotNil(t, view.Settings)
	assert.False(t, view.Settings.FleetAccess)
	assert.Equal(t, []models.Character{{ID: 2, Name: "Bob"}}, view.Settings.Viewers)

	env.access.AssertExpectations(t)
}

func TestViewFleet_DeniedWithoutFleetAccess(t *testing.T) {
	env := newTestEnv(alice.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).
		Return(&models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID}, nil)
	env.access.On("HasViewer", ctx, testFleetID, dave.CharacterID).Return(false, nil)

	_, err := env.service.ViewFleet(ctx, dave, testFleetID)
	assert.True(t, errors.Is(err, internalerrors.ErrFleetAccessDenied))
	assert.Zero(t, env.fetcher.callCount())
	env.access.AssertNotCalled(t, "SaveFleetAccess", mock.Anything, mock.Anything)
}

func TestViewFleet_FleetMemberWithFleetAccess(t *testing.T) {
	env := newTestEnv(alice.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).
		Return(&models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID, FleetAccess: true}, nil)
	env.access.On("HasViewer", ctx, testFleetID, bob.CharacterID).Return(false, nil)
	env.access.On("SaveFleetAccess", ctx, mock.MatchedBy(func(a *models.FleetAccess) bool {
		return a.OwnerID == alice.CharacterID && a.FleetAccess
	})).Return(nil)

	view, err := env.service.ViewFleet(ctx, bob, testFleetID)
	require.NoError(t, err)

	assert.False(t, view.IsOwner)
	assert.Nil(t, view.Settings)
	env.access.AssertNotCalled(t, "ListViewers", mock.Anything, mock.Anything)
}

func TestViewFleet_NonMemberWithFleetAccess(t *testing.T) {
	env := newTestEnv(alice.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).
		Return(&models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID, FleetAccess: true}, nil)
	env.access.On("HasViewer", ctx, testFleetID, dave.CharacterID).Return(false, nil)
	env.access.On("SaveFleetAccess", ctx, mock.Anything).Return(nil)

	_, err := env.service.ViewFleet(ctx, dave, testFleetID)
	assert.True(t, errors.Is(err, internalerrors.ErrFleetAccessDenied))
}

func TestViewFleet_ExplicitViewerNeedNotBeMember(t *testing.T) {
	env := newTestEnv(alice.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).
		Return(&models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID}, nil)
	env.access.On("HasViewer", ctx, testFleetID, dave.CharacterID).Return(true, nil)
	env.access.On("SaveFleetAccess", ctx, mock.Anything).Return(nil)

	view, err := env.service.ViewFleet(ctx, dave, testFleetID)
	require.NoError(t, err)
	assert.Equal(t, alice.CharacterID, view.OwnerID)
}

func TestViewFleet_FallsBackToViewerKey(t *testing.T) {
	// Ключ владельца больше не читает флот, ключ зрителя читает
	env := newTestEnv(bob.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).
		Return(&models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID}, nil)
	env.access.On("HasViewer", ctx, testFleetID, bob.CharacterID).Return(true, nil)
	env.access.On("SaveFleetAccess", ctx, mock.MatchedBy(func(a *models.FleetAccess) bool {
		return a.OwnerID == bob.CharacterID
	})).Return(nil).Once()
	env.access.On("ListViewers", ctx, testFleetID).Return([]models.Character{}, nil)

	view, err := env.service.ViewFleet(ctx, bob, testFleetID)
	require.NoError(t, err)

	assert.Equal(t, bob.CharacterID, view.OwnerID)
	assert.True(t, view.IsOwner)
	env.access.AssertExpectations(t)
}

func TestViewFleet_NoValidKey(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).
		Return(&models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID}, nil)
	env.access.On("HasViewer", ctx, testFleetID, bob.CharacterID).Return(true, nil)

	_, err := env.service.ViewFleet(ctx, bob, testFleetID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalerrors.ErrRemoteUnavailable))

	// Обзор запрошен по одному разу для владельца и зрителя
	assert.Equal(t, 2, env.fetcher.callCount())
	env.access.AssertNotCalled(t, "SaveFleetAccess", mock.Anything, mock.Anything)
}

func TestViewFleet_StorageError(t *testing.T) {
	env := newTestEnv(alice.CharacterID)
	ctx := context.Background()

	env.access.On("GetFleetAccess", ctx, testFleetID).Return(nil, errors.New("connection reset"))

	_, err := env.service.ViewFleet(ctx, alice, testFleetID)
	assert.ErrorContains(t, err, "connection reset")
}

func TestRawResource_UsesViewerKey(t *testing.T) {
	env := newTestEnv(bob.CharacterID)
	ctx := context.Background()

	raw, err := env.service.RawResource(ctx, bob, testFleetID, crest.ResourceWings)
	require.NoError(t, err)
	assert.JSONEq(t, wingsJSON, string(raw))

	_, err = env.service.RawResource(ctx, alice, testFleetID, crest.ResourceMembers)
	assert.True(t, errors.Is(err, internalerrors.ErrRemoteUnavailable))
}

func TestUpdateSettings(t *testing.T) {
	allow := true
	viewerID := int64(2)
	unknownID := int64(77)

	tests := []struct {
		name    string
		viewer  *auth.Viewer
		access  *models.FleetAccess
		req     *models.FleetSettingsRequest
		setup   func(env *testEnv)
		wantErr error
		check   func(t *testing.T, resp *models.FleetSettingsResponse)
	}{
		{
			name:    "unknown fleet",
			viewer:  alice,
			req:     &models.FleetSettingsRequest{AllowFleet: &allow},
			wantErr: internalerrors.ErrFleetAccessDenied,
		},
		{
			name:    "not owner",
			viewer:  bob,
			access:  &models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID},
			req:     &models.FleetSettingsRequest{AllowFleet: &allow},
			wantErr: internalerrors.ErrFleetAccessDenied,
		},
		{
			name:   "allow fleet wins over other actions",
			viewer: alice,
			access: &models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID},
			req:    &models.FleetSettingsRequest{AllowFleet: &allow, AddViewer: &viewerID},
			setup: func(env *testEnv) {
				env.access.On("SaveFleetAccess", mock.Anything, mock.MatchedBy(func(a *models.FleetAccess) bool {
					return a.FleetAccess && a.OwnerID == alice.CharacterID
				})).Return(nil)
			},
			check: func(t *testing.T, resp *models.FleetSettingsResponse) {
				assert.True(t, resp.Success)
				assert.Nil(t, resp.Viewer)
			},
		},
		{
			name:   "add viewer",
			viewer: alice,
			access: &models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID},
			req:    &models.FleetSettingsRequest{AddViewer: &viewerID},
			setup: func(env *testEnv) {
				env.characters.On("GetCharacter", mock.Anything, viewerID).Return(&models.Character{ID: viewerID, Name: "Bob"}, nil)
				env.access.On("AddViewer", mock.Anything, testFleetID, viewerID).Return(nil)
			},
			check: func(t *testing.T, resp *models.FleetSettingsResponse) {
				require.NotNil(t, resp.Viewer)
				assert.Equal(t, "Bob", resp.Viewer.Name)
			},
		},
		{
			name:   "add unknown viewer",
			viewer: alice,
			access: &models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID},
			req:    &models.FleetSettingsRequest{AddViewer: &unknownID},
			setup: func(env *testEnv) {
				env.characters.On("GetCharacter", mock.Anything, unknownID).Return(nil, internalerrors.ErrCharacterNotFound)
			},
			wantErr: internalerrors.ErrCharacterNotFound,
		},
		{
			name:   "remove viewer",
			viewer: alice,
			access: &models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID},
			req:    &models.FleetSettingsRequest{RemoveViewer: &viewerID},
			setup: func(env *testEnv) {
				env.characters.On("GetCharacter", mock.Anything, viewerID).Return(&models.Character{ID: viewerID, Name: "Bob"}, nil)
				env.access.On("RemoveViewer", mock.Anything, testFleetID, viewerID).Return(nil)
			},
			check: func(t *testing.T, resp *models.FleetSettingsResponse) {
				assert.True(t, resp.Success)
			},
		},
		{
			name:    "no action",
			viewer:  alice,
			access:  &models.FleetAccess{FleetID: testFleetID, OwnerID: alice.CharacterID},
			req:     &models.FleetSettingsRequest{},
			wantErr: internalerrors.ErrNoSettingsAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			if tt.access != nil {
				env.access.On("GetFleetAccess", mock.Anything, testFleetID).Return(tt.access, nil)
			} else {
				env.access.On("GetFleetAccess", mock.Anything, testFleetID).Return(nil, nil)
			}
			if tt.setup != nil {
				tt.setup(env)
			}

			resp, err := env.service.UpdateSettings(context.Background(), tt.viewer, testFleetID, tt.req)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.check(t, resp)
			env.access.AssertExpectations(t)
			env.characters.AssertExpectations(t)
		})
	}
}

func TestResolveFleetURL(t *testing.T) {
	env := newTestEnv()

	resp, err := env.service.ResolveFleetURL("https://crest-tq.eveonline.com/fleets/1001/")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), resp.FleetID)
	assert.Equal(t, "/fleets/1001", resp.Path)

	resp, err = env.service.ResolveFleetURL(" 1001 ")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), resp.FleetID)

	_, err = env.service.ResolveFleetURL("https://example.com/fleets/1001/")
	assert.True(t, errors.Is(err, internalerrors.ErrInvalidFleetURL))
}
