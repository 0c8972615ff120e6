package jwt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevocations struct {
	revoked map[string]bool
	err     error
}

func (f fakeRevocations) IsJWTRevoked(ctx context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func newKeyServer(t *testing.T, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pemData)
	}))
	t.Cleanup(server.Close)
	return server
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims CustomClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() CustomClaims {
	return CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "90000001",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		CharacterID:   90000001,
		CharacterName: "Alice",
	}
}

func TestValidator_ValidateToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newKeyServer(t, key)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noJTI := validClaims()
	noJTI.ID = ""

	noCharacter := validClaims()
	noCharacter.CharacterID = 0

	tests := []struct {
		name        string
		token       string
		revocations RevocationChecker
		wantErr     bool
	}{
		{name: "valid", token: signToken(t, key, validClaims())},
		{name: "valid with bearer prefix", token: "Bearer " + signToken(t, key, validClaims())},
		{name: "expired", token: signToken(t, key, expired), wantErr: true},
		{name: "missing jti", token: signToken(t, key, noJTI), wantErr: true},
		{name: "missing character", token: signToken(t, key, noCharacter), wantErr: true},
		{name: "foreign key", token: signToken(t, otherKey, validClaims()), wantErr: true},
		{name: "garbage", token: "not.a.token", wantErr: true},
		{
			name:        "revoked",
			token:       signToken(t, key, validClaims()),
			revocations: fakeRevocations{revoked: map[string]bool{"jti-1": true}},
			wantErr:     true,
		},
		{
			name:        "revocation store unavailable",
			token:       signToken(t, key, validClaims()),
			revocations: fakeRevocations{err: errors.New("redis down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(server.URL, tt.revocations, time.Second)
			require.NoError(t, v.Initialize(context.Background()))

			claims, err := v.ValidateToken(context.Background(), tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(90000001), claims.CharacterID)
			assert.Equal(t, "Alice", claims.CharacterName)
		})
	}
}

func TestValidator_NotInitialized(t *testing.T) {
	v := NewValidator("http://127.0.0.1:0", nil, time.Second)
	_, err := v.ValidateToken(context.Background(), "token")
	assert.EqualError(t, err, "public key not initialized")
}

func TestValidator_InitializeFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "not pem",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("hello"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			assert.Error(t, NewValidator(server.URL, nil, time.Second).Initialize(context.Background()))
		})
	}
}

func TestValidator_RefreshPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := newKeyServer(t, key)

	v := NewValidator(server.URL, nil, time.Second)
	require.NoError(t, v.RefreshPublicKey(context.Background()))

	_, err = v.ValidateToken(context.Background(), signToken(t, key, validClaims()))
	assert.NoError(t, err)
}
