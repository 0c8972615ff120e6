package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fleetboss/fleet-service/pkg/jwt"
)

const issuer = "fleetboss-auth"

// tokenRequest описывает персонажа, для которого выпускается dev-токен
type tokenRequest struct {
	CharacterID   int64
	CharacterName string
	TTL           time.Duration
}

// loadPrivateKey читает RSA ключ в формате PKCS#1 или PKCS#8
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	keyBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file %s: %w", path, err)
	}

	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM private key from %s", path)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key from %s: %w", path, err)
		}
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key in %s is not RSA", path)
		}
		return rsaKey, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block %q in %s", block.Type, path)
	}
}

// generateToken подписывает сессионный JWT персонажа
func generateToken(key *rsa.PrivateKey, req tokenRequest, now time.Time) (string, error) {
	if req.CharacterID <= 0 {
		return "", fmt.Errorf("character id must be positive, got %d", req.CharacterID)
	}
	if req.CharacterName == "" {
		return "", fmt.Errorf("character name is required")
	}

	claims := &jwt.CustomClaims{
		CharacterID:   req.CharacterID,
		CharacterName: req.CharacterName,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(req.CharacterID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(req.TTL)),
		},
	}

	tokenString, err := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func main() {
	keyPath := flag.String("key", "private_key", "path to the RSA private key of the auth service")
	characterID := flag.Int64("character-id", 0, "EVE character ID")
	characterName := flag.String("character-name", "", "EVE character name")
	ttl := flag.Duration("ttl", 720*time.Hour, "token lifetime")
	out := flag.String("out", "token.jwt", "output file")
	flag.Parse()

	key, err := loadPrivateKey(*keyPath)
	if err != nil {
		log.Fatal(err)
	}

	token, err := generateToken(key, tokenRequest{
		CharacterID:   *characterID,
		CharacterName: *characterName,
		TTL:           *ttl,
	}, time.Now())
	if err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile(*out, []byte(token), 0o600); err != nil {
		log.Fatalf("failed to write token to file %s: %v", *out, err)
	}

	absPath, _ := filepath.Abs(*out)
	fmt.Printf("JWT token for %s (%d) written to %s\n", *characterName, *characterID, absPath)
}
