package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fleetboss/fleet-service/internal/adapters"
	"github.com/fleetboss/fleet-service/internal/config"
	"github.com/fleetboss/fleet-service/internal/database"
	"github.com/fleetboss/fleet-service/internal/models"
	"github.com/fleetboss/fleet-service/internal/storage"
	"github.com/fleetboss/fleet-service/pkg/logger"
)

// CharacterSeed is one character entry of a seed file. Token fields are optional;
// a character without a refresh token is stored without SSO credentials.
type CharacterSeed struct {
	ID           int64     `yaml:"id"`
	Name         string    `yaml:"name"`
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token"`
	ExpiresAt    time.Time `yaml:"expires_at"`
}

type CharactersFile struct {
	Characters []CharacterSeed `yaml:"characters"`
}

type ImportStats struct {
	files       int
	characters  int
	credentials int
	failed      int
}

// seedStore is the subset of storage.Repository the loader writes through.
type seedStore struct {
	characters  storage.CharacterRepository
	credentials storage.CredentialRepository
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  characterloader --files a.yaml,b.yaml [--dsn postgres://...]
  characterloader --dir seeds [--dsn postgres://...]

Loads characters and their SSO tokens from YAML files:

  characters:
    - id: 90000001
      name: Alice
      access_token: ...
      refresh_token: ...
      expires_at: 2026-01-01T00:00:00Z
`)
	os.Exit(2)
}

func main() {
	_ = godotenv.Overload(".env", "env.sample")

	var (
		filesList string
		dirFlag   string
		dsn       string
	)

	flag.StringVar(&filesList, "files", "", "Comma-separated list of yaml files to load")
	flag.StringVar(&dirFlag, "dir", "", "Directory to scan for yaml files")
	flag.StringVar(&dsn, "dsn", os.Getenv("FLEET_SVC_DATABASE_URL"), "Postgres connection string")
	flag.Parse()

	if err := logger.Init("info", "console"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if dsn == "" {
		logger.Fatal("DSN is required (set --dsn flag or FLEET_SVC_DATABASE_URL env var / .env file)")
	}

	var yamlFiles []string
	switch {
	case dirFlag != "":
		found, err := collectYAMLFiles(dirFlag)
		if err != nil {
			logger.Fatal("Failed to scan directory", zap.String("dir", dirFlag), zap.Error(err))
		}
		yamlFiles = found
	case filesList != "":
		yamlFiles = strings.Split(filesList, ",")
	default:
		usage()
	}

	db, err := database.NewDB(&config.DatabaseConfig{
		URL:               dsn,
		MaxConnections:    2,
		MaxIdleTime:       time.Minute,
		HealthCheckPeriod: time.Minute,
		PingTimeout:       5 * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repository := storage.NewRepository(&storage.RepositoryDependencies{
		DB:               adapters.NewDatabaseAdapter(db),
		MetricsCollector: adapters.NewMetricsAdapter(),
	})
	store := &seedStore{characters: repository.Character, credentials: repository.Credential}

	ctx := context.Background()
	stats := &ImportStats{}

	for _, path := range yamlFiles {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		stats.files++

		file, err := readCharactersFile(path)
		if err != nil {
			logger.Error("Failed to read seed file", zap.String("file", path), zap.Error(err))
			stats.failed++
			continue
		}

		if err := importCharacters(ctx, store, file.Characters, stats); err != nil {
			logger.Error("Failed to import seed file", zap.String("file", path), zap.Error(err))
		}
	}

	fmt.Println("==== Import summary ====")
	fmt.Printf("Files: %d\n", stats.files)
	fmt.Printf("Characters upserted: %d\n", stats.characters)
	fmt.Printf("Credentials saved: %d\n", stats.credentials)
	fmt.Printf("Failed : %d\n", stats.failed)
}

func collectYAMLFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(d.Name(), ".yaml") || strings.HasSuffix(d.Name(), ".yml")) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func readCharactersFile(path string) (*CharactersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var f CharactersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}

	for i := range f.Characters {
		if err := f.Characters[i].validate(); err != nil {
			return nil, fmt.Errorf("character #%d: %w", i+1, err)
		}
	}
	return &f, nil
}

func (s *CharacterSeed) validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("id must be positive, got %d", s.ID)
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("name is required")
	}
	if s.AccessToken != "" && s.RefreshToken == "" {
		return fmt.Errorf("character %d: access_token without refresh_token", s.ID)
	}
	return nil
}

func (s *CharacterSeed) credential() *models.Credential {
	if s.RefreshToken == "" {
		return nil
	}
	return &models.Credential{
		CharacterID:  s.ID,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	}
}

// importCharacters upserts every character first so the credential UPDATE finds its row.
// It keeps going after a failed entry and returns the first error.
func importCharacters(ctx context.Context, store *seedStore, seeds []CharacterSeed, stats *ImportStats) error {
	var firstErr error
	fail := func(err error) {
		stats.failed++
		if firstErr == nil {
			firstErr = err
		}
	}

	for i := range seeds {
		seed := &seeds[i]

		if err := store.characters.UpsertCharacter(ctx, &models.Character{ID: seed.ID, Name: seed.Name}); err != nil {
			fail(fmt.Errorf("upsert character %d: %w", seed.ID, err))
			continue
		}
		stats.characters++

		cred := seed.credential()
		if cred == nil {
			continue
		}
		if err := store.credentials.SaveCredential(ctx, cred); err != nil {
			fail(fmt.Errorf("save credential %d: %w", seed.ID, err))
			continue
		}
		stats.credentials++
	}

	return firstErr
}
