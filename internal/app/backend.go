// Package app opens the storage backend selected in the configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"walldecor-admin/internal/config"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/repository"
	"walldecor-admin/pkg/database"

	"go.uber.org/zap"
)

// Backend is the repository plus the credential store that lives next to it
type Backend struct {
	Repo        repository.Repository
	Credentials repository.CredentialRepository
	// Seeded is true when the dataset started from model.SeedData
	Seeded bool
	Close  func() error
}

// OpenBackend builds the repository for cfg.Backend.Kind. Mutations signal notifier.
func OpenBackend(ctx context.Context, cfg *config.Config, notifier repository.Notifier, log *zap.Logger) (*Backend, error) {
	loc := cfg.Location()
	opts := []repository.Option{
		repository.WithLocation(loc),
		repository.WithLogger(log.Named("repository")),
	}

	switch cfg.Backend.Kind {
	case config.BackendLocal:
		var seed *model.AppData
		if cfg.Local.Seed {
			seed = model.SeedData(time.Now().In(loc))
		}
		store, err := repository.OpenLocalStore(cfg.Local.DataFile, seed, log.Named("local_store"))
		if err != nil {
			return nil, err
		}
		creds, err := repository.OpenFileCredentialRepo(cfg.Local.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Repo:        repository.New(store, notifier, opts...),
			Credentials: creds,
			Seeded:      cfg.Local.Seed,
			Close:       func() error { return nil },
		}, nil

	case config.BackendSQL:
		db, err := database.Connect(&cfg.Database, log, cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql.DB: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}

		store := repository.NewGormStore(db)
		if cfg.Database.AutoMigrate {
			// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
			if err := store.AutoMigrate(); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		return &Backend{
			Repo:        repository.New(store, notifier, opts...),
			Credentials: repository.NewCredentialRepo(db),
			Close:       sqlDB.Close,
		}, nil

	case config.BackendAPI:
		client, err := repository.NewAPIClient(repository.APIClientConfig{
			BaseURL: cfg.API.BaseURL,
			Token:   cfg.API.Token,
			Timeout: cfg.API.Timeout,
		}, notifier, log.Named("api_client"))
		if err != nil {
			return nil, err
		}
		// logins stay with this instance
		creds, err := repository.OpenFileCredentialRepo(cfg.Local.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Repo:        client,
			Credentials: creds,
			Close:       func() error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Kind)
}
