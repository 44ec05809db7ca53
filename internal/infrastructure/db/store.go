// Package db selects and opens the configured persistence backend.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/internal/infrastructure/config"
	mongodb "github.com/yamdb/catalogue-api/internal/infrastructure/db/mongo"
	"github.com/yamdb/catalogue-api/internal/infrastructure/db/postgres"
	"github.com/yamdb/catalogue-api/internal/infrastructure/http/handlers"
)

// Store bundles the repositories of one backend with its health check.
type Store struct {
	Users      ports.UserRepository
	Categories ports.TaxonomyRepository
	Genres     ports.TaxonomyRepository
	Titles     ports.TitleRepository
	Reviews    ports.ReviewRepository
	Comments   ports.CommentRepository

	// Name keys the backend in readiness reports.
	Name   string
	Pinger handlers.Pinger
	Close  func()
}

// Open connects the configured store and brings its schema up to date.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, err
		}
		return &Store{
			Users:      mongodb.NewUserRepository(db),
			Categories: mongodb.NewCategoryRepository(db),
			Genres:     mongodb.NewGenreRepository(db),
			Titles:     mongodb.NewTitleRepository(db),
			Reviews:    mongodb.NewReviewRepository(db),
			Comments:   mongodb.NewCommentRepository(db),
			Name:       "mongodb",
			Pinger:     handlers.MongoPinger(db),
			Close:      closeFn,
		}, nil

	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &Store{
			Users:      postgres.NewUserRepository(pool),
			Categories: postgres.NewCategoryRepository(pool),
			Genres:     postgres.NewGenreRepository(pool),
			Titles:     postgres.NewTitleRepository(pool),
			Reviews:    postgres.NewReviewRepository(pool),
			Comments:   postgres.NewCommentRepository(pool),
			Name:       "postgres",
			Pinger:     handlers.PostgresPinger(pool),
			Close:      pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
