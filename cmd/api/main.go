package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/yamdb/catalogue-api/internal/api"
	"github.com/yamdb/catalogue-api/internal/core/domain"
	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/internal/core/service"
	"github.com/yamdb/catalogue-api/internal/infrastructure/config"
	"github.com/yamdb/catalogue-api/internal/infrastructure/db"
	httpserver "github.com/yamdb/catalogue-api/internal/infrastructure/http"
	"github.com/yamdb/catalogue-api/internal/infrastructure/http/handlers"
	"github.com/yamdb/catalogue-api/internal/infrastructure/notify"
	"github.com/yamdb/catalogue-api/internal/infrastructure/queue"
	"github.com/yamdb/catalogue-api/pkg/logger"
)

// @title                       YaMDb API
// @version                     1.0
// @description                 Catalogue of titles with user reviews, ratings and comments.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	readiness := map[string]handlers.Pinger{}

	store, err := db.Open(ctx, cfg, logger.Component("migrate"))
	if err != nil {
		return err
	}
	defer store.Close()
	readiness[store.Name] = store.Pinger
	log.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	backend, closeNotifier, err := openNotifier(cfg, readiness)
	if err != nil {
		return err
	}
	defer closeNotifier()

	// Workers outlive the signal context so Stop can drain queued mail.
	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, cfg.Dispatch.BufferSize, backend, logger.Component("dispatcher"))
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	tokens := service.NewTokenService(store.Users, service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	}, logger.Component("tokens"))
	reviews := service.NewReviewService(store.Titles, store.Reviews, logger.Component("reviews"))

	router := api.NewRouter(api.Services{
		Confirmations: service.NewConfirmationService(store.Users, dispatcher, logger.Component("signup")),
		Tokens:        tokens,
		Users:         service.NewUserService(store.Users, logger.Component("users")),
		Categories:    service.NewTaxonomyService(domain.KindCategory, store.Categories, logger.Component("categories")),
		Genres:        service.NewTaxonomyService(domain.KindGenre, store.Genres, logger.Component("genres")),
		Titles:        service.NewTitleService(store.Titles, store.Categories, store.Genres, reviews, logger.Component("titles")),
		Reviews:       reviews,
		Comments:      service.NewCommentService(reviews, store.Comments, logger.Component("comments")),
	}, api.Options{
		AuthRPS:   cfg.RateLimit.AuthRPS,
		AuthBurst: cfg.RateLimit.AuthBurst,
		Readiness: readiness,
	}, logger.Component("http"))

	srv := httpserver.BuildServer(cfg.Port, router, httpserver.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	return httpserver.Serve(ctx, srv, cfg.HTTP.ShutdownTimeout, log)
}

// openNotifier builds the delivery backend the dispatcher feeds.
func openNotifier(cfg *config.Config, readiness map[string]handlers.Pinger) (ports.Notifier, func(), error) {
	switch cfg.NotifierDriver {
	case config.NotifierMailgun:
		return notify.NewMailgunNotifier(cfg.Mailgun.Domain, cfg.Mailgun.APIKey, cfg.Mailgun.Sender), func() {}, nil
	case config.NotifierRabbitMQ:
		pub, err := notify.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return nil, nil, err
		}
		readiness["rabbitmq"] = pub
		return pub, func() { _ = pub.Close() }, nil
	default:
		return notify.NewLogNotifier(logger.Component("mail")), func() {}, nil
	}
}
