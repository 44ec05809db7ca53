// Command mailworker consumes email jobs published by the api when
// NOTIFIER=rabbitmq and delivers them through Mailgun.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"

	"github.com/yamdb/catalogue-api/internal/core/ports"
	"github.com/yamdb/catalogue-api/internal/infrastructure/config"
	redisdb "github.com/yamdb/catalogue-api/internal/infrastructure/db/redis"
	httpserver "github.com/yamdb/catalogue-api/internal/infrastructure/http"
	"github.com/yamdb/catalogue-api/internal/infrastructure/http/handlers"
	"github.com/yamdb/catalogue-api/internal/infrastructure/notify"
	"github.com/yamdb/catalogue-api/pkg/logger"
)

const prefetch = 16

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
		Service: "mailworker",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("mailworker stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readiness := map[string]handlers.Pinger{}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()
	readiness["rabbitmq"] = handlers.PingFunc(func(context.Context) error {
		if conn.IsClosed() {
			return fmt.Errorf("amqp connection closed")
		}
		return nil
	})

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()
	if err := notify.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		return err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}
	deliveries, err := ch.Consume(cfg.RabbitMQ.Queue, "mailworker", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	var dedup notify.Deduper
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		dedup = redisdb.NewDedupChecker(rdb)
		readiness["redis"] = handlers.RedisPinger(rdb)
	}

	var sender ports.Notifier = notify.NewLogNotifier(logger.Component("mail"))
	if cfg.Mailgun.Domain != "" && cfg.Mailgun.APIKey != "" {
		sender = notify.NewMailgunNotifier(cfg.Mailgun.Domain, cfg.Mailgun.APIKey, cfg.Mailgun.Sender)
	} else {
		log.Warn().Msg("mailgun not configured, emails are only logged")
	}

	worker := notify.NewMailWorker(sender, dedup, logger.Component("worker"))
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx, deliveries)
	}()
	log.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("consuming email jobs")

	srv := httpserver.BuildServer(cfg.Port, opsRouter(readiness), httpserver.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	err = httpserver.Serve(ctx, srv, cfg.HTTP.ShutdownTimeout, log)
	cancel()
	<-done
	return err
}

// opsRouter exposes health checks and metrics only.
func opsRouter(readiness map[string]handlers.Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewHealthDependenciesHandler(readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	return e
}
