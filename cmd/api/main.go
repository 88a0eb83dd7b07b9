package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/logger"
	"github.com/xavierca1/ligue-leads/internal/router"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type leadStore interface {
	entity.LeadStore
	handlers.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuração inválida")
	}

	appLogger := logger.Init("leads-api", cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("falha ao abrir store")
	}
	defer closeStore()

	// 2. Eventos + worker
	var (
		publisher usecase.LeadEventPublisher = queue.NoopPublisher{}
		broker    handlers.BrokerStatus
	)
	if cfg.EventsEnabled() {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("falha ao conectar no RabbitMQ")
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ

		worker := queue.NewWorker(rabbitMQ.Ch, newCRM(cfg), newMailer(cfg))
		go func() {
			if err := worker.Start(ctx, queue.QueueName); err != nil {
				log.Error().Err(err).Msg("worker parou")
			}
		}()
	} else {
		log.Warn().Msg("AMQP_URL vazio: eventos de lead desativados")
	}

	// 3. Service + dispatcher
	service := usecase.NewLeadService(store, publisher)
	dispatcher := router.NewDispatcher(service)

	// 4. HTTP
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Dispatcher:     dispatcher,
			Health:         handlers.NewHealthHandler(store, broker),
			Logger:         appLogger,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimiter:    limiter,
			TrustProxy:     cfg.TrustProxy,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("leads-api rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("servidor HTTP caiu")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incompleto")
	}
	log.Info().Msg("leads-api encerrado")
}

func openStore(ctx context.Context, cfg *config.Config) (leadStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewLeadRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		return database.NewRedisStore(client), func() { client.Close() }, nil

	default:
		return database.NewMemoryStore(), func() {}, nil
	}
}

// Retornam interface nil (não ponteiro nil) quando desligados.
func newCRM(cfg *config.Config) queue.CRMClient {
	if !cfg.KommoEnabled() {
		return nil
	}
	return kommo.NewClient(cfg.KommoAPIToken, cfg.KommoBaseURL)
}

func newMailer(cfg *config.Config) queue.WelcomeSender {
	if !cfg.MailEnabled() {
		return nil
	}
	return mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
}
