// Package app wires configuration, storage, services and transports together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/trogers1052/carteira-service/internal/api"
	"github.com/trogers1052/carteira-service/internal/config"
	"github.com/trogers1052/carteira-service/internal/database"
	"github.com/trogers1052/carteira-service/internal/filestore"
	"github.com/trogers1052/carteira-service/internal/kafka"
	"github.com/trogers1052/carteira-service/internal/portfolio"
	"github.com/trogers1052/carteira-service/internal/redisstore"
	"github.com/trogers1052/carteira-service/internal/repository"
	"github.com/trogers1052/carteira-service/internal/scheduler"
	"github.com/trogers1052/carteira-service/internal/store"
)

// App is the assembled service
type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Store     store.Gateway
	Portfolio *portfolio.Service
	Handler   http.Handler
	Producer  *kafka.Producer
	Consumer  *kafka.Consumer
	Scheduler *scheduler.Scheduler
}

// OpenGateway opens the document store selected by cfg.Store.Backend
func OpenGateway(ctx context.Context, cfg *config.Config) (store.Gateway, error) {
	switch cfg.Store.Backend {
	case config.BackendFile:
		s, err := filestore.Open(cfg.Store.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return s, nil

	case config.BackendSQLite:
		db, err := database.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil

	case config.BackendPostgres:
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil

	case config.BackendRedis:
		return redisstore.New(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
}

// New builds every component from cfg
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	gw, err := OpenGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", cfg.Store.Backend).Msg("document store ready")

	a := &App{Config: cfg, Log: log, Store: gw}

	var publisher portfolio.EventPublisher
	if cfg.Kafka.Enabled {
		a.Producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		publisher = a.Producer
	}

	positions := repository.NewPositions(gw)
	a.Portfolio = portfolio.NewService(positions, repository.NewTrades(gw), publisher, log)

	if cfg.Kafka.Enabled {
		a.Consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TradesTopic, cfg.Kafka.GroupID, a.Portfolio, log)
	}

	handler := api.NewHandler(api.Config{
		Portfolio: a.Portfolio,
		Passivos:  repository.NewPassivos(gw),
		RendaFixa: repository.NewRendaFixa(gw),
		Positions: positions,
		Proventos: repository.NewProventos(gw),
		Store:     gw,
		Backend:   cfg.Store.Backend,
		Log:       log,
	})
	a.Handler = api.SetupRoutes(handler, cfg.Server.CORSAllowedOrigins)

	a.Scheduler = scheduler.New(log)
	if cfg.Scheduler.RecalculateSchedule != "" {
		job := scheduler.NewRecalculateWeightsJob(a.Portfolio, 0, log)
		if err := a.Scheduler.AddJob(cfg.Scheduler.RecalculateSchedule, job); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to register %s job: %w", job.Name(), err)
		}
	}

	return a, nil
}

// Close releases the store and the Kafka clients
func (a *App) Close() error {
	var errs []error
	if a.Consumer != nil {
		if err := a.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka consumer: %w", err))
		}
	}
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka producer: %w", err))
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
