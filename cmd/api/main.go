// @title        Instroom Web API
// @version      1.0
// @description  Session, signup and role-gated page shells for the Instroom web app.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/instroom/instroom-web/internal/api"
	"github.com/instroom/instroom-web/internal/api/handler"
	"github.com/instroom/instroom-web/internal/core/ports"
	"github.com/instroom/instroom-web/internal/core/service"
	"github.com/instroom/instroom-web/internal/core/session"
	"github.com/instroom/instroom-web/internal/infrastructure/config"
	"github.com/instroom/instroom-web/internal/infrastructure/crypto"
	mongostore "github.com/instroom/instroom-web/internal/infrastructure/db/mongo"
	pgstore "github.com/instroom/instroom-web/internal/infrastructure/db/postgres"
	redisstore "github.com/instroom/instroom-web/internal/infrastructure/db/redis"
	"github.com/instroom/instroom-web/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "instroom-web",
		Env:     cfg.Env,
	})
	if cfg.UsingDevSecret {
		lg.Warn().Msg("SESSION_SECRET not set; using the development secret")
	}

	readiness := map[string]handler.Pinger{}

	users, closeStore, err := openUserStore(ctx, cfg, readiness)
	if err != nil {
		lg.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open user store")
	}
	defer closeStore()

	var revocations session.Revocations
	if cfg.Session.Revocation {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			lg.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()

		revocations = redisstore.NewRevocationStore(rdb)
		readiness["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	codec := session.NewCodec(session.Options{
		Secret:      cfg.Session.Secret,
		Issuer:      cfg.Session.Issuer,
		Secure:      cfg.IsProduction(),
		Revocations: revocations,
	}, logger.Component("session"))

	accounts := service.NewAccountService(users, crypto.NewBcryptHasher(cfg.Session.BcryptCost), logger.Component("accounts"))
	guard := service.NewAuthGuard(service.NewIdentityResolver(codec))

	e := api.NewRouter(api.Deps{
		Accounts:   accounts,
		Sessions:   codec,
		Guard:      guard,
		Readiness:  readiness,
		Logger:     logger.Component("http"),
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	go func() {
		lg.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Bool("revocation", cfg.Session.Revocation).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	lg.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openUserStore connects the configured account store, prepares its schema and
// registers it for readiness checks.
func openUserStore(ctx context.Context, cfg *config.Config, readiness map[string]handler.Pinger) (ports.UserRepository, func(), error) {
	lg := logger.Component("store")

	switch cfg.StoreDriver {
	case config.StorePostgres:
		store, err := pgstore.Connect(ctx, pgstore.Config{
			DSN:      cfg.Postgres.DSN,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		readiness["postgres"] = store
		lg.Info().Msg("connected to postgres")
		return pgstore.NewUserRepository(store.Pool), store.Close, nil

	default:
		store, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongostore.NewUserRepository(store.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeMongo(store, lg)
			return nil, nil, err
		}
		readiness["mongodb"] = store
		lg.Info().Msg("connected to mongodb")
		return repo, func() { closeMongo(store, lg) }, nil
	}
}

func closeMongo(store *mongostore.Store, lg zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		lg.Warn().Err(err).Msg("mongo disconnect failed")
	}
}
