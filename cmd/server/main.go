// @title                       Member System API
// @version                     1.0
// @description                 Member registration, login and role-based access.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/member-system/internal/api"
	"github.com/99minutos/member-system/internal/core/ports"
	"github.com/99minutos/member-system/internal/core/service"
	"github.com/99minutos/member-system/internal/infrastructure/db/mongo"
	"github.com/99minutos/member-system/internal/infrastructure/db/redis"
	"github.com/99minutos/member-system/internal/infrastructure/http/handlers"
	"github.com/99minutos/member-system/internal/infrastructure/queue"
	"github.com/99minutos/member-system/internal/pkg/config"
	"github.com/99minutos/member-system/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "member-system",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "member-system",
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	memberRepo := mongo.NewMemberRepository(db)
	if err := memberRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	eventRepo := mongo.NewEventRepository(db)
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not created")
	}

	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL(), nil)

	var (
		rdb     *goredis.Client
		revoker ports.TokenRevoker
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, token revocation disabled")
		} else {
			defer rdb.Close()
			revoker = redis.NewRevocationStore(rdb, cfg.JWT.TTL())
		}
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewEventService(eventRepo, log), log)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	opts := []service.MemberOption{service.WithEventPublisher(dispatcher)}
	if revoker != nil {
		opts = append(opts, service.WithRevoker(revoker))
	}
	members := service.NewMemberService(memberRepo, tokens, log, opts...)

	e := api.NewRouter(api.Deps{
		Members:   members,
		Tokens:    tokens,
		Revoker:   revoker,
		Readiness: handlers.NewHealthDependenciesHandler(db, rdb).Readiness,
		Log:       log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
