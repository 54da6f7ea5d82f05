package main

import (
	"context"
	"time"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/cache"
	"github.com/emberdating/ember-server/internal/config"
	"github.com/emberdating/ember-server/internal/db"
	"github.com/emberdating/ember-server/internal/logger"
	"github.com/emberdating/ember-server/internal/match"
	"github.com/emberdating/ember-server/internal/notify"
	"github.com/emberdating/ember-server/internal/server"
	"github.com/emberdating/ember-server/internal/service/chat"
	"github.com/emberdating/ember-server/internal/service/feed"
	"github.com/emberdating/ember-server/internal/service/likes"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	notifier := notify.NewLogGateway(log)
	appCtx := app.New(database, redisCache, notifier, log)
	coordinator := match.NewCoordinator(appCtx)

	registrars := []server.Registrar{
		feed.NewRegistrar(appCtx, time.Duration(cfg.Feed.PoolTTLSeconds)*time.Second),
		likes.NewRegistrar(appCtx, coordinator),
		chat.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
