// main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"travel-booking/cmd"
	"travel-booking/internal/cache"
	"travel-booking/internal/data/mirror"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/notify"
	"travel-booking/internal/wire"
	"travel-booking/pkg/database"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	reconcile := flag.Bool("reconcile", false, "rebuild the mirror from the primary store and exit")
	flag.Parse()

	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	repos := repository.NewRepository(db, logger)

	store, closeStore := initMirrorStore(config, logger)
	defer closeStore()

	if *reconcile {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := mirror.NewRepositoryReconciler(store, repos, logger).Rebuild(ctx); err != nil {
			logger.Fatal("Mirror rebuild failed", zap.Error(err))
		}
		logger.Info("Mirror rebuild finished")
		return
	}

	catalogCache, closeCache := initCache(config, logger)
	defer closeCache()

	publisher := initPublisher(config, logger)
	defer publisher.Close()

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go cleanSessions(janitorCtx, repos.Session, logger)

	app := wire.Wiring(repos, config, wire.Deps{
		Mirror:    mirror.NewSyncer(store, config.Mirror.Timeout, logger),
		Cache:     catalogCache,
		Publisher: publisher,
	}, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

// initMirrorStore connects the secondary store. Without MONGODB_URI the mirror lives in memory.
func initMirrorStore(config *utils.Config, logger *zap.Logger) (mirror.Store, func()) {
	if config.Mongo.URI == "" {
		logger.Warn("MONGODB_URI not set, mirroring to memory")
		return mirror.NewMemoryStore(), func() {}
	}

	client, err := database.InitMongo(config.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to mongo", zap.Error(err))
	}

	store := mirror.NewMongoStore(client, config.Mongo.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to ensure mirror indexes", zap.Error(err))
	}

	logger.Info("Mongo connected successfully", zap.String("database", config.Mongo.Database))
	return store, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}

// initCache connects redis for catalog listings. An unreachable redis disables caching.
func initCache(config *utils.Config, logger *zap.Logger) (cache.Cache, func()) {
	if config.Redis.Addr == "" {
		return cache.Noop{}, func() {}
	}

	rc := cache.NewRedisCache(config.Redis)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		_ = rc.Close()
		return cache.Noop{}, func() {}
	}

	logger.Info("Redis connected successfully", zap.String("addr", config.Redis.Addr))
	return rc, func() { _ = rc.Close() }
}

func initPublisher(config *utils.Config, logger *zap.Logger) notify.Publisher {
	if len(config.Kafka.Brokers) == 0 {
		return notify.Noop{}
	}

	logger.Info("Publishing booking events",
		zap.Strings("brokers", config.Kafka.Brokers),
		zap.String("topic", config.Kafka.Topic))
	return notify.NewKafkaProducer(config.Kafka.Brokers, config.Kafka.Topic, logger)
}

func cleanSessions(ctx context.Context, sessions repository.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sessions.CleanExpiredSessions(ctx); err != nil {
				logger.Warn("Session cleanup failed", zap.Error(err))
			}
		}
	}
}
