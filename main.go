package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-platform/domain/repository"
	"content-platform/infrastructure/audit"
	"content-platform/infrastructure/cache"
	"content-platform/infrastructure/configuration"
	"content-platform/infrastructure/logger"
	"content-platform/infrastructure/persistence"
	"content-platform/infrastructure/pubsub"
	"content-platform/infrastructure/realtime"
	"content-platform/infrastructure/servicebus"
	"content-platform/infrastructure/worker"
	httpHandler "content-platform/interfaces/http"
	"content-platform/server"
	"content-platform/usecase"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func main() {
	if len(os.Args) > 1 && os.Args[1] == "enqueue-cleanup" {
		os.Exit(enqueueCleanup())
	}
	os.Exit(run())
}

// enqueueCleanup is the entry point for the external scheduler (cron or a
// k8s CronJob): it submits one cleanup task and exits.
func enqueueCleanup() int {
	cfg := configuration.C
	if cfg.RedisClient.Addr() == "" {
		logger.GetLogger().Error("enqueue-cleanup needs a Redis address")
		return 1
	}
	client := asynq.NewClient(redisClientOpt(cfg.RedisClient))
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := worker.EnqueueCleanup(ctx, client); err != nil {
		logger.GetLogger().WithField("error", err).Error("Cleanup task not enqueued")
		return 1
	}
	return 0
}

func redisClientOpt(r configuration.RedisClient) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     r.Addr(),
		Username: r.Username,
		Password: r.Password,
		DB:       r.DB(),
	}
}

func run() (exitCode int) {
	defer func() {
		if err := recover(); err != nil {
			logger.GetLogger().WithField("error", err).Error("Application panic recovered")
			exitCode = 3
		}
	}()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	cfg := configuration.C
	if err := cfg.Validate(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid configuration")
		return 1
	}

	db, err := persistence.NewDB(cfg.Database)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		return 1
	}
	defer persistence.Close(db)

	if err := persistence.EnsureLifecycleSchema(db); err != nil {
		logger.GetLogger().WithField("error", err).Error("Schema migration failed")
		return 1
	}

	store := persistence.NewStore(db)
	transactor := persistence.NewGormTransactor(db, cfg.Transaction.MaxWait, cfg.Transaction.Timeout)

	redisClient, err := cache.NewCache(ctx, cfg.RedisClient.Addr(), cfg.RedisClient.Username, cfg.RedisClient.Password, cfg.RedisClient.DB())
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis unavailable - counter cache disabled")
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	counter := cache.NewContentCounter(redisClient)

	sinks, closeSinks := initiateSinks(ctx, cfg)

	hub := realtime.NewActionHub()
	actionUsecase := usecase.NewActionUsecase(
		store,
		transactor,
		counter,
		cfg.Lifecycle.TemporaryContentTTL,
		cfg.Lifecycle.ApprovedGrace,
		usecase.WithBroadcaster(hub),
	)
	cleanupUsecase := usecase.NewCleanupUsecase(store.TemporaryContents())
	dispatcher := usecase.NewOutboxDispatcher(store, transactor, counter, cfg.Outbox.MaxAttempts, sinks...)

	router := server.InitiateRouter(
		server.RouterConfig{
			SecretKey:      cfg.App.SecretKey,
			MaintenanceKey: cfg.Maintenance.Key,
			AllowOrigins:   cfg.Cors.AllowOrigins,
		},
		httpHandler.NewActionHandler(actionUsecase),
		httpHandler.NewTemporaryContentHandler(actionUsecase),
		httpHandler.NewMaintenanceHandler(cleanupUsecase, dispatcher, cfg.Outbox.BatchSize),
		hub.Serve,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(ctx, cfg.Outbox.Interval, cfg.Outbox.BatchSize)
	})

	if cfg.Worker.Enabled {
		if cfg.RedisClient.Addr() == "" {
			logger.GetLogger().Warn("Worker enabled without Redis address - not starting")
		} else {
			srv := worker.NewServer(redisClientOpt(cfg.RedisClient), cfg.Worker.Concurrency)
			mux := worker.NewServeMux(cleanupUsecase)
			g.Go(func() error {
				return worker.Run(ctx, srv, mux)
			})
		}
	}

	app := cfg.App
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled, "vendor": cfg.Database.Vendor}).Info("Starting application")
	httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		if app.TLSEnabled {
			cert := app.TLSCertFile
			key := app.TLSKeyFile
			if cert == "" || key == "" {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			} else {
				logger.GetLogger().WithFields(map[string]interface{}{"cert": cert, "key": key}).Info("Serving HTTPS")
				if err := httpServer.ListenAndServeTLS(cert, key); !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			}
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Error("HTTP shutdown failed")
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		exitCode = 2
	}
	closeSinks(shutdownCtx)
	logger.GetLogger().Info("Application stopped")
	return exitCode
}

// initiateSinks builds the outbox event sinks that are configured. A sink
// whose client cannot be created is skipped so approvals keep flowing into
// the outbox. The returned func releases every client it opened.
func initiateSinks(ctx context.Context, cfg configuration.Config) ([]repository.IEventSink, func(context.Context)) {
	var sinks []repository.IEventSink
	var closers []func(context.Context)

	pubSubClient, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID, cfg.Pubsub.CredentialsFile)
	switch {
	case err != nil:
		logger.GetLogger().WithField("error", err).Error("Pub/Sub client initialization failed")
	case pubSubClient != nil:
		eventPubSub := pubsub.NewEventPubSub(pubSubClient, cfg.Pubsub.Topic)
		sinks = append(sinks, eventPubSub)
		closers = append(closers, func(context.Context) {
			if p, ok := eventPubSub.(*pubsub.EventPubSub); ok {
				p.Stop()
			}
			if err := pubSubClient.Close(); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Pub/Sub client close failed")
			}
		})
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace)
	switch {
	case err != nil:
		logger.GetLogger().WithField("error", err).Error("Service Bus client initialization failed")
	case azServiceBusClient != nil:
		sinks = append(sinks, servicebus.NewEventServiceBus(azServiceBusClient, cfg.ServiceBus.Queue))
		closers = append(closers, func(ctx context.Context) {
			if err := azServiceBusClient.Close(ctx); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Service Bus client close failed")
			}
		})
	}

	mongoDb, err := audit.NewMongoDb(ctx, cfg.Database.Mongo.URI)
	switch {
	case err != nil:
		logger.GetLogger().WithField("error", err).Error("MongoDB connection failed - audit disabled")
	case mongoDb != nil:
		name := cfg.Database.Mongo.Name
		if name == "" {
			name = "content_platform"
		}
		sinks = append(sinks, audit.NewActionAudit(mongoDb, name))
		closers = append(closers, func(ctx context.Context) {
			if err := mongoDb.Disconnect(ctx); err != nil {
				logger.GetLogger().WithField("error", err).Warn("MongoDB disconnect failed")
			}
		})
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.GetLogger().WithField("sinks", names).Info("Outbox sinks configured")
	return sinks, func(ctx context.Context) {
		for _, c := range closers {
			c(ctx)
		}
	}
}
