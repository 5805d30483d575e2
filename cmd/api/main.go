package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fomeninja/internal/api"
	"fomeninja/internal/calendar"
	"fomeninja/internal/config"
	"fomeninja/internal/database"
	"fomeninja/internal/domain"
	"fomeninja/internal/events"
	"fomeninja/internal/export"
	"fomeninja/internal/logging"
	"fomeninja/internal/metrics"
	"fomeninja/internal/notify"
	"fomeninja/internal/queue"
	"fomeninja/internal/schedule"
	"fomeninja/internal/service"
	"fomeninja/internal/store"
	"fomeninja/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	seed, err := db.LoadAll(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("load reservations")
		return err
	}

	repo := store.New(seed)
	counts, err := db.CountByStatus(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("count reservations")
		return err
	}
	logger.Info().Int("reservations", repo.Len()).Interface("by_status", counts).Msg("store seeded")

	grid := schedule.NewGrid(
		cfg.Restaurant.OpenHour,
		cfg.Restaurant.CloseHour,
		cfg.Restaurant.DefaultCapacity,
		cfg.Restaurant.Capacity,
	)

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := initSyncWorker(cfg, db, redisClient, &logger)
	// Flush tasks stranded on the redis queue by a previous run.
	syncWorker.ProcessOnce(ctx)
	go syncWorker.Run(ctx)

	eventBus := events.NewEventBus()
	metrics.SubscribeReservationEvents(eventBus)
	notifier := notify.NewWhatsAppNotifier(0, &logger)
	go logNotifications(ctx, notifier, &logger)

	svc := service.NewReservationService(repo, grid, eventBus, notifier, syncWorker, &logger)
	projector := calendar.NewProjector(grid)
	exporter := export.NewExporter(cfg.Exports.Path, &logger)

	httpServer := api.NewHTTPServer(cfg.API, repo, svc, projector, grid, exporter, &logger)

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "api-main")

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSyncWorker(cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.SyncWorker {
	memory := queue.NewMemoryQueue(0)

	var taskQueue domain.TaskQueue = memory
	if redisClient != nil {
		taskQueue = queue.NewFailoverQueue(
			queue.NewRedisQueue(redisClient, cfg.Redis.QueueKey),
			memory,
			logger,
		)
	}

	return worker.NewSyncWorker(taskQueue, db, worker.RetryPolicy{}, logger)
}

func logNotifications(ctx context.Context, notifier *notify.WhatsAppNotifier, logger *zerolog.Logger) {
	// Delivery is the messaging collaborator's job; until one is attached,
	// surface the structured requests in the log.
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-notifier.Requests():
			logger.Info().
				Str("request_id", req.ID).
				Int64("reservation_id", req.ReservationID).
				Str("recipient", req.RecipientPhone).
				Str("deep_link", req.DeepLink).
				Msg("confirmation request ready")
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
