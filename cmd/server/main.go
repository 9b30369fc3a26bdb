package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"halawa/internal/api"
	"halawa/internal/availability"
	"halawa/internal/calendar"
	"halawa/internal/clock"
	"halawa/internal/config"
	"halawa/internal/domain"
	"halawa/internal/events"
	"halawa/internal/idgen"
	"halawa/internal/logging"
	"halawa/internal/metrics"
	"halawa/internal/models"
	"halawa/internal/repository"
	"halawa/internal/service"
	"halawa/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

type stores struct {
	primary domain.KVStore
	session domain.KVStore
	sqlite  *storage.SQLiteStore
}

func run() error {
	cfg, base, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	logger := base.With().Str("component", "main").Logger()
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := initRedis(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	kv, err := initStores(cfg, redisClient, &base)
	if err != nil {
		return err
	}
	if kv.sqlite != nil {
		defer kv.sqlite.Close()
	}

	loc, err := cfg.Event.Location()
	if err != nil {
		return err
	}
	start, end, err := cfg.Event.Window()
	if err != nil {
		return err
	}
	weekdays, err := cfg.Event.ParsedWeekdays()
	if err != nil {
		return err
	}

	clk := clock.Real{}
	policy := calendar.NewPolicy(start, end, weekdays, loc, clk)
	calc := availability.NewCalculator(cfg.Event.Capacity)

	bus := events.NewEventBus()
	var publisher domain.EventPublisher = bus
	if redisClient != nil {
		bridge := events.NewRedisBridge(redisClient, cfg.Redis.Channel, bus, logging.Component(&base, "events"))
		publisher = bridge
		ready := make(chan struct{})
		go bridge.Listen(ctx, ready)
		select {
		case <-ready:
		case <-time.After(5 * time.Second):
			logger.Warn().Msg("redis bridge not subscribed yet, continuing")
		}
	}

	store := repository.NewBookingStore(kv.primary, kv.session, clk, loc, cfg.Event.RetentionDays, publisher, logging.Component(&base, "booking-store"))
	if bookings, err := store.Load(ctx); err != nil {
		logger.Error().Err(err).Msg("Starting with empty bookings")
	} else {
		logger.Info().Int("dates", len(bookings)).Int("bookings", bookings.Count()).Msg("Bookings loaded")
	}
	service.NewWatcher(store, logging.Component(&base, "watcher")).Attach(bus)

	smallKV := repository.NewFailoverKV(kv.primary, kv.session, clk, logging.Component(&base, "failover"))
	selectionService := service.NewSelectionService(
		repository.NewSelectionRepository(smallKV, logging.Component(&base, "selection-repo")), policy, publisher, logging.Component(&base, "selection"))
	if state, err := selectionService.Restore(ctx); err != nil {
		logger.Warn().Err(err).Msg("restore selection")
	} else if state != nil {
		logger.Info().Str("date", state.Key.String()).Msg("Selection restored")
	}

	bookingService := service.NewBookingService(
		store,
		policy,
		calc,
		idgen.New(models.BookingReferencePrefix),
		clk,
		publisher,
		service.EventSettings{
			Name:         cfg.Event.Name,
			Price:        cfg.Event.Price,
			Currency:     cfg.Event.Currency,
			MaxPartySize: cfg.Event.MaxPartySize,
		},
		logging.Component(&base, "booking"),
	)
	preferencesService := service.NewPreferencesService(repository.NewPreferencesRepository(smallKV))

	if kv.sqlite != nil && cfg.Backup.Enabled {
		backups := storage.NewBackupService(kv.sqlite, cfg.Backup, logging.Component(&base, "backup"))
		go backups.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, api.Deps{
		Bookings:    bookingService,
		Selection:   selectionService,
		Preferences: preferencesService,
		Calendar:    policy,
		Calculator:  calc,
	}, logging.Component(&base, "http"))

	return serve(ctx, httpServer, cfg, &logger)
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
	return cfg, *baseLogger, closer, nil
}

func usesRedis(cfg *config.Config) bool {
	return cfg.Storage.Primary == config.StorageRedis || cfg.Storage.Session == config.StorageRedis
}

// initRedis connects when Redis is configured. It is fatal only when a store depends on it;
// otherwise the process runs without cross-process change notification.
func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.Address == "" {
		return nil, nil
	}

	client := storage.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := storage.Ping(pingCtx, client); err != nil {
		_ = client.Close()
		if usesRedis(cfg) {
			return nil, fmt.Errorf("redis: %w", err)
		}
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil, nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client, nil
}

func initStores(cfg *config.Config, client *redis.Client, logger *zerolog.Logger) (stores, error) {
	var out stores

	switch cfg.Storage.Primary {
	case config.StorageSQLite:
		sqlite, err := storage.NewSQLiteStore(cfg.Storage.SQLitePath, cfg.Storage.QuotaBytes, logging.Component(logger, "sqlite"))
		if err != nil {
			return out, fmt.Errorf("open sqlite store: %w", err)
		}
		out.primary, out.sqlite = sqlite, sqlite
	case config.StorageRedis:
		out.primary = storage.NewRedisStore(client, cfg.Storage.KeyPrefix, 0)
	case config.StorageMemory:
		logging.Component(logger, "storage").Warn().Msg("primary storage is in-memory; bookings are lost on restart")
		out.primary = storage.NewMemoryStore()
	default:
		return out, fmt.Errorf("unknown primary storage %q", cfg.Storage.Primary)
	}

	switch cfg.Storage.Session {
	case config.StorageRedis:
		out.session = storage.NewRedisStore(client, cfg.Storage.KeyPrefix+":session", cfg.Storage.SessionTTLDuration())
	case config.StorageMemory:
		out.session = storage.NewMemoryStore()
	default:
		return out, fmt.Errorf("unknown session storage %q", cfg.Storage.Session)
	}

	logging.Component(logger, "storage").Info().Str("primary", cfg.Storage.Primary).Str("session", cfg.Storage.Session).Msg("storage initialized")
	return out, nil
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

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config; waiting for shutdown signal")
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Str("addr", httpServer.Addr()).Msg("server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}
