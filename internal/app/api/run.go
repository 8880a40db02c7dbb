package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	inventoryevents "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/events"
	httpapi "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/http"
	inventorymemory "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/memory"
	inventoryobs "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/observability"
	inventorypostgres "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/persistence/postgres"
	inventoryworkflows "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/workflows"
	"github.com/stocklane/inventory-service/internal/domains/inventory/application"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/platform/migrations"
	platformobservability "github.com/stocklane/inventory-service/internal/platform/observability"
	platformpostgres "github.com/stocklane/inventory-service/internal/platform/postgres"
)

// Run boots the inventory HTTP API with observability, repositories, events,
// and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "inventory-api"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger
	cfg := LoadConfig()

	repos, txManager, cleanupRepos := buildRepositories(ctx, cfg, logger)
	defer cleanupRepos()

	serviceOpts := []application.Option{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := inventoryevents.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() { _ = publisher.Close() }()
		serviceOpts = append(serviceOpts, application.WithEventPublisher(publisher))
		logger.Info("Kafka event publishing enabled", slog.String("topic", cfg.KafkaTopic))
	}

	coreService := application.NewService(repos.items, repos.levels, repos.reservations, txManager, serviceOpts...)
	service := inventoryobs.New(
		coreService,
		inventoryobs.WithLogger(logger),
		inventoryobs.WithTracer(instruments.Tracer("internal.inventory.application")),
		inventoryobs.WithMeter(instruments.Meter("internal.inventory.application")),
	)

	var teardown ports.TeardownOrchestrator = inventoryworkflows.NewInlineTeardown(service)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running location teardown inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		teardown = inventoryworkflows.NewTemporalTeardown(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handler := httpapi.NewHandler(service, teardown)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	handler.Register(router)

	addr := ":" + cfg.Port
	logger.Info("inventory API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("inventory API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type repositories struct {
	items        ports.ItemRepository
	levels       ports.LevelRepository
	reservations ports.ReservationRepository
}

func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (repositories, ports.TxManager, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return memoryRepositories()
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return memoryRepositories()
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return memoryRepositories()
	}
	if err := migrations.Run(db); err != nil {
		logger.Warn("failed to run migrations, falling back to memory", slog.String("error", err.Error()))
		_ = sqlDB.Close()
		return memoryRepositories()
	}
	logger.Info("inventory repositories configured with postgres")
	repos := repositories{
		items:        inventorypostgres.NewItemRepository(db),
		levels:       inventorypostgres.NewLevelRepository(db),
		reservations: inventorypostgres.NewReservationRepository(db),
	}
	return repos, inventorypostgres.NewTxManager(db), func() { _ = sqlDB.Close() }
}

func memoryRepositories() (repositories, ports.TxManager, func()) {
	store := inventorymemory.NewStore()
	repos := repositories{
		items:        store.Items(),
		levels:       store.Levels(),
		reservations: store.Reservations(),
	}
	return repos, store, func() {}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
