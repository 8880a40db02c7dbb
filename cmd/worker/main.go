package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	inventorymemory "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/memory"
	inventoryobs "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/observability"
	inventorypostgres "github.com/stocklane/inventory-service/internal/domains/inventory/adapters/persistence/postgres"
	"github.com/stocklane/inventory-service/internal/domains/inventory/application"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	inventoryworkflows "github.com/stocklane/inventory-service/internal/durable/temporal/workflows/inventory"
	"github.com/stocklane/inventory-service/internal/platform/migrations"
	platformobservability "github.com/stocklane/inventory-service/internal/platform/observability"
	platformpostgres "github.com/stocklane/inventory-service/internal/platform/postgres"
	inventoryactivities "github.com/stocklane/inventory-service/internal/platform/temporal/activities/inventory"
)

func main() {
	ctx := context.Background()
	const serviceName = "inventory-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	service, cleanupRepos := buildInventoryService(ctx, logger, instruments)
	defer cleanupRepos()
	activities := inventoryactivities.NewActivities(service)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, inventoryworkflows.LocationTeardownTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(inventoryworkflows.LocationTeardownWorkflow, workflow.RegisterOptions{Name: inventoryworkflows.LocationTeardownWorkflowName})
	w.RegisterActivityWithOptions(activities.TeardownLocations, activity.RegisterOptions{Name: inventoryactivities.TeardownLocationsActivityName})

	logger.Info("worker listening", slog.String("taskQueue", inventoryworkflows.LocationTeardownTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildInventoryService(ctx context.Context, logger *slog.Logger, instruments *platformobservability.Instruments) (ports.Service, func()) {
	var (
		core    *application.Service
		cleanup = func() {}
	)
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, worker falling back to in-memory repositories")
		store := inventorymemory.NewStore()
		core = application.NewService(store.Items(), store.Levels(), store.Reservations(), store)
	} else {
		db, err := platformpostgres.Connect(ctx, dsn)
		if err != nil {
			logger.Error("worker failed to connect to postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := migrations.Run(db); err != nil {
			logger.Error("worker failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		sqlDB, err := db.DB()
		if err != nil {
			logger.Error("worker failed to unwrap postgres connection", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cleanup = func() { _ = sqlDB.Close() }
		logger.Info("worker repositories configured with postgres")
		core = application.NewService(
			inventorypostgres.NewItemRepository(db),
			inventorypostgres.NewLevelRepository(db),
			inventorypostgres.NewReservationRepository(db),
			inventorypostgres.NewTxManager(db),
		)
	}
	service := inventoryobs.New(
		core,
		inventoryobs.WithLogger(logger),
		inventoryobs.WithTracer(instruments.Tracer("internal.inventory.application")),
		inventoryobs.WithMeter(instruments.Meter("internal.inventory.application")),
	)
	return service, cleanup
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
