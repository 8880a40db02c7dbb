package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	inventoryworkflows "github.com/stocklane/inventory-service/internal/durable/temporal/workflows/inventory"
)

var (
	_ ports.TeardownOrchestrator = (*TemporalTeardown)(nil)
	_ ports.TeardownOrchestrator = (*InlineTeardown)(nil)
)

// TemporalTeardown starts location teardown workflows on a Temporal cluster.
type TemporalTeardown struct {
	client    client.Client
	taskQueue string
}

// NewTemporalTeardown wires a Temporal client into the orchestrator.
func NewTemporalTeardown(c client.Client) *TemporalTeardown {
	return &TemporalTeardown{client: c, taskQueue: inventoryworkflows.LocationTeardownTaskQueue}
}

// TeardownLocations starts the durable teardown workflow and waits for it.
// The workflow ID is derived from the sorted location set, so a concurrent
// teardown of the same locations attaches to the running execution instead of
// starting a second one.
func (o *TemporalTeardown) TeardownLocations(ctx context.Context, locationIDs []string) (*ports.TeardownResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal teardown workflows not configured")
	}
	workflowID := buildTeardownWorkflowID(locationIDs)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		inventoryworkflows.LocationTeardownWorkflowName,
		inventoryworkflows.LocationTeardownWorkflowInput{LocationIDs: locationIDs, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			return teardownResultFromRun(ctx, existingRun)
		}
		return nil, err
	}
	return teardownResultFromRun(ctx, run)
}

func teardownResultFromRun(ctx context.Context, run client.WorkflowRun) (*ports.TeardownResult, error) {
	var result inventoryworkflows.LocationTeardownWorkflowResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, err
	}
	return &ports.TeardownResult{
		LevelIDs:       result.LevelIDs,
		ReservationIDs: result.ReservationIDs,
	}, nil
}

// InlineTeardown executes the service directly without Temporal, useful for
// tests or dev fallbacks.
type InlineTeardown struct {
	service ports.Service
}

// NewInlineTeardown wraps the inventory service for synchronous execution.
func NewInlineTeardown(service ports.Service) *InlineTeardown {
	return &InlineTeardown{service: service}
}

// TeardownLocations delegates to the application service without durable
// orchestration.
func (o *InlineTeardown) TeardownLocations(ctx context.Context, locationIDs []string) (*ports.TeardownResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline teardown workflows not configured")
	}
	result, err := o.service.DeleteLevelsByLocations(ctx, locationIDs)
	if err != nil {
		return nil, err
	}
	return &ports.TeardownResult{
		LevelIDs:       result.LevelIDs,
		ReservationIDs: result.ReservationIDs,
	}, nil
}

func buildTeardownWorkflowID(locationIDs []string) string {
	sorted := make([]string, 0, len(locationIDs))
	for _, id := range locationIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			sorted = append(sorted, trimmed)
		}
	}
	sort.Strings(sorted)
	if len(sorted) == 0 {
		return fmt.Sprintf("location-teardown-empty-%d", time.Now().UnixNano())
	}
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	// First 16 hex chars keep workflow IDs readable while remaining deterministic.
	return "location-teardown-" + hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanContext := span.SpanContext()
	if !spanContext.IsValid() {
		return ""
	}
	return spanContext.TraceID().String()
}
