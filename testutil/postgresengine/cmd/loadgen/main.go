package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/alexandrebha/cybook/circulation/oteladapters"
	"github.com/alexandrebha/cybook/circulation/postgresengine"
	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/library/shared/shell/config"
)

const (
	defaultRate            = 30
	defaultScenarioWeights = "10,90" // shelving, lending
	instrumentationName    = "cybook-load-generator"
)

type Config struct {
	Rate                 int
	ObservabilityEnabled bool
	ScenarioWeights      []int
}

// ObservabilityConfig holds the observability adapters for the engine and the command handlers.
type ObservabilityConfig struct {
	Logger           shell.Logger
	ContextualLogger shell.ContextualLogger
	MetricsCollector shell.MetricsCollector
	TracingCollector shell.TracingCollector
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	processConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	obsConfig := ObservabilityConfig{}
	if cfg.ObservabilityEnabled {
		providers, err := config.NewObservabilityProviders(ctx, processConfig.Telemetry, "loadgen")
		if err != nil {
			log.Fatalf("Failed to create observability providers: %v", err)
		}
		defer func() { _ = providers.Shutdown(context.Background()) }()

		obsConfig = ObservabilityConfig{
			ContextualLogger: oteladapters.NewSlogBridgeLogger(instrumentationName),
			MetricsCollector: oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
			TracingCollector: oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
		}
	}

	var engineOptions []postgresengine.Option
	if obsConfig.ContextualLogger != nil {
		engineOptions = append(engineOptions, postgresengine.WithContextualLogger(obsConfig.ContextualLogger))
	}
	if obsConfig.MetricsCollector != nil {
		engineOptions = append(engineOptions, postgresengine.WithMetrics(obsConfig.MetricsCollector))
	}
	if obsConfig.TracingCollector != nil {
		engineOptions = append(engineOptions, postgresengine.WithTracing(obsConfig.TracingCollector))
	}

	engine, closeEngine, err := config.OpenEngine(ctx, processConfig.Database, engineOptions...)
	if err != nil {
		log.Fatalf("Failed to open the engine: %v", err)
	}
	defer closeEngine()

	loadGen, err := NewLoadGenerator(ctx, engine, cfg, obsConfig)
	if err != nil {
		log.Fatalf("Failed to create load generator: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := loadGen.Start(ctx); err != nil {
			errChan <- fmt.Errorf("load generator failed: %w", err)
		}
	}()

	log.Printf("Load generator started: rate=%d req/s, scenario_weights=%v", cfg.Rate, cfg.ScenarioWeights)
	log.Printf("Press Ctrl+C to stop...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	case err := <-errChan:
		log.Printf("Error occurred: %v", err)
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := loadGen.Stop(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Printf("Load generator stopped")
}

func parseFlags() Config {
	var (
		rate            = flag.Int("rate", defaultRate, "Requests per second")
		observability   = flag.Bool("observability-enabled", false, "Export traces and metrics to the configured OTLP endpoints")
		scenarioWeights = flag.String("scenario-weights", defaultScenarioWeights, "Comma-separated weights for shelving,lending scenarios")
	)

	flag.Parse()

	weights, err := parseScenarioWeights(*scenarioWeights)
	if err != nil {
		log.Fatalf("Invalid scenario weights '%s': %v", *scenarioWeights, err)
	}

	if *rate <= 0 {
		log.Fatalf("Invalid rate %d: must be positive", *rate)
	}

	return Config{
		Rate:                 *rate,
		ObservabilityEnabled: *observability,
		ScenarioWeights:      weights,
	}
}

func parseScenarioWeights(weightsStr string) ([]int, error) {
	parts := strings.Split(weightsStr, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected 2 weights, got %d", len(parts))
	}

	weights := make([]int, 2)
	total := 0
	for i, part := range parts {
		weight, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weight '%s': %w", part, err)
		}
		if weight < 0 || weight > 100 {
			return nil, fmt.Errorf("weight %d out of range [0, 100]", weight)
		}
		weights[i] = weight
		total += weight
	}

	if total != 100 {
		return nil, fmt.Errorf("weights must sum to 100, got %d", total)
	}

	return weights, nil
}
