// Package oteladapters implements the circulation observability interfaces on top of OpenTelemetry.
//
// Wire them into the engine and the handlers with the usual options:
//
//	engine, err := postgresengine.NewEngineFromPGXPool(pool,
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meter)),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracer)),
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("cybook")),
//	)
package oteladapters
