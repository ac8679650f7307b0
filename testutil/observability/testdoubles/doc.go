// Package testdoubles provides spies for the dependency-free observability interfaces of the circulation package
// (MetricsCollector, TracingCollector, ContextualLogger) and a slog.Handler spy.
//
// All spies are safe for concurrent use, so they can observe handlers that run goroutines.
package testdoubles
