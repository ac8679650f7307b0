// Package observable provides wrappers that instrument command and query handlers with metrics,
// tracing and logging while the handlers themselves contain business logic only.
//
// The wrappers are applied externally at wiring time:
//
//	coreHandler := borrowbook.NewCommandHandler(engine, catalogClient)
//
//	handler, err := observable.NewCommandWrapper[borrowbook.Command](
//		coreHandler,
//		observable.WithCommandMetrics[borrowbook.Command](metricsCollector),
//		observable.WithCommandTracing[borrowbook.Command](tracingCollector),
//		observable.WithCommandContextualLogging[borrowbook.Command](contextualLogger),
//	)
//
// Business rejections (out of stock, limit reached, unknown user, ...) are recorded with the status
// "rejected" and logged at info level. Technical failures are recorded as "error", "canceled",
// "timeout" or "concurrency_conflict" and logged at error level.
package observable
