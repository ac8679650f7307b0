package postgresengine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	logMsgBuildQueryFailed   = "failed to build sql statement"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRollbackFailed     = "failed to roll back transaction"
	logMsgOperationFailed    = "circulation operation failed"
	logMsgOperationRejected  = "circulation operation rejected: "
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "circulation operation: "
	logAttrError             = "error"
	logAttrErrorType         = "error_type"
	logAttrQuery             = "query"
	logAttrAction            = "action"
	logAttrOperation         = "operation"
	logAttrDurationMS        = "duration_ms"
	logAttrBookID            = "book_id"
	logAttrUserID            = "user_id"
	logAttrStock             = "stock"
	logAttrCount             = "count"
	logAttrWindowDays        = "window_days"

	metricOperationDuration    = "circulation_operation_duration_seconds"
	metricDatabaseErrors       = "circulation_database_errors_total"
	metricConcurrencyConflicts = "circulation_concurrency_conflicts_total"
	metricRowsReturned         = "circulation_rows_returned"

	spanNamePrefix     = "circulation."
	spanAttrOperation  = "operation"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"
	spanAttrRowCount   = "row_count"
	labelStatus        = "status"
	statusSuccess      = "success"
	statusError        = "error"
	statusRejected     = "rejected"

	errorTypeConcurrencyConflict   = "concurrency_conflict"
	errorTypeCanceled              = "canceled"
	errorTypeTimeout               = "timeout"
	errorTypeNotFound              = "not_found"
	errorTypeOutOfStock            = "out_of_stock"
	errorTypeLimitExceeded         = "limit_exceeded"
	errorTypeNoActiveLoan          = "no_active_loan"
	errorTypeInventoryInconsistent = "inventory_inconsistent"
	errorTypeInvalidArgument       = "invalid_argument"
	errorTypeBuildQuery            = "build_query"
	errorTypeRowScan               = "row_scan"
	errorTypeDatabase              = "database_error"

	operationTransaction          = "transaction"
	operationCreateTables         = "create_tables"
	operationGetStock             = "get_stock"
	operationFindBook             = "find_book"
	operationGetAllBooks          = "get_all_books"
	operationUpsert               = "upsert"
	operationCountActive          = "count_active"
	operationListOverdue          = "list_overdue"
	operationCountOverdue         = "count_overdue"
	operationTopBorrowed          = "top_borrowed"
	operationRecentLoanCount      = "recent_loan_count"
	operationFindUser             = "find_user"
	operationListUsers            = "list_users"
	operationUsersWithActiveLoans = "users_with_active_loans"
	operationLoansByUser          = "loans_by_user"
	operationReadJournal          = "read_journal"
)

// operationObserver ties together the span, the metrics and the summary log line of one engine operation.
type operationObserver struct {
	engine    *Engine
	ctx       context.Context
	span      circulation.SpanContext
	operation string
	start     time.Time
}

// observe starts the span of an operation and returns the observer plus the span-carrying context.
func (e *Engine) observe(ctx context.Context, operation string) (*operationObserver, context.Context) {
	newCtx := ctx
	var span circulation.SpanContext

	if e.tracingCollector != nil {
		newCtx, span = e.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
			spanAttrOperation: operation,
		})
	}

	return &operationObserver{
		engine:    e,
		ctx:       newCtx,
		span:      span,
		operation: operation,
		start:     time.Now(),
	}, newCtx
}

// success records a successful operation that does not return rows.
func (o *operationObserver) success(args ...any) {
	o.succeeded(-1, args...)
}

// successWithRows records a successful listing of rowCount rows.
func (o *operationObserver) successWithRows(rowCount int, args ...any) {
	o.succeeded(rowCount, args...)
}

// succeeded records a successful operation. rowCount < 0 means "not a listing".
func (o *operationObserver) succeeded(rowCount int, args ...any) {
	duration := time.Since(o.start)
	e := o.engine

	e.recordDuration(o.ctx, duration, o.operation, statusSuccess)

	attrs := map[string]string{}
	if rowCount >= 0 {
		e.recordValue(o.ctx, metricRowsReturned, float64(rowCount), o.operation)
		attrs[spanAttrRowCount] = strconv.Itoa(rowCount)
		args = append(args, spanAttrRowCount, rowCount)
	}

	if o.span != nil {
		o.span.AddAttribute(spanAttrDurationMS, strconv.FormatFloat(e.toMilliseconds(duration), 'f', 2, 64))
		e.tracingCollector.FinishSpan(o.span, statusSuccess, attrs)
	}

	allArgs := []any{logAttrDurationMS, e.toMilliseconds(duration)}
	allArgs = append(allArgs, args...)
	e.logInfo(o.ctx, logMsgOperation+o.operation, allArgs...)
}

// failure records a failed operation. Domain rejections are logged at info level and do not count as database errors.
func (o *operationObserver) failure(err error) {
	duration := time.Since(o.start)
	e := o.engine
	errType := errorType(err)

	status := statusError
	if isDomainRejection(err) {
		status = statusRejected
	}

	e.recordDuration(o.ctx, duration, o.operation, status)

	switch {
	case status == statusRejected:
		e.logInfo(o.ctx, logMsgOperationRejected+o.operation, logAttrErrorType, errType, logAttrError, err.Error())

	case errType == errorTypeConcurrencyConflict:
		e.recordCounter(o.ctx, metricConcurrencyConflicts, map[string]string{spanAttrOperation: o.operation})
		e.logInfo(o.ctx, logMsgOperationRejected+o.operation, logAttrErrorType, errType, logAttrError, err.Error())

	default:
		e.recordCounter(o.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: o.operation,
			labelStatus:       statusError,
			spanAttrErrorType: errType,
		})
		e.logErr(o.ctx, logMsgOperationFailed, err, logAttrOperation, o.operation, logAttrErrorType, errType)
	}

	if o.span != nil {
		o.span.AddAttribute(spanAttrErrorType, errType)
		e.tracingCollector.FinishSpan(o.span, status, map[string]string{spanAttrErrorType: errType})
	}
}

func (e *Engine) recordDuration(ctx context.Context, duration time.Duration, operation, status string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, labelStatus: status}

	if contextual, ok := e.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricOperationDuration, duration, labels)
		return
	}

	e.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

func (e *Engine) recordValue(ctx context.Context, metric string, value float64, operation string) {
	if e.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation}

	if contextual, ok := e.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	e.metricsCollector.RecordValue(metric, value, labels)
}

func (e *Engine) recordCounter(ctx context.Context, metric string, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextual, ok := e.metricsCollector.(circulation.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metric, labels)
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (e *Engine) logQueryWithDuration(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, e.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if e.logger != nil {
		e.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

func (e *Engine) logInfo(ctx context.Context, msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

func (e *Engine) logWarn(ctx context.Context, msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

func (e *Engine) logErr(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if e.logger != nil {
		e.logger.Error(msg, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// logStoreErr logs classified store errors. Concurrency conflicts are expected under load and go to info.
func (e *Engine) logStoreErr(ctx context.Context, msg string, err error, args ...any) {
	if errorType(err) == errorTypeConcurrencyConflict {
		allArgs := []any{logAttrError, err.Error()}
		e.logInfo(ctx, msg, append(allArgs, args...)...)

		return
	}

	e.logErr(ctx, msg, err, args...)
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (e *Engine) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
