package sqlengine

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
)

const (
	logMsgBuildQueryFailed   = "failed to build sql statement"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database statement execution failed"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgBeginTxFailed      = "failed to begin transaction"
	logMsgCommitFailed       = "failed to commit transaction"
	logMsgRollbackFailed     = "failed to roll back transaction"
	logMsgOrderCreated       = "order created"
	logMsgStatusUpdated      = "order status updated"
	logMsgOrderDeleted       = "order deleted"
	logMsgStateConflict      = "state conflict detected"
	logMsgMigrationApplied   = "schema migration applied"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "orderstore operation: "

	logAttrError          = "error"
	logAttrQuery          = "query"
	logAttrAction         = "action"
	logAttrOrderID        = "order_id"
	logAttrArticleCount   = "article_count"
	logAttrNotifications  = "notification_count"
	logAttrExpectedStatus = "expected_status"
	logAttrNewStatus      = "new_status"
	logAttrDurationMS     = "duration_ms"
	logAttrVersion        = "version"

	logActionCreate        = "create"
	logActionGet           = "get"
	logActionList          = "list"
	logActionCount         = "count"
	logActionUpdateStatus  = "update_status"
	logActionDelete        = "delete"
	logActionOutboxInsert  = "outbox_insert"
	logActionOutboxFetch   = "outbox_fetch"
	logActionOutboxMark    = "outbox_mark"
	logActionMigrate       = "migrate"
	logActionLoadArticles  = "load_articles"
	logActionCountByStatus = "count_by_status"
)

const (
	metricOperationDuration = "orderstore_operation_duration_seconds"
	metricDatabaseErrors    = "orderstore_database_errors_total"
	metricStateConflicts    = "orderstore_state_conflicts_total"
	metricOrdersCreated     = "orderstore_orders_created_total"

	spanNamePrefix     = "orderstore."
	spanAttrOperation  = "operation"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"
	spanAttrOrderID    = "order_id"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"

	errorTypeStateConflict = "state_conflict"
	errorTypeNotFound      = "not_found"
	errorTypeValidation    = "validation"
	errorTypeCanceled      = "canceled"
	errorTypeTimeout       = "timeout"
	errorTypeDatabase      = "database"
)

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s OrderStore) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	} else if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s OrderStore) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	} else if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues if a logger is configured.
func (s OrderStore) logWarn(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
	} else if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s OrderStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	} else if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s OrderStore) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// operationObserver bundles the span, timing, and metrics of one store operation.
type operationObserver struct {
	s         OrderStore
	ctx       context.Context
	operation string
	span      orderstore.SpanContext
	start     time.Time
}

// observe starts tracing and timing for an operation; the returned context carries the span.
func (s OrderStore) observe(ctx context.Context, operation string, attrs map[string]string) (*operationObserver, context.Context) {
	var span orderstore.SpanContext

	if s.tracingCollector != nil {
		spanAttrs := map[string]string{spanAttrOperation: operation}
		for k, v := range attrs {
			spanAttrs[k] = v
		}

		ctx, span = s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return &operationObserver{s: s, ctx: ctx, operation: operation, span: span, start: time.Now()}, ctx
}

// finish records the outcome of the operation: duration, error counters, and the span status.
func (o *operationObserver) finish(err error) {
	duration := time.Since(o.start)
	status := statusSuccess
	attrs := map[string]string{spanAttrDurationMS: strconv.FormatFloat(o.s.toMilliseconds(duration), 'f', 2, 64)}

	if err != nil {
		errorType := classifyError(err)
		attrs[spanAttrErrorType] = errorType
		status = statusError

		if errorType == errorTypeStateConflict {
			status = statusConflict
			o.increment(metricStateConflicts, map[string]string{spanAttrOperation: o.operation})
		} else if errorType == errorTypeDatabase {
			o.increment(metricDatabaseErrors, map[string]string{spanAttrOperation: o.operation, spanAttrErrorType: errorType})
		}
	}

	o.recordDuration(duration, map[string]string{spanAttrOperation: o.operation, "status": status})

	if o.s.tracingCollector != nil && o.span != nil {
		o.s.tracingCollector.FinishSpan(o.span, status, attrs)
	}
}

func (o *operationObserver) increment(metric string, labels map[string]string) {
	if o.s.metricsCollector == nil {
		return
	}

	if contextual, ok := o.s.metricsCollector.(orderstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metric, labels)
		return
	}

	o.s.metricsCollector.IncrementCounter(metric, labels)
}

func (o *operationObserver) recordDuration(duration time.Duration, labels map[string]string) {
	if o.s.metricsCollector == nil {
		return
	}

	if contextual, ok := o.s.metricsCollector.(orderstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, metricOperationDuration, duration, labels)
		return
	}

	o.s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, orderstore.ErrStateConflict):
		return errorTypeStateConflict
	case errors.Is(err, orderstore.ErrOrderNotFound):
		return errorTypeNotFound
	case errors.Is(err, orderstore.ErrInvalidStorableOrder):
		return errorTypeValidation
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	default:
		return errorTypeDatabase
	}
}
