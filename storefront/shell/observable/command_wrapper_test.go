package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/storefront-orders/orderstore"
	"github.com/AntonStoeckl/storefront-orders/storefront/core"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell"
	"github.com/AntonStoeckl/storefront-orders/storefront/shell/observable"
	"github.com/AntonStoeckl/storefront-orders/testutil/observability/testdoubles"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type testQuery struct{}

func (testQuery) QueryType() string { return "TestQuery" }

type stubCommandHandler struct {
	result shell.HandlerResult
	err    error
	calls  int
}

func (h *stubCommandHandler) Handle(_ context.Context, _ testCommand) (string, shell.HandlerResult, error) {
	h.calls++
	return "done", h.result, h.err
}

type stubQueryHandler struct {
	err error
}

func (h stubQueryHandler) Handle(_ context.Context, _ testQuery) (int, error) {
	return 42, h.err
}

func newCommandWrapper(t *testing.T, handler *stubCommandHandler) (
	*observable.CommandWrapper[testCommand, string],
	*testdoubles.MetricsCollectorSpy,
	*testdoubles.TracingCollectorSpy,
	*testdoubles.LoggerSpy,
) {
	t.Helper()

	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand, string](
		handler,
		observable.WithCommandMetrics[testCommand, string](metrics),
		observable.WithCommandTracing[testCommand, string](tracing),
		observable.WithCommandContextualLogging[testCommand, string](logger),
	)
	require.NoError(t, err)

	return wrapper, metrics, tracing, logger
}

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: shell.HandlerResult{RetryAttempts: 1, LastErrorType: "none"}}
	wrapper, metrics, tracing, logger := newCommandWrapper(t, handler)

	// act
	output, result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "done", output)
	assert.Equal(t, handler.result, result)
	assert.Equal(t, 1, handler.calls)
	assert.True(t, metrics.HasRecordWithLabel(shell.CommandHandlerCallsMetric, shell.LogAttrStatus, shell.StatusSuccess))
	assert.True(t, metrics.HasRecordWithLabel(shell.CommandHandlerDurationMetric, shell.LogAttrCommandType, "TestCommand"))
	assert.Empty(t, metrics.Records(shell.CommandHandlerRetriesMetric))
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusSuccess))
	assert.True(t, logger.HasLog("info", shell.LogMsgCommandStarted))
	assert.True(t, logger.HasLog("info", shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_Idempotent(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: shell.HandlerResult{Idempotent: true, Reason: core.ReasonAlreadyTerminal, RetryAttempts: 1}}
	wrapper, metrics, tracing, logger := newCommandWrapper(t, handler)

	// act
	_, result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.True(t, metrics.HasRecordWithLabel(shell.CommandHandlerIdempotentMetric, shell.LogAttrStatus, shell.StatusIdempotent))
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusIdempotent))

	records := logger.Records("info")
	require.NotEmpty(t, records)
	reason, ok := records[len(records)-1].Attr(shell.LogAttrReason)
	assert.True(t, ok)
	assert.Equal(t, core.ReasonAlreadyTerminal, reason)
}

func Test_CommandWrapper_Handle_ClassifiesErrors(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus string
		expectedLevel  string
	}{
		{name: "conflict", err: orderstore.ErrStateConflict, expectedStatus: shell.StatusConflict, expectedLevel: "warn"},
		{name: "forbidden", err: errors.Join(core.ErrForbiddenTransition, errors.New("client")), expectedStatus: shell.StatusRejected, expectedLevel: "warn"},
		{name: "canceled", err: context.Canceled, expectedStatus: shell.StatusCanceled, expectedLevel: "error"},
		{name: "timeout", err: context.DeadlineExceeded, expectedStatus: shell.StatusTimeout, expectedLevel: "error"},
		{name: "infrastructure", err: orderstore.ErrQueryingOrdersFailed, expectedStatus: shell.StatusError, expectedLevel: "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			handler := &stubCommandHandler{err: tc.err, result: shell.HandlerResult{RetryAttempts: 1}}
			wrapper, metrics, tracing, logger := newCommandWrapper(t, handler)

			// act
			_, _, err := wrapper.Handle(context.Background(), testCommand{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metrics.HasRecordWithLabel(shell.CommandHandlerCallsMetric, shell.LogAttrStatus, tc.expectedStatus))
			assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, tc.expectedStatus))
			assert.NotEmpty(t, logger.Records(tc.expectedLevel))
		})
	}
}

func Test_CommandWrapper_Handle_RecordsRetries(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{
		err:    orderstore.ErrStateConflict,
		result: shell.HandlerResult{RetryAttempts: 3, LastErrorType: "state_conflict", RetriesExhausted: true},
	}
	wrapper, metrics, _, _ := newCommandWrapper(t, handler)

	// act
	_, _, _ = wrapper.Handle(context.Background(), testCommand{})

	// assert
	assert.True(t, metrics.HasRecordWithLabel(shell.CommandHandlerRetriesMetric, "attempt_number", "2"))
	assert.Len(t, metrics.Records(shell.CommandHandlerRetryDelayMetric), 1)
	assert.Len(t, metrics.Records(shell.CommandHandlerMaxRetriesReachedMetric), 1)
	assert.Len(t, metrics.Records(shell.CommandHandlerStateConflictMetric), 1)
}

func Test_CommandWrapper_Handle_WithoutCollectors(t *testing.T) {
	wrapper, err := observable.NewCommandWrapper[testCommand, string](&stubCommandHandler{})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, _, _ = wrapper.Handle(context.Background(), testCommand{})
	})
}

func Test_QueryWrapper_Handle(t *testing.T) {
	// arrange
	metrics := testdoubles.NewMetricsCollectorSpy()
	logger := testdoubles.NewLoggerSpy()

	ok, err := observable.NewQueryWrapper[testQuery, int](
		stubQueryHandler{},
		observable.WithQueryMetrics[testQuery, int](metrics),
		observable.WithQueryLogging[testQuery, int](logger),
	)
	require.NoError(t, err)

	notFound, err := observable.NewQueryWrapper[testQuery, int](
		stubQueryHandler{err: orderstore.ErrOrderNotFound},
		observable.WithQueryMetrics[testQuery, int](metrics),
		observable.WithQueryLogging[testQuery, int](logger),
	)
	require.NoError(t, err)

	// act
	value, okErr := ok.Handle(context.Background(), testQuery{})
	_, notFoundErr := notFound.Handle(context.Background(), testQuery{})

	// assert
	assert.NoError(t, okErr)
	assert.Equal(t, 42, value)
	assert.ErrorIs(t, notFoundErr, orderstore.ErrOrderNotFound)
	assert.True(t, metrics.HasRecordWithLabel(shell.QueryHandlerCallsMetric, shell.LogAttrStatus, shell.StatusSuccess))
	assert.True(t, metrics.HasRecordWithLabel(shell.QueryHandlerCallsMetric, shell.LogAttrStatus, shell.StatusRejected))
	assert.True(t, logger.HasLog("info", shell.LogMsgQueryCompleted))
	assert.True(t, logger.HasLog("warn", shell.LogMsgQueryFailed))
}
