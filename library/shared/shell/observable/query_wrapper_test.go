package observable_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/library/shared/shell/observable"
)

type testQuery struct {
	UserID int64
}

func (q testQuery) QueryType() string {
	return "TestQuery"
}

type stubQueryHandler struct {
	result int
	err    error
}

func (h stubQueryHandler) Handle(_ context.Context, _ testQuery) (int, error) {
	return h.result, h.err
}

func wrapQueryHandler(t *testing.T, handler stubQueryHandler, s spies) *observable.QueryWrapper[testQuery, int] {
	t.Helper()

	wrapper, err := observable.NewQueryWrapper[testQuery, int](
		handler,
		observable.WithQueryMetrics[testQuery, int](s.metrics),
		observable.WithQueryTracing[testQuery, int](s.tracing),
		observable.WithQueryContextualLogging[testQuery, int](s.logger),
	)
	require.NoError(t, err)

	return wrapper
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	s := newSpies()
	wrapper := wrapQueryHandler(t, stubQueryHandler{result: 2}, s)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{UserID: 1})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result)
	assert.True(t, s.metrics.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithLabel("query_type", "TestQuery").
		WithStatus("success").
		Assert())
	assert.True(t, s.metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithStatus("success").
		Assert())
	assert.True(t, s.tracing.HasSpanRecordForName(shell.SpanNameQueryHandle).
		WithStartAttribute("query_type", "TestQuery").
		Assert())
	assert.True(t, s.logger.HasMessageContaining("info", shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Rejection(t *testing.T) {
	// arrange
	s := newSpies()
	wrapper := wrapQueryHandler(t, stubQueryHandler{err: circulation.ErrInvalidArgument}, s)

	// act
	_, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.ErrorIs(t, err, circulation.ErrInvalidArgument)
	assert.True(t, s.metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithStatus(shell.StatusRejected).
		Assert())
	assert.True(t, s.logger.HasMessageContaining("info", shell.LogMsgQueryRejected))
}

func Test_QueryWrapper_Handle_StoreFailure(t *testing.T) {
	// arrange
	s := newSpies()
	storeErr := errors.Join(circulation.ErrStoreUnavailable, errors.New("connection reset"))
	wrapper := wrapQueryHandler(t, stubQueryHandler{err: storeErr}, s)

	// act
	_, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	assert.ErrorIs(t, err, circulation.ErrStoreUnavailable)
	assert.True(t, s.metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithStatus(shell.StatusError).
		Assert())
	assert.True(t, s.tracing.HasSpanRecordForName(shell.SpanNameQueryHandle).
		WithStatus(shell.StatusError).
		Assert())
	assert.True(t, s.logger.HasMessageContaining("error", shell.LogMsgQueryFailed))
}
