package paywall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	id "tausepro/pkg/domain"
	dErrors "tausepro/pkg/domain-errors"
)

type staticSource []*Store

func (s staticSource) AuthenticatedStores() []*Store { return s }

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestNewWorkerRequiresSource(t *testing.T) {
	_, err := NewWorker(nil)
	require.Error(t, err)
}

func TestWorkerRunOnce(t *testing.T) {
	t.Run("refreshes every store", func(t *testing.T) {
		a, b := new(mockAPI), new(mockAPI)
		a.On("Get", mock.Anything, usagePath, mock.Anything).Return(nil, usageReply(id.PlanStarter, &Usage{APICalls: 1})).Once()
		b.On("Get", mock.Anything, usagePath, mock.Anything).Return(nil, usageReply(id.PlanScale, &Usage{})).Once()
		sa, sb := NewStore(a), NewStore(b)

		w, err := NewWorker(staticSource{sa, sb}, WithRetry(3, noWait))
		require.NoError(t, err)
		res, err := w.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, RunResult{Refreshed: 2}, res)
		assert.Equal(t, id.PlanStarter, sa.Plan())
		assert.Equal(t, id.PlanScale, sb.Plan())
	})

	t.Run("retries transient failures", func(t *testing.T) {
		api := new(mockAPI)
		api.On("Get", mock.Anything, usagePath, mock.Anything).Return(dErrors.New(dErrors.CodeUnavailable, "502"), nil).Twice()
		api.On("Get", mock.Anything, usagePath, mock.Anything).Return(nil, usageReply(id.PlanGrowth, &Usage{})).Once()
		store := NewStore(api)

		w, err := NewWorker(staticSource{store}, WithRetry(3, noWait))
		require.NoError(t, err)
		res, err := w.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Refreshed)
		assert.Equal(t, id.PlanGrowth, store.Plan())
		api.AssertNumberOfCalls(t, "Get", 3)
	})

	t.Run("does not retry unauthorized", func(t *testing.T) {
		api := new(mockAPI)
		api.On("Get", mock.Anything, usagePath, mock.Anything).Return(dErrors.New(dErrors.CodeUnauthorized, "session expired"), nil)
		ok := new(mockAPI)
		ok.On("Get", mock.Anything, usagePath, mock.Anything).Return(nil, usageReply(id.PlanStarter, &Usage{}))

		w, err := NewWorker(staticSource{NewStore(api), NewStore(ok)}, WithRetry(3, noWait))
		require.NoError(t, err)
		res, err := w.RunOnce(context.Background())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, RunResult{Refreshed: 1, Failed: 1}, res)
		api.AssertNumberOfCalls(t, "Get", 1)
	})

	t.Run("gives up after max tries", func(t *testing.T) {
		api := new(mockAPI)
		api.On("Get", mock.Anything, usagePath, mock.Anything).Return(dErrors.New(dErrors.CodeTimeout, "slow"), nil)

		w, err := NewWorker(staticSource{NewStore(api)}, WithRetry(2, noWait))
		require.NoError(t, err)
		res, err := w.RunOnce(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, res.Failed)
		api.AssertNumberOfCalls(t, "Get", 2)
	})
}

func TestWorkerStartStopsOnCancel(t *testing.T) {
	w, err := NewWorker(staticSource{}, WithInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
