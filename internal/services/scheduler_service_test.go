package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/valpere/nebo/tests/helpers"
)

type fakeRefresher struct {
	online atomic.Bool
	calls  atomic.Int32
	err    error
}

func (f *fakeRefresher) Online() bool { return f.online.Load() }

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestSchedulerService_RunRefresh(t *testing.T) {
	tests := []struct {
		name      string
		online    bool
		err       error
		wantCalls int32
		wantLog   string
	}{
		{name: "offline skips", online: false, wantCalls: 0, wantLog: "Skipping refresh while offline"},
		{name: "online refreshes", online: true, wantCalls: 1, wantLog: "Periodic refresh completed"},
		{name: "partial data is a warning", online: true, err: &NetworkError{Leg: LegForecast, Err: errors.New("timeout")}, wantCalls: 1, wantLog: "Periodic refresh returned partial data"},
		{name: "other failures are errors", online: true, err: ErrStoreUnavailable, wantCalls: 1, wantLog: "Periodic refresh failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := helpers.NewTestLogger()
			refresher := &fakeRefresher{err: tt.err}
			refresher.online.Store(tt.online)

			service := NewSchedulerService(refresher, time.Minute, logger.Logger)
			service.RunRefresh(context.Background())

			assert.Equal(t, tt.wantCalls, refresher.calls.Load())
			logger.AssertLogContains(t, tt.wantLog)
		})
	}
}

func TestSchedulerService_Start(t *testing.T) {
	t.Run("disabled interval", func(t *testing.T) {
		service := NewSchedulerService(&fakeRefresher{}, 0, helpers.NewSilentTestLogger())

		assert.NoError(t, service.Start())
		assert.Equal(t, 0, service.Jobs())
		service.Stop()
	})

	t.Run("schedules one job", func(t *testing.T) {
		refresher := &fakeRefresher{}
		refresher.online.Store(true)
		service := NewSchedulerService(refresher, 50*time.Millisecond, helpers.NewSilentTestLogger())

		assert.NoError(t, service.Start())
		defer service.Stop()

		assert.Equal(t, 1, service.Jobs())
		assert.Eventually(t, func() bool { return refresher.calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
	})
}
