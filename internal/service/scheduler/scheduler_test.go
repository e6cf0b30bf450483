package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/darkkaiser/price-notify/internal/pkg/errors"
	"github.com/darkkaiser/price-notify/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var _ service.Service = (*Scheduler)(nil)

// hourly 테스트 도중에는 실행되지 않는 스케줄
const hourly = "0 0 * * * *"

// checkWaitGroupDone WaitGroup이 제한 시간 안에 완료되는지 확인합니다.
func checkWaitGroupDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitGroup.Done()이 호출되지 않았습니다")
	}
}

// =============================================================================
// Constructor
// =============================================================================

func TestNewService(t *testing.T) {
	t.Parallel()

	t.Run("기본 타임아웃 적용", func(t *testing.T) {
		t.Parallel()

		s := NewService(Config{Schedule: hourly}, func(context.Context) error { return nil })
		assert.Equal(t, DefaultJobTimeout, s.cfg.JobTimeout)
	})

	t.Run("Job 누락 시 panic", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "Job은 필수입니다", func() {
			NewService(Config{Schedule: hourly}, nil)
		})
	})
}

// =============================================================================
// Lifecycle
// =============================================================================

func TestScheduler_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("시작 후 컨텍스트 취소로 종료", func(t *testing.T) {
		t.Parallel()

		s := NewService(Config{Schedule: hourly}, func(context.Context) error { return nil })

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)

		require.NoError(t, s.Start(ctx, &wg))
		s.runningMu.Lock()
		assert.True(t, s.running)
		assert.NotNil(t, s.cron)
		s.runningMu.Unlock()

		cancel()
		checkWaitGroupDone(t, &wg)

		s.runningMu.Lock()
		assert.False(t, s.running)
		assert.Nil(t, s.cron)
		s.runningMu.Unlock()
	})

	t.Run("중복 시작은 무시", func(t *testing.T) {
		t.Parallel()

		s := NewService(Config{Schedule: hourly}, func(context.Context) error { return nil })

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup

		wg.Add(1)
		require.NoError(t, s.Start(ctx, &wg))

		wg.Add(1)
		assert.NoError(t, s.Start(ctx, &wg))

		cancel()
		checkWaitGroupDone(t, &wg)
	})

	t.Run("중복 중지는 안전", func(t *testing.T) {
		t.Parallel()

		s := NewService(Config{Schedule: hourly}, func(context.Context) error { return nil })

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup
		wg.Add(1)
		require.NoError(t, s.Start(ctx, &wg))

		s.Stop()
		assert.NotPanics(t, s.Stop)

		cancel()
		checkWaitGroupDone(t, &wg)
	})
}

func TestScheduler_Start_Errors(t *testing.T) {
	t.Parallel()

	t.Run("잘못된 Cron 표현식", func(t *testing.T) {
		t.Parallel()

		s := NewService(Config{Schedule: "invalid-cron-spec"}, func(context.Context) error { return nil })

		var wg sync.WaitGroup
		wg.Add(1)

		err := s.Start(context.Background(), &wg)
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
		assert.Contains(t, err.Error(), "스케줄 등록 실패")

		checkWaitGroupDone(t, &wg)
	})

	t.Run("Job 강제 제거", func(t *testing.T) {
		t.Parallel()

		s := NewService(Config{Schedule: hourly}, func(context.Context) error { return nil })
		s.job = nil

		var wg sync.WaitGroup
		wg.Add(1)

		assert.ErrorIs(t, s.Start(context.Background(), &wg), ErrJobNotInitialized)
		checkWaitGroupDone(t, &wg)
	})
}

// =============================================================================
// Job Execution
// =============================================================================

func TestScheduler_RunOnStart(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	ran := make(chan struct{}, 1)

	s := NewService(Config{Schedule: hourly, RunOnStart: true}, func(ctx context.Context) error {
		calls.Add(1)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		ran <- struct{}{}
		return errors.New("실패해도 스케줄러는 유지됩니다")
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, s.Start(ctx, &wg))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("시작 직후 작업이 실행되지 않았습니다")
	}

	cancel()
	checkWaitGroupDone(t, &wg)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_Stop_WaitsForRunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var finished atomic.Bool

	s := NewService(Config{Schedule: hourly, RunOnStart: true}, func(context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, s.Start(ctx, &wg))

	<-started
	cancel()
	checkWaitGroupDone(t, &wg)

	assert.True(t, finished.Load())
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	ran := make(chan struct{})
	s := NewService(Config{Schedule: hourly, RunOnStart: true}, func(context.Context) error {
		close(ran)
		panic("boom")
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, s.Start(ctx, &wg))

	<-ran
	cancel()
	checkWaitGroupDone(t, &wg)
}

func TestOnceSchedule(t *testing.T) {
	t.Parallel()

	o := &onceSchedule{}
	now := time.Now()

	assert.Equal(t, now, o.Next(now))
	assert.True(t, o.Next(now.Add(time.Second)).IsZero())
}
