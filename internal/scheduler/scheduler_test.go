package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/carteira-service/internal/models"
)

type fakeRecalculator struct {
	calls       int
	err         error
	hasDeadline bool
}

func (f *fakeRecalculator) RecalculateAll(ctx context.Context) (map[models.Tipo][]models.Position, error) {
	f.calls++
	_, f.hasDeadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return map[models.Tipo][]models.Position{
		models.TipoFII:    {{ID: "a"}, {ID: "b"}},
		models.TipoAcaoBR: {},
	}, nil
}

type countingJob struct {
	runs chan struct{}
}

func (j *countingJob) Run(context.Context) error {
	select {
	case j.runs <- struct{}{}:
	default:
	}
	return nil
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@hourly", &countingJob{}))
	require.NoError(t, s.AddJob("*/5 * * * *", &countingJob{}))
	require.NoError(t, s.AddJob("0 */5 * * * *", &countingJob{}))
	assert.Equal(t, 3, s.Entries())

	err := s.AddJob("not a schedule", &countingJob{})
	assert.Error(t, err)
	assert.Equal(t, 3, s.Entries())
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{runs: make(chan struct{}, 1)}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	select {
	case <-job.runs:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

// blockingJob runs until its context is cancelled
type blockingJob struct {
	started chan struct{}
	stopped chan error
}

func (j *blockingJob) Run(ctx context.Context) error {
	select {
	case j.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	select {
	case j.stopped <- ctx.Err():
	default:
	}
	return ctx.Err()
}

func (j *blockingJob) Name() string { return "blocking" }

func TestScheduler_StopCancelsRunningJobs(t *testing.T) {
	s := New(zerolog.Nop())
	job := &blockingJob{started: make(chan struct{}, 1), stopped: make(chan error, 1)}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	select {
	case <-job.started:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return while a job was running")
	}
	assert.ErrorIs(t, <-job.stopped, context.Canceled)
}

func TestRunNow_ReturnsJobError(t *testing.T) {
	job := NewRecalculateWeightsJob(&fakeRecalculator{err: errors.New("store down")}, time.Second, zerolog.Nop())

	err := New(zerolog.Nop()).RunNow(context.Background(), job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store down")
}

func TestRecalculateWeightsJob(t *testing.T) {
	t.Run("runs recalculation with deadline", func(t *testing.T) {
		service := &fakeRecalculator{}
		job := NewRecalculateWeightsJob(service, 0, zerolog.Nop())

		assert.Equal(t, "recalculate_weights", job.Name())
		require.NoError(t, New(zerolog.Nop()).RunNow(context.Background(), job))
		assert.Equal(t, 1, service.calls)
		assert.True(t, service.hasDeadline)
	})

	t.Run("wraps errors", func(t *testing.T) {
		service := &fakeRecalculator{err: errors.New("store down")}
		job := NewRecalculateWeightsJob(service, time.Second, zerolog.Nop())

		err := job.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to recalculate weights")
	})
}
