package scheduler

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igtracker/pkg/logger"
)

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(func() error { return nil }, logger.NewTestLogger())

	err := s.Start("not a cron expression")
	require.Error(t, err)
}

func TestStartAcceptsDefaultAndCustomSchedules(t *testing.T) {
	for _, schedule := range []string{"", "*/5 * * * *", "0 6 * * *"} {
		s := New(func() error { return nil }, logger.NewTestLogger())
		require.NoError(t, s.Start(schedule), "schedule %q", schedule)
		s.Stop()
	}
}

func TestRunNowExecutesBatch(t *testing.T) {
	done := make(chan struct{})
	s := New(func() error {
		close(done)
		return nil
	}, logger.NewTestLogger())

	s.RunNow()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("batch did not run")
	}
}

func TestOverlappingRunsAreSkipped(t *testing.T) {
	var mu sync.Mutex
	runs := 0
	block := make(chan struct{})

	s := New(func() error {
		mu.Lock()
		runs++
		mu.Unlock()
		<-block
		return nil
	}, logger.NewTestLogger())

	s.RunNow()
	// Give the first run time to take the slot
	time.Sleep(50 * time.Millisecond)
	s.RunNow()
	time.Sleep(50 * time.Millisecond)
	close(block)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs, "second tick skipped while first still running")
}

func TestBatchErrorIsLogged(t *testing.T) {
	log := logger.NewTestLogger()
	done := make(chan struct{})
	s := New(func() error {
		defer close(done)
		return errors.New("actor unavailable")
	}, log)

	s.RunNow()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("batch did not run")
	}
	// The error lands in the log, the scheduler keeps going
	time.Sleep(50 * time.Millisecond)
	assert.True(t, log.HasError())
}
