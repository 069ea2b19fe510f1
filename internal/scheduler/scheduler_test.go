package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"langpack-manager/pkg/models"
)

type fakeStates struct {
	mu      sync.Mutex
	records map[string]*models.ResumeState
}

func newFakeStates(records ...*models.ResumeState) *fakeStates {
	f := &fakeStates{records: make(map[string]*models.ResumeState)}
	for _, r := range records {
		f.records[r.PackID] = r
	}
	return f
}

func (f *fakeStates) Get(packID string) (*models.ResumeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[packID], nil
}

func (f *fakeStates) List() ([]*models.ResumeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ResumeState, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStates) remove(packID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, packID)
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []string
	err    error
	resume chan string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{resume: make(chan string, 16)}
}

func (f *fakeRunner) Resume(_ context.Context, packID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, packID)
	err := f.err
	f.mu.Unlock()
	f.resume <- packID
	return err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeConditions struct {
	mu        sync.Mutex
	unmetered bool
	battery   bool
	free      int64
}

func (f *fakeConditions) NetworkUnmetered() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unmetered
}

func (f *fakeConditions) BatteryNotLow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.battery
}

func (f *fakeConditions) FreeBytes() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.free
}

func (f *fakeConditions) set(unmetered, battery bool, free int64) {
	f.mu.Lock()
	f.unmetered = unmetered
	f.battery = battery
	f.free = free
	f.mu.Unlock()
}

func record(packID string) *models.ResumeState {
	return &models.ResumeState{
		PackID:          packID,
		SourceURL:       "https://packs.invalid/" + packID + ".zip",
		DownloadedBytes: 1024,
		TotalBytes:      4096,
		PartialPath:     "/tmp/" + packID + ".zip.part",
	}
}

func fastScheduler(states StateReader, checker ConditionChecker, opts ...Option) *Scheduler {
	base := []Option{WithInitialDelay(10 * time.Millisecond), WithScanInterval(20 * time.Millisecond)}
	s := New(states, checker, append(base, opts...)...)
	s.baseBackoff = 10 * time.Millisecond
	return s
}

func TestScheduler_FiresResume(t *testing.T) {
	states := newFakeStates(record("en-es"))
	runner := newFakeRunner()

	s := fastScheduler(states, nil)
	s.Attach(runner)

	require.NoError(t, s.ScheduleResume("en-es"))
	require.Equal(t, []string{"en-es"}, s.Jobs())

	select {
	case packID := <-runner.resume:
		require.Equal(t, "en-es", packID)
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}

	require.Eventually(t, func() bool { return len(s.Jobs()) == 0 }, time.Second, 10*time.Millisecond)
}

func TestScheduler_RetiresWhenRecordGone(t *testing.T) {
	states := newFakeStates()
	runner := newFakeRunner()

	s := fastScheduler(states, nil)
	s.Attach(runner)

	require.NoError(t, s.ScheduleDownload("en-es"))
	require.Eventually(t, func() bool { return len(s.Jobs()) == 0 }, time.Second, 10*time.Millisecond)
	require.Zero(t, runner.callCount())
}

func TestScheduler_DuplicateScheduleIsNoop(t *testing.T) {
	states := newFakeStates(record("en-es"))
	s := New(states, nil, WithInitialDelay(time.Hour))
	t.Cleanup(s.shutdown)

	require.NoError(t, s.ScheduleResume("en-es"))
	require.NoError(t, s.ScheduleResume("en-es"))
	require.Len(t, s.Jobs(), 1)
}

func TestScheduler_CancelJob(t *testing.T) {
	states := newFakeStates(record("en-es"))
	runner := newFakeRunner()

	s := fastScheduler(states, nil)
	s.Attach(runner)

	require.NoError(t, s.ScheduleResume("en-es"))
	require.NoError(t, s.CancelJob("en-es"))
	require.Empty(t, s.Jobs())

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, runner.callCount())
}

func TestScheduler_CancelUnknownJob(t *testing.T) {
	s := New(newFakeStates(), nil)
	require.NoError(t, s.CancelJob("en-es"))
}

func TestScheduler_DefersUntilConditionsMet(t *testing.T) {
	states := newFakeStates(record("en-es"))
	runner := newFakeRunner()
	conditions := &fakeConditions{}
	conditions.set(false, true, 1<<40)

	s := fastScheduler(states, conditions, WithConstraints(Constraints{RequireUnmetered: true}), WithMaxRetries(50))
	s.Attach(runner)

	require.NoError(t, s.ScheduleResume("en-es"))
	time.Sleep(80 * time.Millisecond)
	require.Zero(t, runner.callCount())

	conditions.set(true, true, 1<<40)
	select {
	case <-runner.resume:
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired after conditions became satisfiable")
	}
}

func TestScheduler_FreeSpaceConstraint(t *testing.T) {
	rec := record("en-es")
	states := newFakeStates(rec)
	runner := newFakeRunner()
	conditions := &fakeConditions{}
	// Remaining transfer is 3072 bytes; with a 10000-byte floor the job
	// needs at least 13072 free.
	conditions.set(true, true, 13000)

	s := fastScheduler(states, conditions, WithConstraints(Constraints{MinFreeBytes: 10000}), WithMaxRetries(50))
	s.Attach(runner)

	require.NoError(t, s.ScheduleResume("en-es"))
	time.Sleep(80 * time.Millisecond)
	require.Zero(t, runner.callCount())

	conditions.set(true, true, 13072)
	select {
	case <-runner.resume:
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired after space was freed")
	}
}

func TestScheduler_RetriesFailedResume(t *testing.T) {
	states := newFakeStates(record("en-es"))
	runner := newFakeRunner()
	runner.err = errors.New("mirror unreachable")

	s := fastScheduler(states, nil)
	s.Attach(runner)

	require.NoError(t, s.ScheduleResume("en-es"))

	require.Eventually(t, func() bool { return runner.callCount() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_ScanSchedulesOrphanedRecords(t *testing.T) {
	states := newFakeStates(record("en-es"), record("en-fr"))
	runner := newFakeRunner()

	s := fastScheduler(states, nil)
	s.Attach(runner)

	require.NoError(t, s.Scan())
	require.Len(t, s.Jobs(), 2)

	fired := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case packID := <-runner.resume:
			fired[packID] = true
			states.remove(packID)
		case <-time.After(2 * time.Second):
			t.Fatal("scan jobs never fired")
		}
	}
	require.True(t, fired["en-es"])
	require.True(t, fired["en-fr"])
}

func TestScheduler_RunStopsOnContextCancel(t *testing.T) {
	states := newFakeStates(record("en-es"))
	s := fastScheduler(states, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let at least one scan pass schedule the orphaned record.
	require.Eventually(t, func() bool { return len(s.Jobs()) > 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Empty(t, s.Jobs())

	require.Error(t, s.ScheduleResume("en-fr"))
}

func TestSystemConditions(t *testing.T) {
	c := NewSystemConditions(t.TempDir())
	require.True(t, c.NetworkUnmetered())
	require.True(t, c.BatteryNotLow())
	require.Positive(t, c.FreeBytes())
}
