package jobs

import (
	"errors"
	"sync"
	"testing"
	"time"

	"ytsbrowser/database"
	"ytsbrowser/models"
	"ytsbrowser/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct {
	mu      sync.Mutex
	calls   int
	lastAge time.Duration
	err     error
}

func (p *countingPruner) DeleteOldEvents(olderThan time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.lastAge = olderThan
	return 0, p.err
}

func (p *countingPruner) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func setupTestJobManager(t *testing.T) (*JobManager, *countingPruner, func()) {
	pruner := &countingPruner{}
	jm := NewJobManager(NewRetentionJob(pruner, 24*time.Hour), 10*time.Millisecond)

	cleanup := func() {
		if jm.IsRunning() {
			jm.Stop()
		}
		jm.Wait()
	}

	return jm, pruner, cleanup
}

func TestJobManager_NewJobManager(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t)
	defer cleanup()

	assert.NotNil(t, jm)
	assert.NotNil(t, jm.retentionJob)
	assert.False(t, jm.IsRunning())
	assert.Equal(t, 10*time.Millisecond, jm.interval)
}

func TestJobManager_DefaultInterval(t *testing.T) {
	jm := NewJobManager(nil, 0)
	assert.Equal(t, time.Hour, jm.interval)
}

func TestJobManager_StartStop(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t)
	defer cleanup()

	jm.Start()
	assert.True(t, jm.IsRunning())

	jm.Stop()
	assert.False(t, jm.IsRunning())
}

func TestJobManager_DoubleStartAndStop(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t)
	defer cleanup()

	jm.Start()
	jm.Start() // Second start should be ignored
	assert.True(t, jm.IsRunning())

	jm.Stop()
	jm.Stop() // Second stop should be ignored
	assert.False(t, jm.IsRunning())
}

func TestJobManager_StopWithoutStart(t *testing.T) {
	jm, _, cleanup := setupTestJobManager(t)
	defer cleanup()

	jm.Stop()
	assert.False(t, jm.IsRunning())
}

func TestJobManager_RunsPeriodically(t *testing.T) {
	jm, pruner, cleanup := setupTestJobManager(t)
	defer cleanup()

	jm.Start()
	assert.Eventually(t, func() bool { return pruner.Calls() >= 3 }, 2*time.Second, 5*time.Millisecond)
	jm.Stop()

	assert.Equal(t, 24*time.Hour, pruner.lastAge)
}

func TestJobManager_RestartAfterStop(t *testing.T) {
	jm, pruner, cleanup := setupTestJobManager(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		before := pruner.Calls()
		jm.Start()
		assert.Eventually(t, func() bool { return pruner.Calls() > before }, 2*time.Second, 5*time.Millisecond)
		jm.Stop()
	}
}

func TestJobManager_RunNow(t *testing.T) {
	jm, pruner, cleanup := setupTestJobManager(t)
	defer cleanup()

	jm.RunNow()
	jm.RunNow()
	jm.Wait()

	assert.Equal(t, 2, pruner.Calls())
}

func TestJobManager_RunNowDuringStartStop(t *testing.T) {
	jm, pruner, cleanup := setupTestJobManager(t)
	defer cleanup()

	const callers = 20
	var callersWG sync.WaitGroup
	for i := 0; i < callers; i++ {
		callersWG.Add(1)
		go func() {
			defer callersWG.Done()
			jm.RunNow()
		}()
	}
	for i := 0; i < 5; i++ {
		jm.Start()
		jm.Stop()
		jm.Wait()
	}

	callersWG.Wait()
	jm.Wait()

	assert.GreaterOrEqual(t, pruner.Calls(), callers)
	assert.False(t, jm.IsRunning())
}

func TestJobManager_NilRetentionJob(t *testing.T) {
	jm := NewJobManager(nil, time.Millisecond)

	// These operations should not panic even with nil job
	jm.RunNow()
	jm.Start()
	assert.True(t, jm.IsRunning())
	jm.Stop()
	assert.False(t, jm.IsRunning())
}

func TestRetentionJob_Errors(t *testing.T) {
	assert.Error(t, NewRetentionJob(nil, time.Hour).Run())

	failing := &countingPruner{err: errors.New("disk full")}
	err := NewRetentionJob(failing, time.Hour).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRetentionJob_DisabledRetention(t *testing.T) {
	pruner := &countingPruner{}

	assert.NoError(t, NewRetentionJob(pruner, 0).Run())
	assert.Zero(t, pruner.Calls())
}

func TestRetentionJob_WithRepository(t *testing.T) {
	testDB, err := database.NewDB(":memory:")
	require.NoError(t, err)
	defer func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Failed to close test database: %v", err)
		}
	}()
	require.NoError(t, testDB.InitSchema())

	repo := repository.NewViewEventRepository(testDB)
	require.NoError(t, repo.Create(&models.ViewEvent{
		MovieID:   "1",
		RouteName: "MovieDetail",
		Path:      "/movie/1",
		CreatedAt: time.Now().Add(-72 * time.Hour),
	}))
	require.NoError(t, repo.Create(&models.ViewEvent{
		MovieID:   "2",
		RouteName: "MovieDetail",
		Path:      "/movie/2",
	}))

	require.NoError(t, NewRetentionJob(repo, 24*time.Hour).Run())

	recent, err := repo.RecentMovies(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "2", recent[0].MovieID)
}
