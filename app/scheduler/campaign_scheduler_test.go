package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingDispatch counts runs and optionally holds each run until released
type blockingDispatch struct {
	mu      sync.Mutex
	runs    map[uint]int
	started chan uint
	release chan struct{}
}

func newBlockingDispatch(blocking bool) *blockingDispatch {
	d := &blockingDispatch{
		runs:    make(map[uint]int),
		started: make(chan uint, 16),
	}
	if blocking {
		d.release = make(chan struct{})
	}
	return d
}

func (d *blockingDispatch) Run(ctx context.Context, campaignID uint) (*businessflow.DispatchResult, error) {
	d.mu.Lock()
	d.runs[campaignID]++
	d.mu.Unlock()
	d.started <- campaignID

	if d.release != nil {
		<-d.release
	}
	return &businessflow.DispatchResult{CampaignID: campaignID, State: businessflow.RunStateCompleted}, nil
}

func (d *blockingDispatch) runCount(campaignID uint) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs[campaignID]
}

type stubCampaignRepo struct {
	active []*models.Campaign
}

func (r *stubCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	for _, c := range r.active {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	return r.active, nil
}

func (r *stubCampaignRepo) Save(ctx context.Context, entity *models.Campaign) error   { return nil }
func (r *stubCampaignRepo) Update(ctx context.Context, entity *models.Campaign) error { return nil }

func (r *stubCampaignRepo) ByUUID(ctx context.Context, id string) (*models.Campaign, error) {
	for _, c := range r.active {
		if c.UUID.String() == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubCampaignRepo) ListActive(ctx context.Context) ([]*models.Campaign, error) {
	return r.active, nil
}

func (r *stubCampaignRepo) SetActive(ctx context.Context, id uint, active bool) error { return nil }

// erringDispatch returns a nil result alongside its error, which the
// DispatchFlow contract allows
type erringDispatch struct {
	mu   sync.Mutex
	runs int
	err  error
}

func (d *erringDispatch) Run(ctx context.Context, campaignID uint) (*businessflow.DispatchResult, error) {
	d.mu.Lock()
	d.runs++
	d.mu.Unlock()
	return nil, d.err
}

func (d *erringDispatch) runCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs
}

func newTestScheduler(t *testing.T, dispatch businessflow.DispatchFlow, repo *stubCampaignRepo) *CampaignScheduler {
	t.Helper()
	return NewCampaignScheduler(repo, dispatch, time.Hour, filepath.Join(t.TempDir(), "scheduler.log"))
}

func activeCampaign(id uint) *models.Campaign {
	return &models.Campaign{ID: id, UUID: uuid.New(), Name: "Launch", Active: utils.ToPtr(true)}
}

func TestSchedulerSkipsOverlappingRun(t *testing.T) {
	dispatch := newBlockingDispatch(true)
	s := newTestScheduler(t, dispatch, &stubCampaignRepo{})

	go s.launch(context.Background(), 1)

	select {
	case <-dispatch.started:
	case <-time.After(time.Second):
		t.Fatal("first run never started")
	}

	// Second launch while the first holds the run lock is a no-op.
	s.launch(context.Background(), 1)
	assert.Equal(t, 1, dispatch.runCount(1))

	close(dispatch.release)

	// Once the lock is released a new run proceeds.
	require.Eventually(t, func() bool {
		s.launch(context.Background(), 1)
		return dispatch.runCount(1) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestSchedulerRunsDifferentCampaignsInParallel(t *testing.T) {
	dispatch := newBlockingDispatch(true)
	s := newTestScheduler(t, dispatch, &stubCampaignRepo{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); s.launch(context.Background(), 1) }()
	go func() { defer wg.Done(); s.launch(context.Background(), 2) }()

	for i := 0; i < 2; i++ {
		select {
		case <-dispatch.started:
		case <-time.After(time.Second):
			t.Fatal("runs did not start in parallel")
		}
	}
	close(dispatch.release)
	// Wait for both launches to finish logging before TempDir cleanup runs.
	wg.Wait()

	assert.Equal(t, 1, dispatch.runCount(1))
	assert.Equal(t, 1, dispatch.runCount(2))
}

func TestSchedulerTriggerNow(t *testing.T) {
	dispatch := newBlockingDispatch(false)
	s := newTestScheduler(t, dispatch, &stubCampaignRepo{})

	s.TriggerNow(7)

	require.Eventually(t, func() bool {
		return dispatch.runCount(7) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSchedulerNoCapacityWithNilResult(t *testing.T) {
	dispatch := &erringDispatch{err: businessflow.ErrNoCapacity}
	s := newTestScheduler(t, dispatch, &stubCampaignRepo{})

	require.NotPanics(t, func() { s.launch(context.Background(), 7) })

	// The run lock is released after the aborted run.
	s.launch(context.Background(), 7)
	assert.Equal(t, 2, dispatch.runCount())
}

func TestSchedulerRunOnceLaunchesEveryActiveCampaign(t *testing.T) {
	dispatch := newBlockingDispatch(false)
	repo := &stubCampaignRepo{active: []*models.Campaign{activeCampaign(1), activeCampaign(2)}}
	s := newTestScheduler(t, dispatch, repo)

	s.runOnce(context.Background())

	require.Eventually(t, func() bool {
		return dispatch.runCount(1) == 1 && dispatch.runCount(2) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSchedulerStartRunsImmediately(t *testing.T) {
	dispatch := newBlockingDispatch(false)
	repo := &stubCampaignRepo{active: []*models.Campaign{activeCampaign(1)}}
	s := newTestScheduler(t, dispatch, repo)

	stop := s.Start(context.Background())
	defer stop()

	require.Eventually(t, func() bool {
		return dispatch.runCount(1) == 1
	}, time.Second, 10*time.Millisecond)
}
