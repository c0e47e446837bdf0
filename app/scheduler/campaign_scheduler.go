// Package scheduler
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/amirphl/Kitsune/repository"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CampaignScheduler periodically re-dispatches every active campaign and
// serves immediate-run requests raised by campaign activation. At most one
// run per campaign is in flight at any time; an overlapping request is
// skipped, never queued. Runs for different campaigns proceed in parallel.
type CampaignScheduler struct {
	campaignRepo repository.CampaignRepository
	dispatch     businessflow.DispatchFlow
	logger       *log.Logger
	interval     time.Duration

	mu      sync.Mutex
	running map[uint]bool
	ctx     context.Context
}

func NewCampaignScheduler(
	campaignRepo repository.CampaignRepository,
	dispatch businessflow.DispatchFlow,
	interval time.Duration,
	logPath string,
) *CampaignScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	s := &CampaignScheduler{
		campaignRepo: campaignRepo,
		dispatch:     dispatch,
		interval:     interval,
		running:      make(map[uint]bool),
	}
	s.initSchedulerLogger(logPath)

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a rotating file
func (s *CampaignScheduler) initSchedulerLogger(logPath string) {
	if logPath == "" {
		logPath = filepath.Join("data", "scheduler.log")
	}
	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotator)
	// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
	s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *CampaignScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

// TriggerNow requests one immediate dispatch run for the campaign. If a run
// for that campaign is already in flight the request is a no-op.
func (s *CampaignScheduler) TriggerNow(campaignID uint) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	go s.launch(ctx, campaignID)
}

func (s *CampaignScheduler) runOnce(ctx context.Context) {
	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		s.logger.Printf("scheduler: list active campaigns failed: %v", err)
		return
	}
	if len(campaigns) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d active campaigns", len(campaigns))

	for _, camp := range campaigns {
		c := camp
		go s.launch(ctx, c.ID)
	}
}

// launch runs one campaign dispatch, holding the campaign's run lock for its
// full duration
func (s *CampaignScheduler) launch(ctx context.Context, campaignID uint) {
	if !s.tryAcquire(campaignID) {
		s.logger.Printf("scheduler: campaign id=%d run already in flight, skipping", campaignID)
		return
	}
	defer s.release(campaignID)

	result, err := s.dispatch.Run(ctx, campaignID)
	if err != nil {
		if businessflow.IsNoCapacity(err) {
			// result may be nil on the error path
			sent := 0
			if result != nil {
				sent = result.Sent
			}
			s.logger.Printf("scheduler: campaign id=%d aborted: no sending capacity (sent=%d)", campaignID, sent)
			return
		}
		s.logger.Printf("scheduler: campaign id=%d run failed: %v", campaignID, err)
		return
	}
	s.logger.Printf("scheduler: campaign id=%d run %s: candidates=%d sent=%d failed=%d",
		campaignID, result.State, result.Candidates, result.Sent, result.Failed)
}

func (s *CampaignScheduler) tryAcquire(campaignID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[campaignID] {
		return false
	}
	s.running[campaignID] = true
	return true
}

func (s *CampaignScheduler) release(campaignID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, campaignID)
}
