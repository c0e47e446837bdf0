// Package businessflow contains the core business logic and use cases for campaign dispatch workflows
package businessflow

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/repository"
	"github.com/amirphl/Kitsune/utils"
	"gorm.io/gorm"
)

// RunState is the state of one dispatch run
type RunState string

const (
	RunStateIdle        RunState = "idle"
	RunStateLoading     RunState = "loading"
	RunStateDispatching RunState = "dispatching"
	RunStateCompleted   RunState = "completed"
	RunStateAborted     RunState = "aborted"
)

// sendTimeout bounds every outbound channel call so a hung provider cannot
// stall a run forever
const sendTimeout = 30 * time.Second

// DispatchResult summarizes one dispatch run. Terminal state is not
// persisted; every scheduler tick starts a fresh run.
type DispatchResult struct {
	CampaignID uint
	State      RunState
	Reason     string
	Candidates int
	Sent       int
	Failed     int
}

// DispatchFlow executes one campaign dispatch run
type DispatchFlow interface {
	Run(ctx context.Context, campaignID uint) (*DispatchResult, error)
}

// DispatchFlowImpl implements the campaign dispatch business flow
type DispatchFlowImpl struct {
	campaignRepo repository.CampaignRepository
	phoneRepo    repository.PhoneNumberRepository
	templateRepo repository.MessageTemplateRepository
	contactRepo  repository.ContactRepository
	sender       MessageSender
	cache        HistoryCache
	db           *gorm.DB
	logger       *log.Logger
}

// NewDispatchFlow creates a new dispatch flow instance
func NewDispatchFlow(
	campaignRepo repository.CampaignRepository,
	phoneRepo repository.PhoneNumberRepository,
	templateRepo repository.MessageTemplateRepository,
	contactRepo repository.ContactRepository,
	sender MessageSender,
	cache HistoryCache,
	db *gorm.DB,
	logger *log.Logger,
) DispatchFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &DispatchFlowImpl{
		campaignRepo: campaignRepo,
		phoneRepo:    phoneRepo,
		templateRepo: templateRepo,
		contactRepo:  contactRepo,
		sender:       sender,
		cache:        cache,
		db:           db,
		logger:       logger,
	}
}

// Run executes one dispatch run for the campaign:
// Idle → Loading → Dispatching → {Completed, Aborted}.
// Recipients are processed one at a time to honor pacing; a send failure
// skips that recipient only and never aborts the run.
func (f *DispatchFlowImpl) Run(ctx context.Context, campaignID uint) (result *DispatchResult, err error) {
	started := utils.UTCNow()
	result = &DispatchResult{CampaignID: campaignID, State: RunStateIdle}

	defer func() {
		dispatchRunsTotal.WithLabelValues(string(result.State)).Inc()
		dispatchRunDuration.Observe(time.Since(started).Seconds())
	}()

	// Loading
	result.State = RunStateLoading
	campaign, err := f.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		result.State = RunStateAborted
		result.Reason = "load failed"
		return result, NewBusinessError("CAMPAIGN_LOAD_FAILED", "Failed to load campaign", err)
	}
	if campaign == nil {
		result.State = RunStateAborted
		result.Reason = "not found"
		return result, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if !campaign.IsActive() {
		result.State = RunStateCompleted
		result.Reason = "inactive"
		return result, nil
	}

	// Dispatching
	result.State = RunStateDispatching

	contacts, err := f.contactRepo.Eligible(ctx, campaign.TargetGroups, utils.UTCNowAdd(-utils.ContactCooldown), campaign.DailyLimit)
	if err != nil {
		result.State = RunStateAborted
		result.Reason = "recipient selection failed"
		return result, NewBusinessError("RECIPIENT_SELECTION_FAILED", "Failed to select recipients", err)
	}
	result.Candidates = len(contacts)

	pool, err := f.loadPool(ctx, campaign)
	if err != nil {
		result.State = RunStateAborted
		result.Reason = "pool load failed"
		return result, NewBusinessError("POOL_LOAD_FAILED", "Failed to load sending numbers", err)
	}
	if pool.Empty() {
		result.State = RunStateAborted
		result.Reason = "no capacity"
		f.logger.Printf("dispatch: campaign id=%d has no sending number with capacity", campaignID)
		return result, NewBusinessError("NO_CAPACITY", "No sending number with remaining capacity", ErrNoCapacity)
	}

	if len(campaign.MessageSequence) == 0 {
		result.State = RunStateCompleted
		result.Reason = "empty sequence"
		return result, nil
	}

	// Only the first step of the sequence is dispatched per run; step
	// conditions are treated as always true.
	step := campaign.MessageSequence[0]
	template, err := f.templateRepo.ByID(ctx, step.TemplateID)
	if err != nil {
		result.State = RunStateAborted
		result.Reason = "template load failed"
		return result, NewBusinessError("TEMPLATE_LOAD_FAILED", "Failed to load message template", err)
	}
	if template == nil {
		result.State = RunStateAborted
		result.Reason = "template missing"
		return result, NewBusinessError("TEMPLATE_NOT_FOUND", "Message template not found", ErrTemplateNotFound)
	}

	for i, contact := range contacts {
		if pool.Empty() {
			result.State = RunStateAborted
			result.Reason = "no capacity"
			f.logger.Printf("dispatch: campaign id=%d exhausted all sending numbers after %d sends", campaignID, result.Sent)
			return result, NewBusinessError("NO_CAPACITY", "All sending numbers exhausted mid-run", ErrNoCapacity)
		}

		number := pool.Next()
		text := RenderTemplate(template, contact, campaign.Personality)

		if err := f.send(ctx, number.Number, contact.Phone, text); err != nil {
			result.Failed++
			messagesTotal.WithLabelValues("campaign", "failure").Inc()
			f.logger.Printf("dispatch: campaign id=%d send to %s failed: %v", campaignID, contact.Phone, err)
			continue
		}

		if err := f.recordSend(ctx, number, contact, text); err != nil {
			// The message left the channel; the store write is what failed.
			f.logger.Printf("dispatch: campaign id=%d record send for %s failed: %v", campaignID, contact.Phone, err)
		}

		pool.MarkSent(number)
		result.Sent++
		messagesTotal.WithLabelValues("campaign", "success").Inc()

		if i < len(contacts)-1 {
			if err := waitPacing(ctx, PacingDelay(campaign.Personality)); err != nil {
				result.State = RunStateAborted
				result.Reason = "cancelled"
				return result, err
			}
		}
	}

	result.State = RunStateCompleted
	return result, nil
}

// loadPool resolves the campaign's number references into an in-run pool
func (f *DispatchFlowImpl) loadPool(ctx context.Context, campaign *models.Campaign) (*IdentityPool, error) {
	ids := make([]uint, 0, len(campaign.PhoneNumberIDs))
	for _, id := range campaign.PhoneNumberIDs {
		ids = append(ids, uint(id))
	}

	numbers, err := f.phoneRepo.ByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve campaign numbers: %w", err)
	}
	return NewIdentityPool(numbers), nil
}

// send performs one outbound call under the send timeout
func (f *DispatchFlowImpl) send(ctx context.Context, from, to, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return f.sender.SendMessage(sendCtx, from, to, text)
}

// recordSend commits the per-send mutations as one transaction: the number's
// counter and last_used_at, the outbound history entry, and the contact's
// last_contact_at
func (f *DispatchFlowImpl) recordSend(ctx context.Context, number *models.PhoneNumber, contact *models.Contact, text string) error {
	now := utils.UTCNow()

	err := f.withTx(ctx, func(txCtx context.Context) error {
		if err := f.phoneRepo.RecordSend(txCtx, number.ID, now); err != nil {
			return err
		}
		entry := &models.ConversationEntry{
			ContactID: contact.ID,
			Message:   text,
			Direction: models.DirectionOutbound,
			CreatedAt: now,
		}
		if err := f.contactRepo.AppendEntries(txCtx, entry); err != nil {
			return err
		}
		return f.contactRepo.TouchLastContact(txCtx, contact.ID, now)
	})
	if err != nil {
		return err
	}

	number.LastUsedAt = &now
	contact.LastContactAt = &now
	if f.cache != nil {
		f.cache.Invalidate(ctx, contact.ID)
	}
	return nil
}

func (f *DispatchFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
