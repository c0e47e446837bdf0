package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/repository"
	"github.com/amirphl/Kitsune/utils"
	"gorm.io/gorm"
)

// InboundMessage is one message received on a registered number
type InboundMessage struct {
	From string
	To   string
	Text string
}

// InboundResult reports how an inbound message was handled
type InboundResult struct {
	ContactID      uint
	ContactCreated bool
	Reply          string
}

// ConversationFlow handles inbound messages and produces automated replies
type ConversationFlow interface {
	HandleInbound(ctx context.Context, msg *InboundMessage) (*InboundResult, error)
}

// ConversationFlowImpl implements the inbound conversation business flow
type ConversationFlowImpl struct {
	phoneRepo   repository.PhoneNumberRepository
	contactRepo repository.ContactRepository
	sender      MessageSender
	cache       HistoryCache
	db          *gorm.DB
	logger      *log.Logger

	// contactLocks serializes concurrent inbound messages from the same
	// sender so their history entries commit in arrival order
	contactLocks *keyedMutex
}

// NewConversationFlow creates a new conversation flow instance
func NewConversationFlow(
	phoneRepo repository.PhoneNumberRepository,
	contactRepo repository.ContactRepository,
	sender MessageSender,
	cache HistoryCache,
	db *gorm.DB,
	logger *log.Logger,
) ConversationFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &ConversationFlowImpl{
		phoneRepo:    phoneRepo,
		contactRepo:  contactRepo,
		sender:       sender,
		cache:        cache,
		db:           db,
		logger:       logger,
		contactLocks: newKeyedMutex(),
	}
}

// HandleInbound validates the message, finds or creates the contact, computes
// a reply from the recent conversation context, sends it from the receiving
// number and commits everything in one transaction at the end, including the
// contact itself when it is new. Nothing is persisted when validation or the
// send fails.
func (f *ConversationFlowImpl) HandleInbound(ctx context.Context, msg *InboundMessage) (*InboundResult, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		inboundEventsTotal.WithLabelValues("rejected_empty").Inc()
		return nil, NewBusinessError("EMPTY_INBOUND_TEXT", "Inbound message text is empty", ErrEmptyInboundText)
	}

	number, err := f.phoneRepo.ByNumber(ctx, msg.To)
	if err != nil {
		inboundEventsTotal.WithLabelValues("lookup_failed").Inc()
		return nil, NewBusinessError("NUMBER_LOOKUP_FAILED", "Failed to look up receiving number", err)
	}
	if number == nil {
		inboundEventsTotal.WithLabelValues("unregistered_number").Inc()
		return nil, NewBusinessError("UNREGISTERED_NUMBER", "Receiving number is not registered", ErrUnregisteredNumber)
	}

	unlock := f.contactLocks.Lock(msg.From)
	defer unlock()

	contact, created, err := f.resolveContact(ctx, msg.From)
	if err != nil {
		inboundEventsTotal.WithLabelValues("contact_failed").Inc()
		return nil, NewBusinessError("CONTACT_RESOLVE_FAILED", "Failed to resolve contact", err)
	}

	var history []*models.ConversationEntry
	if !created {
		history = f.recentHistory(ctx, contact.ID)
	}

	name := ""
	if contact.Name != nil {
		name = *contact.Name
	}
	reply := Reply(name, text, history)

	if err := f.send(ctx, number.Number, contact.Phone, reply); err != nil {
		inboundEventsTotal.WithLabelValues("send_failed").Inc()
		f.logger.Printf("conversation: reply to %s failed: %v", contact.Phone, err)
		return nil, NewBusinessError("REPLY_SEND_FAILED", "Failed to send reply", err)
	}

	now := utils.UTCNow()
	err = f.withTx(ctx, func(txCtx context.Context) error {
		if created {
			if err := f.contactRepo.Save(txCtx, contact); err != nil {
				return err
			}
		}
		entries := []*models.ConversationEntry{
			{ContactID: contact.ID, Message: text, Direction: models.DirectionInbound, CreatedAt: now},
			{ContactID: contact.ID, Message: reply, Direction: models.DirectionOutbound, CreatedAt: now},
		}
		if err := f.contactRepo.AppendEntries(txCtx, entries...); err != nil {
			return err
		}
		if err := f.contactRepo.TouchLastContact(txCtx, contact.ID, now); err != nil {
			return err
		}
		return f.phoneRepo.IncrementSentToday(txCtx, number.ID)
	})
	if err != nil {
		inboundEventsTotal.WithLabelValues("store_failed").Inc()
		f.logger.Printf("conversation: store for %s failed after reply was sent: %v", contact.Phone, err)
		return nil, NewBusinessError("CONVERSATION_STORE_FAILED", "Failed to store conversation entries", err)
	}

	if f.cache != nil {
		f.cache.Invalidate(ctx, contact.ID)
	}

	inboundEventsTotal.WithLabelValues("handled").Inc()
	messagesTotal.WithLabelValues("reply", "success").Inc()

	return &InboundResult{
		ContactID:      contact.ID,
		ContactCreated: created,
		Reply:          reply,
	}, nil
}

// resolveContact returns the known contact for the phone, or an unsaved new
// one. A new contact is only committed together with the exchange it belongs
// to; a failed reply send must not leave a contact row behind.
func (f *ConversationFlowImpl) resolveContact(ctx context.Context, phone string) (*models.Contact, bool, error) {
	contact, err := f.contactRepo.ByPhone(ctx, phone)
	if err != nil {
		return nil, false, err
	}
	if contact != nil {
		return contact, false, nil
	}
	return &models.Contact{Phone: phone}, true, nil
}

// recentHistory returns the last few conversation entries, consulting the
// cache first. History is advisory context for the reply rules; a read
// failure degrades to an empty context instead of rejecting the message.
func (f *ConversationFlowImpl) recentHistory(ctx context.Context, contactID uint) []*models.ConversationEntry {
	if f.cache != nil {
		if entries, ok := f.cache.RecentEntries(ctx, contactID); ok {
			return entries
		}
	}

	entries, err := f.contactRepo.RecentEntries(ctx, contactID, utils.ConversationContextSize)
	if err != nil {
		f.logger.Printf("conversation: history read for contact id=%d failed: %v", contactID, err)
		return nil
	}
	if f.cache != nil {
		f.cache.Store(ctx, contactID, entries)
	}
	return entries
}

func (f *ConversationFlowImpl) send(ctx context.Context, from, to, text string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	return f.sender.SendMessage(sendCtx, from, to, text)
}

func (f *ConversationFlowImpl) withTx(ctx context.Context, fn func(context.Context) error) error {
	if f.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, f.db, fn)
}
