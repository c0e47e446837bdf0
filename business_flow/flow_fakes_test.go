package businessflow

import (
	"context"
	"sync"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/google/uuid"
)

// In-memory repository fakes shared by the flow tests. Writes mutate the
// shared model pointers the same way the real repositories reload them.

type fakePhoneRepo struct {
	mu      sync.Mutex
	nextID  uint
	numbers map[uint]*models.PhoneNumber
}

func newFakePhoneRepo(numbers ...*models.PhoneNumber) *fakePhoneRepo {
	r := &fakePhoneRepo{numbers: make(map[uint]*models.PhoneNumber)}
	for _, n := range numbers {
		if n.ID == 0 {
			r.nextID++
			n.ID = r.nextID
		} else if n.ID > r.nextID {
			r.nextID = n.ID
		}
		if n.UUID == uuid.Nil {
			n.UUID = uuid.New()
		}
		r.numbers[n.ID] = n
	}
	return r
}

func (r *fakePhoneRepo) ByID(ctx context.Context, id uint) (*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.numbers[id], nil
}

func (r *fakePhoneRepo) ByFilter(ctx context.Context, filter models.PhoneNumberFilter, orderBy string, limit, offset int) ([]*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.PhoneNumber, 0, len(r.numbers))
	for _, n := range r.numbers {
		out = append(out, n)
	}
	return out, nil
}

func (r *fakePhoneRepo) Save(ctx context.Context, entity *models.PhoneNumber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entity.ID = r.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.numbers[entity.ID] = entity
	return nil
}

func (r *fakePhoneRepo) Update(ctx context.Context, entity *models.PhoneNumber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.numbers[entity.ID] = entity
	return nil
}

func (r *fakePhoneRepo) ByUUID(ctx context.Context, id string) (*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.numbers {
		if n.UUID.String() == id {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakePhoneRepo) ByNumber(ctx context.Context, number string) (*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.numbers {
		if n.Number == number {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakePhoneRepo) ByIDs(ctx context.Context, ids []uint) ([]*models.PhoneNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.PhoneNumber, 0, len(ids))
	for _, id := range ids {
		if n, ok := r.numbers[id]; ok {
			// Return copies like the real repository returns fresh DB rows,
			// so in-run mutations (IdentityPool.MarkSent) don't alias the
			// stored numbers that RecordSend increments.
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakePhoneRepo) RecordSend(ctx context.Context, id uint, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.numbers[id]; ok {
		n.SentToday++
		n.LastUsedAt = &usedAt
	}
	return nil
}

func (r *fakePhoneRepo) IncrementSentToday(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.numbers[id]; ok {
		n.SentToday++
	}
	return nil
}

type fakePersonalityRepo struct {
	mu            sync.Mutex
	nextID        uint
	personalities map[uint]*models.Personality
}

func newFakePersonalityRepo(items ...*models.Personality) *fakePersonalityRepo {
	r := &fakePersonalityRepo{personalities: make(map[uint]*models.Personality)}
	for _, p := range items {
		if p.ID == 0 {
			r.nextID++
			p.ID = r.nextID
		} else if p.ID > r.nextID {
			r.nextID = p.ID
		}
		if p.UUID == uuid.Nil {
			p.UUID = uuid.New()
		}
		r.personalities[p.ID] = p
	}
	return r
}

func (r *fakePersonalityRepo) ByID(ctx context.Context, id uint) (*models.Personality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.personalities[id], nil
}

func (r *fakePersonalityRepo) ByFilter(ctx context.Context, filter models.PersonalityFilter, orderBy string, limit, offset int) ([]*models.Personality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Personality, 0, len(r.personalities))
	for _, p := range r.personalities {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePersonalityRepo) Save(ctx context.Context, entity *models.Personality) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entity.ID = r.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.personalities[entity.ID] = entity
	return nil
}

func (r *fakePersonalityRepo) Update(ctx context.Context, entity *models.Personality) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.personalities[entity.ID] = entity
	return nil
}

func (r *fakePersonalityRepo) ByUUID(ctx context.Context, id string) (*models.Personality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.personalities {
		if p.UUID.String() == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	nextID    uint
	templates map[uint]*models.MessageTemplate
}

func newFakeTemplateRepo(items ...*models.MessageTemplate) *fakeTemplateRepo {
	r := &fakeTemplateRepo{templates: make(map[uint]*models.MessageTemplate)}
	for _, t := range items {
		if t.ID == 0 {
			r.nextID++
			t.ID = r.nextID
		} else if t.ID > r.nextID {
			r.nextID = t.ID
		}
		if t.UUID == uuid.Nil {
			t.UUID = uuid.New()
		}
		r.templates[t.ID] = t
	}
	return r
}

func (r *fakeTemplateRepo) ByID(ctx context.Context, id uint) (*models.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.templates[id], nil
}

func (r *fakeTemplateRepo) ByFilter(ctx context.Context, filter models.MessageTemplateFilter, orderBy string, limit, offset int) ([]*models.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MessageTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTemplateRepo) Save(ctx context.Context, entity *models.MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entity.ID = r.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.templates[entity.ID] = entity
	return nil
}

func (r *fakeTemplateRepo) Update(ctx context.Context, entity *models.MessageTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[entity.ID] = entity
	return nil
}

func (r *fakeTemplateRepo) ByUUID(ctx context.Context, id string) (*models.MessageTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.UUID.String() == id {
			return t, nil
		}
	}
	return nil, nil
}

type fakeCampaignRepo struct {
	mu        sync.Mutex
	nextID    uint
	campaigns map[uint]*models.Campaign
}

func newFakeCampaignRepo(items ...*models.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{campaigns: make(map[uint]*models.Campaign)}
	for _, c := range items {
		if c.ID == 0 {
			r.nextID++
			c.ID = r.nextID
		} else if c.ID > r.nextID {
			r.nextID = c.ID
		}
		if c.UUID == uuid.Nil {
			c.UUID = uuid.New()
		}
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.campaigns[id], nil
}

func (r *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCampaignRepo) Save(ctx context.Context, entity *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entity.ID = r.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.campaigns[entity.ID] = entity
	return nil
}

func (r *fakeCampaignRepo) Update(ctx context.Context, entity *models.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[entity.ID] = entity
	return nil
}

func (r *fakeCampaignRepo) ByUUID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.campaigns {
		if c.UUID.String() == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) ListActive(ctx context.Context) ([]*models.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Campaign, 0)
	for _, c := range r.campaigns {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) SetActive(ctx context.Context, id uint, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.campaigns[id]; ok {
		c.Active = &active
	}
	return nil
}

type fakeContactRepo struct {
	mu       sync.Mutex
	nextID   uint
	contacts map[uint]*models.Contact
	entries  []*models.ConversationEntry

	// eligible is returned by Eligible as-is
	eligible []*models.Contact
}

func newFakeContactRepo(contacts ...*models.Contact) *fakeContactRepo {
	r := &fakeContactRepo{contacts: make(map[uint]*models.Contact)}
	for _, c := range contacts {
		if c.ID == 0 {
			r.nextID++
			c.ID = r.nextID
		} else if c.ID > r.nextID {
			r.nextID = c.ID
		}
		if c.UUID == uuid.Nil {
			c.UUID = uuid.New()
		}
		r.contacts[c.ID] = c
	}
	return r
}

func (r *fakeContactRepo) ByID(ctx context.Context, id uint) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contacts[id], nil
}

func (r *fakeContactRepo) ByFilter(ctx context.Context, filter models.ContactFilter, orderBy string, limit, offset int) ([]*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Contact, 0, len(r.contacts))
	for _, c := range r.contacts {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeContactRepo) Save(ctx context.Context, entity *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entity.ID = r.nextID
	if entity.UUID == uuid.Nil {
		entity.UUID = uuid.New()
	}
	r.contacts[entity.ID] = entity
	return nil
}

func (r *fakeContactRepo) Update(ctx context.Context, entity *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[entity.ID] = entity
	return nil
}

func (r *fakeContactRepo) ByUUID(ctx context.Context, id string) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.UUID.String() == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeContactRepo) ByPhone(ctx context.Context, phone string) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.Phone == phone {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeContactRepo) Eligible(ctx context.Context, anyTag []string, cutoff time.Time, limit int) ([]*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.eligible, nil
}

func (r *fakeContactRepo) AppendEntries(ctx context.Context, entries ...*models.ConversationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeContactRepo) RecentEntries(ctx context.Context, contactID uint, n int) ([]*models.ConversationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.ConversationEntry
	for _, e := range r.entries {
		if e.ContactID == contactID {
			all = append(all, e)
		}
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

func (r *fakeContactRepo) TouchLastContact(ctx context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.contacts[id]; ok {
		c.LastContactAt = &at
	}
	return nil
}

func (r *fakeContactRepo) allEntries() []*models.ConversationEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ConversationEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *fakeContactRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contacts)
}

// scriptedSender returns the scripted error for each call in order; calls
// past the script succeed. Successful sends are recorded.
type sentMessage struct {
	from, to, text string
}

type scriptedSender struct {
	mu    sync.Mutex
	errs  []error
	calls int
	sent  []sentMessage
}

func (s *scriptedSender) SendMessage(ctx context.Context, from, to, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.calls < len(s.errs) {
		err = s.errs[s.calls]
	}
	s.calls++
	if err != nil {
		return err
	}
	s.sent = append(s.sent, sentMessage{from: from, to: to, text: text})
	return nil
}

type fakeRegistrar struct {
	mu         sync.Mutex
	registered []string
	err        error
}

func (f *fakeRegistrar) RegisterNumber(ctx context.Context, number string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, number)
	return nil
}

type fakeTrigger struct {
	mu        sync.Mutex
	triggered []uint
}

func (f *fakeTrigger) TriggerNow(campaignID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggered = append(f.triggered, campaignID)
}
