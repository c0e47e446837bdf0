// Package testing provides test utilities and database setup for testing the campaign platform
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/utils"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

func randomPhone() string {
	return fmt.Sprintf("+5511%09d", rand.Intn(900000000)+100000000)
}

// CreateTestPhoneNumber creates a sending number in the given status
func (tf *TestFixtures) CreateTestPhoneNumber(status models.PhoneStatus, dailyLimit int) (*models.PhoneNumber, error) {
	number := &models.PhoneNumber{
		Number:     randomPhone(),
		Name:       "Test Sender",
		Status:     status,
		DailyLimit: dailyLimit,
	}

	if err := tf.DB.DB.Create(number).Error; err != nil {
		return nil, fmt.Errorf("failed to create test phone number: %w", err)
	}
	return number, nil
}

// CreateTestPersonality creates a persona with the given tone and pacing speed
func (tf *TestFixtures) CreateTestPersonality(tone models.Tone, speed models.ResponseSpeed) (*models.Personality, error) {
	personality := &models.Personality{
		Name:          fmt.Sprintf("Test Persona %d", rand.Intn(10000)),
		Tone:          tone,
		ResponseSpeed: speed,
	}

	if err := tf.DB.DB.Create(personality).Error; err != nil {
		return nil, fmt.Errorf("failed to create test personality: %w", err)
	}
	return personality, nil
}

// CreateTestTemplate creates a message template with the given content and declared variables
func (tf *TestFixtures) CreateTestTemplate(content string, variables ...string) (*models.MessageTemplate, error) {
	template := &models.MessageTemplate{
		Name:      fmt.Sprintf("Test Template %d", rand.Intn(10000)),
		Content:   content,
		Variables: variables,
	}

	if err := tf.DB.DB.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create test template: %w", err)
	}
	return template, nil
}

// CreateTestContact creates a contact tagged with the given groups
func (tf *TestFixtures) CreateTestContact(name string, tags ...string) (*models.Contact, error) {
	contact := &models.Contact{
		Phone: randomPhone(),
		Tags:  tags,
	}
	if name != "" {
		contact.Name = &name
	}

	if err := tf.DB.DB.Create(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create test contact: %w", err)
	}
	return contact, nil
}

// CreateRecentlyContacted creates a contact whose last outbound contact was at the given time
func (tf *TestFixtures) CreateRecentlyContacted(lastContactAt time.Time, tags ...string) (*models.Contact, error) {
	contact, err := tf.CreateTestContact("", tags...)
	if err != nil {
		return nil, err
	}
	err = tf.DB.DB.Model(contact).UpdateColumn("last_contact_at", lastContactAt).Error
	if err != nil {
		return nil, fmt.Errorf("failed to stamp last_contact_at: %w", err)
	}
	contact.LastContactAt = &lastContactAt
	return contact, nil
}

// CreateTestCampaign creates a single-step campaign over the given resources
func (tf *TestFixtures) CreateTestCampaign(
	personality *models.Personality,
	template *models.MessageTemplate,
	numbers []*models.PhoneNumber,
	targetGroups []string,
	active bool,
) (*models.Campaign, error) {
	numberIDs := make(pq.Int64Array, 0, len(numbers))
	for _, n := range numbers {
		numberIDs = append(numberIDs, int64(n.ID))
	}

	campaign := &models.Campaign{
		Name:          fmt.Sprintf("Test Campaign %d", rand.Intn(10000)),
		PersonalityID: personality.ID,
		MessageSequence: models.MessageSequence{
			{TemplateID: template.ID},
		},
		TargetGroups:   targetGroups,
		PhoneNumberIDs: numberIDs,
		Active:         utils.ToPtr(active),
	}

	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create test campaign: %w", err)
	}
	return campaign, nil
}
