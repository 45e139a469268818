package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
	"julianmorley.ca/con-plar/storefront/pkg/store/memory"
)

func TestEngagement_SubmitContact(t *testing.T) {
	ctx := context.Background()
	engagement := NewEngagement(memory.New())

	id, err := engagement.SubmitContact(ctx, models.ContactInput{
		Name:    "Alice",
		Email:   "  Alice@Example.com ",
		Subject: "Sizing",
		Message: "Does the dress run small?",
	})
	require.NoError(t, err)

	contacts, err := engagement.ListContacts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, id, contacts[0].ID)
	assert.Equal(t, models.ContactStatusNew, contacts[0].Status)
	assert.Equal(t, "alice@example.com", contacts[0].Email)

	_, err = engagement.SubmitContact(ctx, models.ContactInput{Name: "Bob", Email: "bob@example.com"})
	assert.ErrorIs(t, err, global.ErrValidation)
}

func TestEngagement_ListContactsNewestFirst(t *testing.T) {
	ctx := context.Background()
	engagement := NewEngagement(memory.New())

	for i := 0; i < 55; i++ {
		_, err := engagement.SubmitContact(ctx, models.ContactInput{
			Name:    "Visitor",
			Email:   "visitor@example.com",
			Subject: fmt.Sprintf("message %d", i),
			Message: "hello",
		})
		require.NoError(t, err)
	}

	contacts, err := engagement.ListContacts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, contacts, DefaultContactLimit)
	assert.Equal(t, "message 54", contacts[0].Subject)
	assert.Equal(t, "message 5", contacts[len(contacts)-1].Subject)
}

func TestEngagement_SubscribeNewsletter(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	engagement := NewEngagement(s)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	engagement.now = func() time.Time { return clock }

	first, err := engagement.SubscribeNewsletter(ctx, " Fan@Example.com ")
	require.NoError(t, err)

	again, err := engagement.SubscribeNewsletter(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	sub, err := s.Newsletters().GetByEmail(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.True(t, clock.Equal(sub.SubscribedAt))

	_, err = engagement.UnsubscribeNewsletter(ctx, "fan@example.com")
	require.NoError(t, err)
	sub, err = s.Newsletters().GetByEmail(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.False(t, sub.Active)

	clock = clock.Add(48 * time.Hour)
	reactivated, err := engagement.SubscribeNewsletter(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.Equal(t, first, reactivated)

	sub, err = s.Newsletters().GetByEmail(ctx, "fan@example.com")
	require.NoError(t, err)
	assert.True(t, sub.Active)
	assert.True(t, clock.Equal(sub.SubscribedAt))
}

func TestEngagement_NewsletterRejects(t *testing.T) {
	ctx := context.Background()
	engagement := NewEngagement(memory.New())

	_, err := engagement.SubscribeNewsletter(ctx, "not an email")
	assert.ErrorIs(t, err, global.ErrValidation)

	_, err = engagement.UnsubscribeNewsletter(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, global.ErrNotFound)
}

// collidingStore never finds a subscription and always reports the email as taken.
type collidingStore struct {
	*memory.Store
	inserts *int
}

func (c collidingStore) Newsletters() store.NewsletterRepository {
	return collidingNewsletters{NewsletterRepository: c.Store.Newsletters(), inserts: c.inserts}
}

type collidingNewsletters struct {
	store.NewsletterRepository
	inserts *int
}

func (n collidingNewsletters) GetByEmail(ctx context.Context, email string) (*models.Newsletter, error) {
	return nil, fmt.Errorf("newsletter %s: %w", email, global.ErrNotFound)
}

func (n collidingNewsletters) Insert(ctx context.Context, sub *models.Newsletter) error {
	*n.inserts++
	return fmt.Errorf("email %s: %w", sub.Email, store.ErrDuplicateKey)
}

func TestEngagement_SubscribeNewsletterRetriesOnce(t *testing.T) {
	inserts := 0
	engagement := NewEngagement(collidingStore{Store: memory.New(), inserts: &inserts})

	_, err := engagement.SubscribeNewsletter(context.Background(), "fan@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrDuplicateKey))
	assert.Equal(t, 2, inserts)
}
