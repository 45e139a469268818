package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

const DefaultContactLimit = 50

type Engagement struct {
	store store.Store
	now   func() time.Time
}

func NewEngagement(s store.Store) *Engagement {
	return &Engagement{store: s, now: time.Now}
}

// SubmitContact stores a contact form message with status "new".
func (e *Engagement) SubmitContact(ctx context.Context, input models.ContactInput) (bson.ObjectID, error) {
	input.Email = models.NormalizeEmail(input.Email)
	if err := global.Validate(input); err != nil {
		return bson.ObjectID{}, err
	}

	contact := input.ToContact()
	if err := e.store.Contacts().Insert(ctx, contact); err != nil {
		return bson.ObjectID{}, wrap("insert contact", err)
	}
	return contact.ID, nil
}

// SubscribeNewsletter returns the subscription id for email. An inactive
// subscription is reactivated with a fresh timestamp; an active one is left as is.
func (e *Engagement) SubscribeNewsletter(ctx context.Context, email string) (bson.ObjectID, error) {
	email, err := normalizeSubscriber(email)
	if err != nil {
		return bson.ObjectID{}, err
	}

	id, err := e.subscribe(ctx, email)
	if errors.Is(err, store.ErrDuplicateKey) {
		// Lost a race with a concurrent subscribe of the same address.
		id, err = e.subscribe(ctx, email)
	}
	return id, err
}

func (e *Engagement) subscribe(ctx context.Context, email string) (bson.ObjectID, error) {
	existing, err := e.store.Newsletters().GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.Active {
			if err := e.store.Newsletters().Reactivate(ctx, existing.ID, e.now()); err != nil {
				return bson.ObjectID{}, wrap("reactivate subscription", err)
			}
		}
		return existing.ID, nil
	case !isNotFound(err):
		return bson.ObjectID{}, wrap("find subscription", err)
	}

	sub := &models.Newsletter{
		ID:           bson.NewObjectID(),
		Email:        email,
		SubscribedAt: e.now(),
		Active:       true,
	}
	if err := e.store.Newsletters().Insert(ctx, sub); err != nil {
		return bson.ObjectID{}, wrap("insert subscription", err)
	}
	return sub.ID, nil
}

// UnsubscribeNewsletter marks the subscription inactive. The record is kept so a
// later subscribe reuses it.
func (e *Engagement) UnsubscribeNewsletter(ctx context.Context, email string) (bson.ObjectID, error) {
	email, err := normalizeSubscriber(email)
	if err != nil {
		return bson.ObjectID{}, err
	}

	existing, err := e.store.Newsletters().GetByEmail(ctx, email)
	if err != nil {
		return bson.ObjectID{}, wrap("find subscription", err)
	}
	if existing.Active {
		if err := e.store.Newsletters().Deactivate(ctx, existing.ID); err != nil {
			return bson.ObjectID{}, wrap("deactivate subscription", err)
		}
	}
	return existing.ID, nil
}

// ListContacts returns the newest contact messages first.
func (e *Engagement) ListContacts(ctx context.Context, limit int) ([]models.Contact, error) {
	if limit <= 0 {
		limit = DefaultContactLimit
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	contacts, err := e.store.Contacts().ListRecent(ctx, limit)
	return contacts, wrap("list contacts", err)
}

func normalizeSubscriber(email string) (string, error) {
	req := models.NewsletterRequest{Email: models.NormalizeEmail(email)}
	if err := global.Validate(req); err != nil {
		return "", err
	}
	return req.Email, nil
}
