package service

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

type Account struct {
	store store.Store
}

func NewAccount(s store.Store) *Account {
	return &Account{store: s}
}

// CreateOrUpdateUser upserts the profile of the caller and returns its id.
func (a *Account) CreateOrUpdateUser(ctx context.Context, id auth.Identity, input models.UserInput) (bson.ObjectID, error) {
	if err := requireIdentity(id); err != nil {
		return bson.ObjectID{}, err
	}
	input.Email = models.NormalizeEmail(input.Email)
	if err := global.Validate(input); err != nil {
		return bson.ObjectID{}, err
	}

	userID, err := a.store.Users().Upsert(ctx, id.Subject, input)
	return userID, wrap("upsert user", err)
}

// GetCurrentUser returns nil, nil for anonymous callers and unknown subjects.
func (a *Account) GetCurrentUser(ctx context.Context, id auth.Identity) (*models.User, error) {
	if !id.Authenticated() {
		return nil, nil
	}
	user, err := a.store.Users().GetBySubject(ctx, id.Subject)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get user", err)
	}
	return user, nil
}

// UpdateProfile patches the caller's profile. It fails with ErrNotFound until
// CreateOrUpdateUser has run once.
func (a *Account) UpdateProfile(ctx context.Context, id auth.Identity, update models.ProfileUpdate) (bson.ObjectID, error) {
	if err := requireIdentity(id); err != nil {
		return bson.ObjectID{}, err
	}
	if err := global.Validate(update); err != nil {
		return bson.ObjectID{}, err
	}

	userID, err := a.store.Users().Patch(ctx, id.Subject, update)
	return userID, wrap("update profile", err)
}
