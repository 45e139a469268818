package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User is the profile record of an identity subject, one per subject
type User struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string        `json:"user_id" bson:"user_id"`
	Name        string        `json:"name" bson:"name"`
	Email       string        `json:"email" bson:"email"`
	Phone       *string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Address     *string       `json:"address,omitempty" bson:"address,omitempty"`
	City        *string       `json:"city,omitempty" bson:"city,omitempty"`
	ZipCode     *string       `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
	Preferences []string      `json:"preferences,omitempty" bson:"preferences,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// UserInput is the full profile sent by createOrUpdateUser
type UserInput struct {
	Name        string   `json:"name" binding:"required" validate:"required,min=1,max=100"`
	Email       string   `json:"email" binding:"required" validate:"required,email"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	ZipCode     *string  `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	Preferences []string `json:"preferences,omitempty" validate:"omitempty,dive,max=50"`
}

// ProfileUpdate patches an existing profile. Email is not editable here.
type ProfileUpdate struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=500"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	ZipCode     *string  `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	Preferences []string `json:"preferences,omitempty" validate:"omitempty,dive,max=50"`
}

// Apply copies the input onto u. Optional fields absent from the input are kept.
func (in UserInput) Apply(u *User) {
	u.Name = in.Name
	u.Email = in.Email
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.Address != nil {
		u.Address = in.Address
	}
	if in.City != nil {
		u.City = in.City
	}
	if in.ZipCode != nil {
		u.ZipCode = in.ZipCode
	}
	if in.Preferences != nil {
		u.Preferences = in.Preferences
	}
	u.SetTimestamps()
}

// Fields returns the bson $set document for the input.
func (in UserInput) Fields() bson.D {
	set := bson.D{
		{Key: "name", Value: in.Name},
		{Key: "email", Value: in.Email},
	}
	if in.Phone != nil {
		set = append(set, bson.E{Key: "phone", Value: *in.Phone})
	}
	if in.Address != nil {
		set = append(set, bson.E{Key: "address", Value: *in.Address})
	}
	if in.City != nil {
		set = append(set, bson.E{Key: "city", Value: *in.City})
	}
	if in.ZipCode != nil {
		set = append(set, bson.E{Key: "zip_code", Value: *in.ZipCode})
	}
	if in.Preferences != nil {
		set = append(set, bson.E{Key: "preferences", Value: in.Preferences})
	}
	return append(set, bson.E{Key: "updated_at", Value: time.Now()})
}

func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = p.Phone
	}
	if p.Address != nil {
		u.Address = p.Address
	}
	if p.City != nil {
		u.City = p.City
	}
	if p.ZipCode != nil {
		u.ZipCode = p.ZipCode
	}
	if p.Preferences != nil {
		u.Preferences = p.Preferences
	}
	u.UpdatedAt = time.Now()
}

func (p ProfileUpdate) Fields() bson.D {
	set := bson.D{}
	if p.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *p.Name})
	}
	if p.Phone != nil {
		set = append(set, bson.E{Key: "phone", Value: *p.Phone})
	}
	if p.Address != nil {
		set = append(set, bson.E{Key: "address", Value: *p.Address})
	}
	if p.City != nil {
		set = append(set, bson.E{Key: "city", Value: *p.City})
	}
	if p.ZipCode != nil {
		set = append(set, bson.E{Key: "zip_code", Value: *p.ZipCode})
	}
	if p.Preferences != nil {
		set = append(set, bson.E{Key: "preferences", Value: p.Preferences})
	}
	return append(set, bson.E{Key: "updated_at", Value: time.Now()})
}

// SetTimestamps sets created_at on first call and always updates updated_at
func (u *User) SetTimestamps() {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
