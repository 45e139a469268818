package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusResponded ContactStatus = "responded"
	ContactStatusClosed    ContactStatus = "closed"
)

// Contact is a message left through the contact form
type Contact struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name"`
	Email     string        `json:"email" bson:"email"`
	Phone     *string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Subject   string        `json:"subject" bson:"subject"`
	Message   string        `json:"message" bson:"message"`
	Status    ContactStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

type ContactInput struct {
	Name    string  `json:"name" binding:"required" validate:"required,max=100"`
	Email   string  `json:"email" binding:"required" validate:"required,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Subject string  `json:"subject" binding:"required" validate:"required,max=200"`
	Message string  `json:"message" binding:"required" validate:"required,max=5000"`
}

// ToContact builds a new record with status "new".
func (in ContactInput) ToContact() *Contact {
	return &Contact{
		ID:        bson.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    ContactStatusNew,
		CreatedAt: time.Now(),
	}
}

// Newsletter is a subscription keyed by email
type Newsletter struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string        `json:"email" bson:"email"`
	SubscribedAt time.Time     `json:"subscribed_at" bson:"subscribed_at"`
	Active       bool          `json:"active" bson:"active"`
}

type NewsletterRequest struct {
	Email string `json:"email" binding:"required" validate:"required,email"`
}

// NormalizeEmail trims and lower-cases an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
