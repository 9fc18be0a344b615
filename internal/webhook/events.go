package webhook

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/models"
)

// Event is the closed set of payloads the gateway hands to handlers.
type Event interface {
	EventType() string
	isEvent()
}

// Envelope is a verified and decoded delivery.
type Envelope struct {
	ID    string
	Type  string
	Event Event
}

var validate = validator.New()

// Identity-provider event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Payment-processor event types.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventInvoicePaymentSucceeded  = "invoice.payment_succeeded"
	EventSubscriptionCreated      = "customer.subscription.created"
)

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// ClerkUser is the user object carried by account events.
type ClerkUser struct {
	ID                    string         `json:"id" validate:"required"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	Username              *string        `json:"username"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              string         `json:"image_url"`
}

// PrimaryEmail returns the address flagged primary, else the first one.
func (u ClerkUser) PrimaryEmail() string {
	for _, addr := range u.EmailAddresses {
		if u.PrimaryEmailAddressID != "" && addr.ID == u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (u ClerkUser) Profile() models.UserProfile {
	return models.UserProfile{
		Email:     u.PrimaryEmail(),
		Username:  u.Username,
		Photo:     u.ImageURL,
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
	}
}

type UserCreated struct{ User ClerkUser }
type UserUpdated struct{ User ClerkUser }

type UserDeleted struct {
	ID      string `json:"id" validate:"required"`
	Deleted bool   `json:"deleted"`
}

// CheckoutSession is the subset of a completed checkout session the ledger needs.
type CheckoutSession struct {
	ID            string            `json:"id" validate:"required"`
	AmountTotal   int64             `json:"amount_total" validate:"gte=0"`
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// Payment maps the session and its checkout metadata onto a ledger payment.
func (s CheckoutSession) Payment() (models.Payment, error) {
	buyerID := strings.TrimSpace(s.Metadata["buyerId"])
	if buyerID == "" {
		return models.Payment{}, apperror.ValidationFailed("metadata.buyerId", "checkout session has no buyerId")
	}

	credits, err := strconv.Atoi(strings.TrimSpace(s.Metadata["credits"]))
	if err != nil || credits < 0 {
		return models.Payment{}, apperror.ValidationFailed("metadata.credits", "checkout session credits must be a non-negative integer")
	}

	var planID *int
	if raw := strings.TrimSpace(s.Metadata["planId"]); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return models.Payment{}, apperror.ValidationFailed("metadata.planId", "checkout session planId must be a positive integer")
		}
		planID = &id
	}

	return models.Payment{
		SessionID:   s.ID,
		AmountMinor: s.AmountTotal,
		Currency:    strings.ToLower(s.Currency),
		Plan:        s.Metadata["plan"],
		Credits:     credits,
		BuyerID:     buyerID,
		PlanID:      planID,
	}, nil
}

type CheckoutSessionCompleted struct{ Session CheckoutSession }

// InvoicePaymentSucceeded and SubscriptionCreated are acknowledged and logged only.
type InvoicePaymentSucceeded struct {
	ID string `json:"id"`
}

type SubscriptionCreated struct {
	ID string `json:"id"`
}

// Unhandled is any event type outside the known vocabulary.
type Unhandled struct{ Type string }

func (UserCreated) EventType() string              { return EventUserCreated }
func (UserUpdated) EventType() string              { return EventUserUpdated }
func (UserDeleted) EventType() string              { return EventUserDeleted }
func (CheckoutSessionCompleted) EventType() string { return EventCheckoutSessionCompleted }
func (InvoicePaymentSucceeded) EventType() string  { return EventInvoicePaymentSucceeded }
func (SubscriptionCreated) EventType() string      { return EventSubscriptionCreated }
func (u Unhandled) EventType() string              { return u.Type }

func (UserCreated) isEvent()              {}
func (UserUpdated) isEvent()              {}
func (UserDeleted) isEvent()              {}
func (CheckoutSessionCompleted) isEvent() {}
func (InvoicePaymentSucceeded) isEvent()  {}
func (SubscriptionCreated) isEvent()      {}
func (Unhandled) isEvent()                {}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return apperror.ValidationFailed("data", "event has no data")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperror.ValidationFailed("data", "event data is malformed: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return apperror.ValidationFailed("data", "event data failed validation: "+err.Error())
	}
	return nil
}

// DecodeClerk parses an identity-provider envelope:
// {"type": "...", "data": {...}}.
func DecodeClerk(body []byte) (Envelope, error) {
	var raw struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, apperror.ValidationFailed("body", "event envelope is not valid JSON")
	}
	if raw.Type == "" {
		return Envelope{}, apperror.ValidationFailed("type", "event type is missing")
	}

	env := Envelope{Type: raw.Type}
	switch raw.Type {
	case EventUserCreated, EventUserUpdated:
		var user ClerkUser
		if err := decodeData(raw.Data, &user); err != nil {
			return Envelope{}, err
		}
		if raw.Type == EventUserCreated {
			env.Event = UserCreated{User: user}
		} else {
			env.Event = UserUpdated{User: user}
		}
	case EventUserDeleted:
		var deleted UserDeleted
		if err := decodeData(raw.Data, &deleted); err != nil {
			return Envelope{}, err
		}
		env.Event = deleted
	default:
		env.Event = Unhandled{Type: raw.Type}
	}
	return env, nil
}

// DecodeStripe parses a payment-processor envelope:
// {"id": "evt_...", "type": "...", "data": {"object": {...}}}.
func DecodeStripe(body []byte) (Envelope, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Envelope{}, apperror.ValidationFailed("body", "event envelope is not valid JSON")
	}
	if raw.Type == "" {
		return Envelope{}, apperror.ValidationFailed("type", "event type is missing")
	}

	env := Envelope{ID: raw.ID, Type: raw.Type}
	switch raw.Type {
	case EventCheckoutSessionCompleted:
		var session CheckoutSession
		if err := decodeData(raw.Data.Object, &session); err != nil {
			return Envelope{}, err
		}
		env.Event = CheckoutSessionCompleted{Session: session}
	case EventInvoicePaymentSucceeded:
		var invoice InvoicePaymentSucceeded
		if err := decodeData(raw.Data.Object, &invoice); err != nil {
			return Envelope{}, err
		}
		env.Event = invoice
	case EventSubscriptionCreated:
		var sub SubscriptionCreated
		if err := decodeData(raw.Data.Object, &sub); err != nil {
			return Envelope{}, err
		}
		env.Event = sub
	default:
		env.Event = Unhandled{Type: raw.Type}
	}
	return env, nil
}
