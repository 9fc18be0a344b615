package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/models"
)

func TestDecodeClerk(t *testing.T) {
	t.Run("user created", func(t *testing.T) {
		env, err := DecodeClerk([]byte(`{
			"type": "user.created",
			"object": "event",
			"data": {
				"id": "u1",
				"email_addresses": [{"id": "idn_1", "email_address": "a@x.com"}],
				"username": null,
				"first_name": "Ada",
				"last_name": null,
				"image_url": "https://img.clerk.com/u1"
			}
		}`))
		require.NoError(t, err)

		created, ok := env.Event.(UserCreated)
		require.True(t, ok)
		assert.Equal(t, EventUserCreated, env.Type)
		assert.Equal(t, "u1", created.User.ID)
		assert.Equal(t, models.UserProfile{
			Email:     "a@x.com",
			Photo:     "https://img.clerk.com/u1",
			FirstName: "Ada",
		}, created.User.Profile())
	})

	t.Run("primary email wins over first", func(t *testing.T) {
		env, err := DecodeClerk([]byte(`{"type":"user.updated","data":{"id":"u1",
			"primary_email_address_id":"idn_2",
			"email_addresses":[{"id":"idn_1","email_address":"old@x.com"},{"id":"idn_2","email_address":"new@x.com"}]}}`))
		require.NoError(t, err)

		updated := env.Event.(UserUpdated)
		assert.Equal(t, "new@x.com", updated.User.PrimaryEmail())
	})

	t.Run("no email decodes and is left to the ledger", func(t *testing.T) {
		env, err := DecodeClerk([]byte(`{"type":"user.created","data":{"id":"u1","email_addresses":[]}}`))
		require.NoError(t, err)
		assert.Empty(t, env.Event.(UserCreated).User.Profile().Email)
	})

	t.Run("user deleted", func(t *testing.T) {
		env, err := DecodeClerk([]byte(`{"type":"user.deleted","data":{"id":"u1","deleted":true}}`))
		require.NoError(t, err)
		assert.Equal(t, UserDeleted{ID: "u1", Deleted: true}, env.Event)
	})

	t.Run("unknown type", func(t *testing.T) {
		env, err := DecodeClerk([]byte(`{"type":"session.created","data":{"id":"sess_1"}}`))
		require.NoError(t, err)
		assert.Equal(t, Unhandled{Type: "session.created"}, env.Event)
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		for name, body := range map[string]string{
			"not json":     `{`,
			"no type":      `{"data":{}}`,
			"no data":      `{"type":"user.created"}`,
			"no user id":   `{"type":"user.created","data":{"email_addresses":[]}}`,
			"wrong shape":  `{"type":"user.deleted","data":{"id":42}}`,
			"deleted noid": `{"type":"user.deleted","data":{"deleted":true}}`,
		} {
			_, err := DecodeClerk([]byte(body))
			assert.ErrorIs(t, err, apperror.ErrValidation, name)
		}
	})
}

func TestDecodeStripe(t *testing.T) {
	t.Run("checkout session completed", func(t *testing.T) {
		env, err := DecodeStripe([]byte(`{
			"id": "evt_1",
			"type": "checkout.session.completed",
			"data": {"object": {
				"id": "s1",
				"amount_total": 1999,
				"currency": "USD",
				"metadata": {"plan": "Pro Package", "credits": "100", "buyerId": "u1", "planId": "2"}
			}}
		}`))
		require.NoError(t, err)
		assert.Equal(t, "evt_1", env.ID)

		completed := env.Event.(CheckoutSessionCompleted)
		payment, err := completed.Session.Payment()
		require.NoError(t, err)

		planID := 2
		assert.Equal(t, models.Payment{
			SessionID:   "s1",
			AmountMinor: 1999,
			Currency:    "usd",
			Plan:        "Pro Package",
			Credits:     100,
			BuyerID:     "u1",
			PlanID:      &planID,
		}, payment)
	})

	t.Run("log-only events", func(t *testing.T) {
		env, err := DecodeStripe([]byte(`{"id":"evt_2","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1"}}}`))
		require.NoError(t, err)
		assert.Equal(t, InvoicePaymentSucceeded{ID: "in_1"}, env.Event)

		env, err = DecodeStripe([]byte(`{"id":"evt_3","type":"customer.subscription.created","data":{"object":{"id":"sub_1"}}}`))
		require.NoError(t, err)
		assert.Equal(t, SubscriptionCreated{ID: "sub_1"}, env.Event)
	})

	t.Run("unknown type", func(t *testing.T) {
		env, err := DecodeStripe([]byte(`{"id":"evt_4","type":"charge.refunded","data":{"object":{}}}`))
		require.NoError(t, err)
		assert.Equal(t, Unhandled{Type: "charge.refunded"}, env.Event)
	})

	t.Run("session without id", func(t *testing.T) {
		_, err := DecodeStripe([]byte(`{"id":"evt_5","type":"checkout.session.completed","data":{"object":{"amount_total":100}}}`))
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestCheckoutSession_Payment(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		field    string
	}{
		{"missing buyer", map[string]string{"credits": "10"}, "metadata.buyerId"},
		{"missing credits", map[string]string{"buyerId": "u1"}, "metadata.credits"},
		{"non numeric credits", map[string]string{"buyerId": "u1", "credits": "ten"}, "metadata.credits"},
		{"negative credits", map[string]string{"buyerId": "u1", "credits": "-5"}, "metadata.credits"},
		{"bad plan id", map[string]string{"buyerId": "u1", "credits": "5", "planId": "gold"}, "metadata.planId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckoutSession{ID: "s1", Metadata: tt.metadata}.Payment()
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}

	t.Run("plan id is optional", func(t *testing.T) {
		payment, err := CheckoutSession{ID: "s1", AmountTotal: 500,
			Metadata: map[string]string{"buyerId": "u1", "credits": "50"}}.Payment()
		require.NoError(t, err)
		assert.Nil(t, payment.PlanID)
		assert.Equal(t, 50, payment.Credits)
	})
}
