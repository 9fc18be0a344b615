package webhook

import (
	"context"
	"fmt"
	"log"

	"github.com/imaginify/backend/internal/models"
	"github.com/imaginify/backend/internal/services"
)

// Ledger is the part of the ledger service the webhooks drive.
type Ledger interface {
	UpsertUser(ctx context.Context, subjectID string, profile models.UserProfile) (services.Outcome, error)
	UpdateUserProfile(ctx context.Context, subjectID string, profile models.UserProfile) (services.Outcome, error)
	DeleteUser(ctx context.Context, subjectID string) (services.Outcome, error)
	RecordPayment(ctx context.Context, payment models.Payment) (services.Outcome, error)
}

var _ Ledger = (*services.LedgerService)(nil)

func unexpected(event Event) (services.Outcome, error) {
	err := fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	return services.Outcome{Kind: services.OutcomeFailed, Err: err}, err
}

// ClerkHandlers is the identity-provider dispatch table.
func ClerkHandlers(ledger Ledger) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		EventUserCreated: func(ctx context.Context, event Event) (services.Outcome, error) {
			e, ok := event.(UserCreated)
			if !ok {
				return unexpected(event)
			}
			return ledger.UpsertUser(ctx, e.User.ID, e.User.Profile())
		},
		EventUserUpdated: func(ctx context.Context, event Event) (services.Outcome, error) {
			e, ok := event.(UserUpdated)
			if !ok {
				return unexpected(event)
			}
			return ledger.UpdateUserProfile(ctx, e.User.ID, e.User.Profile())
		},
		EventUserDeleted: func(ctx context.Context, event Event) (services.Outcome, error) {
			e, ok := event.(UserDeleted)
			if !ok {
				return unexpected(event)
			}
			return ledger.DeleteUser(ctx, e.ID)
		},
	}
}

// StripeHandlers is the payment-processor dispatch table.
func StripeHandlers(ledger Ledger) map[string]HandlerFunc {
	return map[string]HandlerFunc{
		EventCheckoutSessionCompleted: func(ctx context.Context, event Event) (services.Outcome, error) {
			e, ok := event.(CheckoutSessionCompleted)
			if !ok {
				return unexpected(event)
			}
			payment, err := e.Session.Payment()
			if err != nil {
				log.Printf("[WEBHOOK] Checkout session %s rejected: %v (metadata=%v)", e.Session.ID, err, e.Session.Metadata)
				return services.Outcome{Kind: services.OutcomeFailed, Err: err}, err
			}
			return ledger.RecordPayment(ctx, payment)
		},
		EventInvoicePaymentSucceeded: func(ctx context.Context, event Event) (services.Outcome, error) {
			e, ok := event.(InvoicePaymentSucceeded)
			if !ok {
				return unexpected(event)
			}
			log.Printf("[WEBHOOK] Invoice payment succeeded: %s", e.ID)
			return services.Outcome{Kind: services.OutcomeIgnored}, nil
		},
		EventSubscriptionCreated: func(ctx context.Context, event Event) (services.Outcome, error) {
			e, ok := event.(SubscriptionCreated)
			if !ok {
				return unexpected(event)
			}
			log.Printf("[WEBHOOK] Subscription created: %s", e.ID)
			return services.Outcome{Kind: services.OutcomeIgnored}, nil
		},
	}
}
