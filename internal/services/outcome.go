package services

import (
	"errors"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/models"
)

// OutcomeKind says what a ledger operation did.
type OutcomeKind string

const (
	// OutcomeApplied means the mutation took effect.
	OutcomeApplied OutcomeKind = "applied"
	// OutcomeAlreadyDone means an earlier delivery already applied it.
	OutcomeAlreadyDone OutcomeKind = "noop_already_done"
	// OutcomeNotFound means the target row is absent and absence is tolerated.
	OutcomeNotFound OutcomeKind = "noop_not_found"
	// OutcomeIgnored means the event type carries nothing for the ledger.
	OutcomeIgnored OutcomeKind = "ignored"
	// OutcomeFailed means nothing was applied; Err says why.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the result of a ledger operation. Err is set only when Kind is
// OutcomeFailed.
type Outcome struct {
	Kind        OutcomeKind
	User        *models.User
	Transaction *models.Transaction
	Err         error
}

// Success reports whether the caller should acknowledge the triggering event.
func (o Outcome) Success() bool {
	return o.Kind != OutcomeFailed
}

// FailureKind returns the taxonomy sentinel behind a failed outcome.
func (o Outcome) FailureKind() error {
	if o.Kind != OutcomeFailed {
		return nil
	}
	for _, kind := range []error{
		apperror.ErrValidation,
		apperror.ErrNotFound,
		apperror.ErrAuthentication,
		apperror.ErrConfiguration,
		apperror.ErrTransientStore,
		apperror.ErrForbidden,
	} {
		if errors.Is(o.Err, kind) {
			return kind
		}
	}
	return o.Err
}

func applied(user *models.User) Outcome {
	return Outcome{Kind: OutcomeApplied, User: user}
}

func failed(err error) (Outcome, error) {
	return Outcome{Kind: OutcomeFailed, Err: err}, err
}
