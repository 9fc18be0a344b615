package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imaginify/backend/internal/apperror"
	"github.com/imaginify/backend/internal/audit"
	"github.com/imaginify/backend/internal/config"
	"github.com/imaginify/backend/internal/database"
	"github.com/imaginify/backend/internal/metrics"
	"github.com/imaginify/backend/internal/models"
)

const (
	userColumns = `id, clerk_id, email, username, photo, first_name, last_name,
		plan_id, credit_balance, created_at, updated_at`

	transactionColumns = `id, stripe_id, amount_minor, currency, plan, credits, buyer_id,
		plan_id, credited, created_at, credited_at`
)

// LedgerService applies verified account and payment events to the store.
// Every operation is safe to repeat with the same input.
type LedgerService struct {
	store     *database.Handle
	publisher CreditPublisher
	audit     *audit.Logger
	metrics   *metrics.Collectors
	validator *ValidationHelper
	config    config.LedgerConfig
	now       func() time.Time
}

func NewLedgerService(store *database.Handle, publisher CreditPublisher, collectors *metrics.Collectors, cfg config.LedgerConfig) *LedgerService {
	if cfg.DefaultPlanID == 0 {
		cfg.DefaultPlanID = 1
	}
	return &LedgerService{
		store:     store,
		publisher: publisher,
		audit:     audit.NewLogger(),
		metrics:   collectors,
		validator: NewValidationHelper(),
		config:    cfg,
		now:       time.Now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var username sql.NullString
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &username, &u.Photo, &u.FirstName, &u.LastName,
		&u.PlanID, &u.CreditBalance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if username.Valid {
		u.Username = &username.String
	}
	return &u, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.StripeID, &t.AmountMinor, &t.Currency, &t.Plan, &t.Credits, &t.BuyerID,
		&t.PlanID, &t.Credited, &t.CreatedAt, &t.CreditedAt)
	if err != nil {
		return nil, err
	}
	t.Amount = models.MinorUnitsToDecimal(t.AmountMinor)
	return &t, nil
}

// normalizeProfile stores an absent username as NULL, never "".
func normalizeProfile(p models.UserProfile) models.UserProfile {
	p.Email = strings.TrimSpace(p.Email)
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		p.Username = nil
	}
	return p
}

func (s *LedgerService) validateProfile(subjectID string, profile models.UserProfile) error {
	if strings.TrimSpace(subjectID) == "" {
		return apperror.ValidationFailed("clerkId", "subject id is required")
	}
	if profile.Email == "" {
		return apperror.ValidationFailed("email", "primary email address is required")
	}
	if err := s.validator.ValidateStruct(&profile); err != nil {
		return apperror.ValidationFailed("email", "primary email address is invalid")
	}
	return nil
}

// profileConflict turns a unique violation on a profile column into a
// validation error naming the column.
func profileConflict(err error) error {
	switch constraint := uniqueConstraint(err); {
	case constraint == "":
		return nil
	case strings.Contains(constraint, "email"):
		return apperror.ValidationFailed("email", "email address belongs to another account")
	case strings.Contains(constraint, "username"):
		return apperror.ValidationFailed("username", "username belongs to another account")
	default:
		return apperror.ValidationFailed(constraint, "profile conflicts with another account")
	}
}

// GetUser returns the user mirrored for subjectID.
func (s *LedgerService) GetUser(ctx context.Context, subjectID string) (*models.User, error) {
	const op = "ledger.GetUser"

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE clerk_id = $1`, subjectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("user", subjectID)
	}
	if err != nil {
		return nil, classifyStoreError(op, err)
	}
	return user, nil
}

// UpsertUser creates the account on first sight with the signup defaults, or
// overwrites its profile fields, then applies any payments still waiting for
// this buyer. The profile write never changes plan or balance.
func (s *LedgerService) UpsertUser(ctx context.Context, subjectID string, profile models.UserProfile) (Outcome, error) {
	const op = "ledger.UpsertUser"

	profile = normalizeProfile(profile)
	if err := s.validateProfile(subjectID, profile); err != nil {
		log.Printf("[LEDGER] Rejected profile for %s: %v (profile=%+v)", subjectID, err, profile)
		return failed(err)
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return failed(err)
	}

	var inserted bool
	row := db.QueryRowContext(ctx, `
		INSERT INTO users (id, clerk_id, email, username, photo, first_name, last_name, plan_id, credit_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (clerk_id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			photo = EXCLUDED.photo,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING `+userColumns+`, (xmax = 0) AS inserted`,
		uuid.NewString(), subjectID, profile.Email, profile.Username, profile.Photo,
		profile.FirstName, profile.LastName, s.config.DefaultPlanID, s.config.SignupCredits)

	var u models.User
	var username sql.NullString
	err = row.Scan(&u.ID, &u.ClerkID, &u.Email, &username, &u.Photo, &u.FirstName, &u.LastName,
		&u.PlanID, &u.CreditBalance, &u.CreatedAt, &u.UpdatedAt, &inserted)
	if err != nil {
		if conflict := profileConflict(err); conflict != nil {
			log.Printf("[LEDGER] Profile conflict for %s: %v", subjectID, conflict)
			return failed(conflict)
		}
		s.audit.LogError("", subjectID, err)
		return failed(classifyStoreError(op, err))
	}
	if username.Valid {
		u.Username = &username.String
	}

	if inserted {
		log.Printf("[LEDGER] Created user %s with %d credits on plan %d", subjectID, u.CreditBalance, u.PlanID)
		s.audit.LogUser("USER_CREATED", subjectID, audit.StatusApplied)
	} else {
		log.Printf("[LEDGER] Updated profile for existing user %s", subjectID)
		s.audit.LogUser("USER_UPSERTED", subjectID, audit.StatusApplied)
	}

	// A payment may have landed before the account existed. Runs on every
	// delivery so a redelivery finishes what a failed attempt left pending.
	n, err := s.ReconcilePending(ctx, subjectID)
	if err != nil {
		log.Printf("[LEDGER] Pending payment reconciliation for %s failed: %v", subjectID, err)
		s.audit.LogError("", subjectID, err)
		return failed(classifyStoreError(op, err))
	}
	if n > 0 {
		refreshed, err := s.GetUser(ctx, subjectID)
		if err == nil {
			return applied(refreshed), nil
		}
		log.Printf("[LEDGER] Reload of %s after reconciliation failed: %v", subjectID, err)
	}

	return applied(&u), nil
}

// UpdateUserProfile overwrites the profile of an existing user. An unknown
// subject is a tolerated no-op: the update may overtake the creation.
func (s *LedgerService) UpdateUserProfile(ctx context.Context, subjectID string, profile models.UserProfile) (Outcome, error) {
	const op = "ledger.UpdateUserProfile"

	profile = normalizeProfile(profile)
	if err := s.validateProfile(subjectID, profile); err != nil {
		log.Printf("[LEDGER] Rejected profile update for %s: %v (profile=%+v)", subjectID, err, profile)
		return failed(err)
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return failed(err)
	}

	user, err := scanUser(db.QueryRowContext(ctx, `
		UPDATE users
		SET email = $2, username = $3, photo = $4, first_name = $5, last_name = $6, updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING `+userColumns,
		subjectID, profile.Email, profile.Username, profile.Photo, profile.FirstName, profile.LastName))
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("[LEDGER] WARNING: update for unknown user %s ignored", subjectID)
		s.audit.LogUser("USER_UPDATED", subjectID, audit.StatusNoOp)
		return Outcome{Kind: OutcomeNotFound}, nil
	}
	if err != nil {
		if conflict := profileConflict(err); conflict != nil {
			return failed(conflict)
		}
		return failed(classifyStoreError(op, err))
	}

	s.audit.LogUser("USER_UPDATED", subjectID, audit.StatusApplied)
	return applied(user), nil
}

// DeleteUser removes the user row. An unknown subject is a tolerated no-op.
func (s *LedgerService) DeleteUser(ctx context.Context, subjectID string) (Outcome, error) {
	const op = "ledger.DeleteUser"

	if strings.TrimSpace(subjectID) == "" {
		return failed(apperror.ValidationFailed("clerkId", "subject id is required"))
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return failed(err)
	}

	user, err := scanUser(db.QueryRowContext(ctx,
		`DELETE FROM users WHERE clerk_id = $1 RETURNING `+userColumns, subjectID))
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("[LEDGER] WARNING: delete for unknown user %s ignored", subjectID)
		s.audit.LogUser("USER_DELETED", subjectID, audit.StatusNoOp)
		return Outcome{Kind: OutcomeNotFound}, nil
	}
	if err != nil {
		return failed(classifyStoreError(op, err))
	}

	log.Printf("[LEDGER] Deleted user %s", subjectID)
	s.audit.LogUser("USER_DELETED", subjectID, audit.StatusApplied)
	return applied(user), nil
}

func validatePayment(p models.Payment) error {
	switch {
	case strings.TrimSpace(p.SessionID) == "":
		return apperror.ValidationFailed("stripeId", "session id is required")
	case strings.TrimSpace(p.BuyerID) == "":
		return apperror.ValidationFailed("buyerId", "buyer id is required")
	case p.Credits < 0:
		return apperror.ValidationFailed("credits", "credits must not be negative")
	case p.AmountMinor < 0:
		return apperror.ValidationFailed("amount", "amount must not be negative")
	}
	return nil
}

// RecordPayment stores the receipt for a completed checkout and grants its
// credits exactly once. The receipt is written before the balance changes; the
// credited flag on the receipt gates the grant, so a redelivery after a
// partial failure finishes the job and any later redelivery is a no-op.
func (s *LedgerService) RecordPayment(ctx context.Context, p models.Payment) (Outcome, error) {
	const op = "ledger.RecordPayment"

	if err := validatePayment(p); err != nil {
		log.Printf("[LEDGER] Rejected payment %s: %v (payment=%+v)", p.SessionID, err, p)
		return failed(err)
	}
	if p.Currency == "" {
		p.Currency = "usd"
	}

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return failed(err)
	}

	existing, err := s.findTransaction(ctx, db, p.SessionID)
	if err != nil {
		return failed(classifyStoreError(op, err))
	}

	if existing == nil {
		existing, err = s.insertTransaction(ctx, db, p)
		if err != nil {
			s.audit.LogError(p.SessionID, p.BuyerID, err)
			return failed(classifyStoreError(op, err))
		}
	}

	if existing.Credited {
		log.Printf("[LEDGER] Duplicate payment %s ignored", p.SessionID)
		s.audit.LogPayment(existing.StripeID, existing.BuyerID, existing.AmountMinor, existing.Credits, audit.StatusNoOp)
		return Outcome{Kind: OutcomeAlreadyDone, Transaction: existing}, nil
	}

	outcome, err := s.applyCredit(ctx, db, existing)
	if err != nil {
		s.audit.LogError(p.SessionID, p.BuyerID, err)
		return failed(classifyStoreError(op, err))
	}
	return outcome, nil
}

func (s *LedgerService) findTransaction(ctx context.Context, db *sql.DB, sessionID string) (*models.Transaction, error) {
	tx, err := scanTransaction(db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE stripe_id = $1`, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return tx, err
}

// insertTransaction creates the receipt. When a concurrent delivery inserted
// it first, the unique index on stripe_id wins and the stored row is returned.
func (s *LedgerService) insertTransaction(ctx context.Context, db *sql.DB, p models.Payment) (*models.Transaction, error) {
	var planID any
	if p.PlanID != nil {
		planID = int64(*p.PlanID)
	}

	tx, err := scanTransaction(db.QueryRowContext(ctx, `
		INSERT INTO transactions (id, stripe_id, amount_minor, currency, plan, credits, buyer_id, plan_id, credited, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
		ON CONFLICT (stripe_id) DO NOTHING
		RETURNING `+transactionColumns,
		uuid.NewString(), p.SessionID, p.AmountMinor, p.Currency, p.Plan, p.Credits, p.BuyerID, planID, s.now()))
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("[LEDGER] Payment %s recorded concurrently, re-reading", p.SessionID)
		tx, err = s.findTransaction(ctx, db, p.SessionID)
		if err == nil && tx == nil {
			err = fmt.Errorf("transaction %s vanished after conflict", p.SessionID)
		}
	}
	if err != nil && uniqueConstraint(err) != "" {
		return s.findTransaction(ctx, db, p.SessionID)
	}
	return tx, err
}

// applyCredit flips the receipt's credited flag and increments the buyer's
// balance in one SQL transaction. The guarded flag update serialises
// concurrent appliers on the receipt row.
func (s *LedgerService) applyCredit(ctx context.Context, db *sql.DB, t *models.Transaction) (Outcome, error) {
	dbTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Outcome{}, err
	}
	defer dbTx.Rollback()

	creditedAt := s.now()
	res, err := dbTx.ExecContext(ctx,
		`UPDATE transactions SET credited = TRUE, credited_at = $2 WHERE stripe_id = $1 AND credited = FALSE`,
		t.StripeID, creditedAt)
	if err != nil {
		return Outcome{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return Outcome{}, err
	} else if n == 0 {
		log.Printf("[LEDGER] Payment %s credited by a concurrent delivery", t.StripeID)
		return Outcome{Kind: OutcomeAlreadyDone, Transaction: t}, nil
	}

	var planID any
	if t.PlanID != nil {
		planID = int64(*t.PlanID)
	}

	user, err := scanUser(dbTx.QueryRowContext(ctx, `
		UPDATE users
		SET credit_balance = credit_balance + $2, plan_id = COALESCE($3, plan_id), updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING `+userColumns,
		t.BuyerID, t.Credits, planID))
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("[LEDGER] WARNING: buyer %s for payment %s not found, credit deferred", t.BuyerID, t.StripeID)
		s.audit.LogPayment(t.StripeID, t.BuyerID, t.AmountMinor, t.Credits, audit.StatusDeferred)
		return Outcome{Kind: OutcomeNotFound, Transaction: t}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	if err := dbTx.Commit(); err != nil {
		return Outcome{}, err
	}

	t.Credited = true
	t.CreditedAt = &creditedAt

	log.Printf("[LEDGER] Payment %s credited %d to %s, balance %d", t.StripeID, t.Credits, t.BuyerID, user.CreditBalance)
	s.audit.LogPayment(t.StripeID, t.BuyerID, t.AmountMinor, t.Credits, audit.StatusApplied)
	s.metrics.ObserveCreditsGranted(t.Credits)
	s.publish(ctx, models.CreditEvent{
		Reference: t.StripeID,
		SubjectID: t.BuyerID,
		Delta:     t.Credits,
		Balance:   user.CreditBalance,
		Reason:    models.CreditReasonPurchase,
		CreatedAt: creditedAt,
	})

	return Outcome{Kind: OutcomeApplied, User: user, Transaction: t}, nil
}

// ReconcilePending applies receipts that were recorded before their buyer
// existed. It returns how many were credited.
func (s *LedgerService) ReconcilePending(ctx context.Context, subjectID string) (int, error) {
	const op = "ledger.ReconcilePending"

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE buyer_id = $1 AND credited = FALSE ORDER BY created_at`,
		subjectID)
	if err != nil {
		return 0, classifyStoreError(op, err)
	}

	var pending []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return 0, classifyStoreError(op, err)
		}
		pending = append(pending, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, classifyStoreError(op, err)
	}
	rows.Close()

	credited := 0
	for _, t := range pending {
		outcome, err := s.applyCredit(ctx, db, t)
		if err != nil {
			return credited, classifyStoreError(op, err)
		}
		if outcome.Kind == OutcomeApplied {
			credited++
		}
	}
	if credited > 0 {
		log.Printf("[LEDGER] Reconciled %d pending payment(s) for %s", credited, subjectID)
	}
	return credited, nil
}

// AdjustCredits atomically adds delta (which may be negative) to the balance.
// The balance is not clamped; callers check affordability beforehand.
func (s *LedgerService) AdjustCredits(ctx context.Context, subjectID string, delta int) (Outcome, error) {
	return s.adjustCredits(ctx, subjectID, delta, subjectID, models.CreditReasonAdjustment)
}

func (s *LedgerService) adjustCredits(ctx context.Context, subjectID string, delta int, reference, reason string) (Outcome, error) {
	const op = "ledger.AdjustCredits"

	db, err := s.store.Acquire(ctx)
	if err != nil {
		return failed(err)
	}

	user, err := addCredits(ctx, db, subjectID, delta, false)
	if errors.Is(err, sql.ErrNoRows) {
		return failed(apperror.NotFound("user", subjectID))
	}
	if err != nil {
		return failed(classifyStoreError(op, err))
	}

	s.creditsAdjusted(ctx, user, delta, reference, reason)
	return applied(user), nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// addCredits adds delta to the balance through q, which may be a pool or an
// open SQL transaction. With covered set, a debit larger than the balance
// matches no row and returns sql.ErrNoRows.
func addCredits(ctx context.Context, q rowQuerier, subjectID string, delta int, covered bool) (*models.User, error) {
	query := `
		UPDATE users
		SET credit_balance = credit_balance + $2, updated_at = NOW()
		WHERE clerk_id = $1`
	if covered {
		query += ` AND ($2 >= 0 OR credit_balance + $2 >= 0)`
	}
	return scanUser(q.QueryRowContext(ctx, query+`
		RETURNING `+userColumns, subjectID, delta))
}

// creditsAdjusted records a committed balance change.
func (s *LedgerService) creditsAdjusted(ctx context.Context, user *models.User, delta int, reference, reason string) {
	s.audit.LogCreditAdjustment(reference, user.ClerkID, delta, user.CreditBalance)
	s.metrics.ObserveAdjustment(delta)
	s.publish(ctx, models.CreditEvent{
		Reference: reference,
		SubjectID: user.ClerkID,
		Delta:     delta,
		Balance:   user.CreditBalance,
		Reason:    reason,
		CreatedAt: s.now(),
	})
}

func (s *LedgerService) publish(ctx context.Context, event models.CreditEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("[LEDGER] Failed to publish credit event for %s: %v", event.Reference, err)
	}
}
