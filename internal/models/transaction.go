package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the receipt of a completed checkout session. StripeID is the
// idempotency key; Credited records whether the grant reached the buyer.
type Transaction struct {
	ID          string          `json:"_id"`
	StripeID    string          `json:"stripeId" example:"cs_test_a1b2"`
	AmountMinor int64           `json:"amountMinor" example:"1999"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"string" example:"19.99"`
	Currency    string          `json:"currency" example:"usd"`
	Plan        string          `json:"plan" example:"Pro Package"`
	Credits     int             `json:"credits" example:"100"`
	BuyerID     string          `json:"buyer" example:"user_2abc"`
	PlanID      *int            `json:"planId,omitempty"`
	Credited    bool            `json:"credited"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreditedAt  *time.Time      `json:"creditedAt,omitempty"`
}

// MinorUnitsToDecimal converts an integer amount in cents to currency units.
func MinorUnitsToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// DecimalToMinorUnits converts currency units to cents, rounding half away from zero.
func DecimalToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Payment is the ledger input derived from a completed checkout session.
type Payment struct {
	SessionID   string
	AmountMinor int64
	Currency    string
	Plan        string
	Credits     int
	BuyerID     string
	PlanID      *int
}
