package models

import "github.com/shopspring/decimal"

// CheckoutRequest starts a hosted checkout for a credit package.
type CheckoutRequest struct {
	Amount  decimal.Decimal `json:"amount" swaggertype:"number"`
	Plan    string          `json:"plan" validate:"required,max=100"`
	Credits int             `json:"credits" validate:"gte=0"`
	BuyerID string          `json:"buyerId" validate:"required"`
	PlanID  *int            `json:"planId,omitempty" validate:"omitempty,gt=0"`
}

// CheckoutSession is the processor's reply: where to send the buyer.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
