package models

import "time"

// CreditEvent is published after a balance change is committed.
type CreditEvent struct {
	Reference string    `json:"reference"` // session id or image id
	SubjectID string    `json:"subject_id"`
	Delta     int       `json:"delta"`
	Balance   int       `json:"balance"`
	Reason    string    `json:"reason"` // PURCHASE, ADJUSTMENT, TRANSFORMATION
	CreatedAt time.Time `json:"created_at"`
}

const (
	CreditReasonPurchase       = "PURCHASE"
	CreditReasonAdjustment     = "ADJUSTMENT"
	CreditReasonTransformation = "TRANSFORMATION"
)
