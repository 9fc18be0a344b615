package models

import "time"

// User mirrors an identity-provider account. ClerkID is the external subject id
// and the key every ledger operation uses.
type User struct {
	ID            string    `json:"_id" example:"5b0e8f4e-1c1a-4e8e-9a57-0cf1f1c0f3b1"`
	ClerkID       string    `json:"clerkId" example:"user_2abc"`
	Email         string    `json:"email" example:"user@example.com"`
	Username      *string   `json:"username"`
	Photo         string    `json:"photo"`
	FirstName     string    `json:"firstName" example:"Ada"`
	LastName      string    `json:"lastName" example:"Lovelace"`
	PlanID        int       `json:"planId" example:"1"`
	CreditBalance int       `json:"creditBalance" example:"10"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UserProfile is the provider-owned part of a User. It is overwritten, never
// merged, on every account event.
type UserProfile struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  *string `json:"username"`
	Photo     string  `json:"photo"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
}
