package models

import "time"

// Subscription defines the model for the 'subscriptions' table.
// Invariant: at most one active subscription per user.
type Subscription struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"userId" db:"user_id"`
	PlanID    int64      `json:"planId" db:"plan_id"`
	StartDate time.Time  `json:"startDate" db:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" db:"end_date"`
	Active    bool       `json:"active" db:"active"`

	// Populated by handlers for the admin view, not stored.
	PlanName string `json:"planName,omitempty" db:"-"`
}
