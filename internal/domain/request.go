/**
 * @description
 * This file defines the core domain models for the request-service.
 * These structs represent the main entities used throughout the service's
 * business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are stored as `int64` to represent the value in the smallest currency
 *   unit (paise), which avoids floating-point inaccuracies with financial data.
 * - A request's `host_id` is not guaranteed to reference an existing spending
 *   limit row; code paths that join the two must tolerate the dangling case.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Money request statuses. The expiry sweep only reads `pending` rows and only
// ever produces the `pending -> auto_rejected` transition; the remaining
// statuses are written by user-action flows outside this service.
const (
	RequestStatusPending      = "pending"
	RequestStatusAutoRejected = "auto_rejected"
	RequestStatusAccepted     = "accepted"
	RequestStatusDeclined     = "declined"
)

// CashbackStatusSuccess marks a transaction whose cashback has been credited.
const CashbackStatusSuccess = "success"

// MoneyRequest represents a peer-to-peer money request from a payer (user) to
// a host. This struct maps directly to the `requests` table in the database.
type MoneyRequest struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	HostID      uuid.UUID `json:"host_id" db:"host_id"`
	Amount      int64     `json:"amount" db:"amount"` // in paise
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SpendingLimit represents the per-host exposure limit, keyed by the host's
// user id. The sweep restores `available_limit` when a request expires.
type SpendingLimit struct {
	HostID         uuid.UUID `json:"host_id" db:"host_id"`
	AvailableLimit int64     `json:"available_limit" db:"available_limit"` // in paise
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// LimitLookup is the result of a point lookup on the `limits` table. The
// missing-row case is an expected condition, not an error, so it is carried as
// an explicit arm instead of a nil pointer: callers must handle both.
type LimitLookup struct {
	Found          bool
	AvailableLimit int64
}

// User represents a simplified view of a user, containing only the data the
// notification flows need. PushToken is nil for users who never registered a
// device.
type User struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	PushToken *string   `json:"push_token,omitempty"`
}

// Transaction is the slice of the `transactions` table the cashback flow
// reads and mutates.
type Transaction struct {
	ID             uuid.UUID `json:"id"`
	HostID         uuid.UUID `json:"host_id"`
	Amount         int64     `json:"amount"` // in paise
	CashbackStatus string    `json:"cashback_status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExpiredRequest pairs an expired request with the limit restoration staged
// for it, for event publication after the sweep commits. Restored is false
// when no limit row existed for the host.
type ExpiredRequest struct {
	RequestID uuid.UUID
	HostID    uuid.UUID
	Amount    int64
	Restored  bool
}

// SweepResult summarizes one expiry sweep cycle. Seen counts every pending
// request returned by the query; Expired counts the subset that actually
// transitioned. The human-readable summary reports Seen, matching the
// long-standing behavior of this job.
type SweepResult struct {
	Seen    int              `json:"seen"`
	Expired int              `json:"expired"`
	Items   []ExpiredRequest `json:"-"`
}

// SendNotificationPayload is the DTO for the ad-hoc notification endpoint.
type SendNotificationPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
}
