/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the request-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/letspay/request-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Request and limit methods
	ListPendingRequests(ctx context.Context) ([]domain.MoneyRequest, error)
	FindRequestByID(ctx context.Context, requestID uuid.UUID) (*domain.MoneyRequest, error)
	// GetLimitForHost returns an explicit found/not-found result because a
	// missing limit row is an expected condition, not an error.
	GetLimitForHost(ctx context.Context, hostID uuid.UUID) (domain.LimitLookup, error)
	// CommitExpirySweep applies all staged mutations of one sweep cycle in a
	// single transaction: either every update lands or none do.
	CommitExpirySweep(ctx context.Context, batch *ExpirySweepBatch) error

	// User methods
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Transaction / cashback methods
	FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error)
	MarkTransactionCashbackSuccess(ctx context.Context, transactionID uuid.UUID) error
}

// StatusUpdate stages a status transition for one request.
type StatusUpdate struct {
	RequestID uuid.UUID
	Status    string
}

// LimitUpdate stages a new available limit for one host.
type LimitUpdate struct {
	HostID         uuid.UUID
	AvailableLimit int64
}

// ExpirySweepBatch accumulates the mutations of one sweep cycle. Limit
// updates for the same host may appear more than once; they are applied in
// order, so the last staged value wins.
type ExpirySweepBatch struct {
	StatusUpdates []StatusUpdate
	LimitUpdates  []LimitUpdate
}

// Add stages a request status update.
func (b *ExpirySweepBatch) Add(update StatusUpdate) {
	b.StatusUpdates = append(b.StatusUpdates, update)
}

// AddLimit stages a limit update.
func (b *ExpirySweepBatch) AddLimit(update LimitUpdate) {
	b.LimitUpdates = append(b.LimitUpdates, update)
}

// Empty reports whether the batch has no staged mutations.
func (b *ExpirySweepBatch) Empty() bool {
	return len(b.StatusUpdates) == 0 && len(b.LimitUpdates) == 0
}
