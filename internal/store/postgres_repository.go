/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * related to money requests, spending limits, users, and transactions.
 *
 * @dependencies
 * - context, errors, fmt: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/letspay/request-service/internal/domain"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListPendingRequests returns every request still in the pending state.
// Rows in any other status are never read by the sweep.
func (r *PostgresRepository) ListPendingRequests(ctx context.Context) ([]domain.MoneyRequest, error) {
	query := `
		SELECT id, user_id, host_id, amount, description, status, created_at, updated_at
		FROM requests
		WHERE status = $1
	`
	rows, err := r.db.Query(ctx, query, domain.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.MoneyRequest
	for rows.Next() {
		var req domain.MoneyRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.HostID, &req.Amount, &req.Description, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// FindRequestByID retrieves a single money request.
func (r *PostgresRepository) FindRequestByID(ctx context.Context, requestID uuid.UUID) (*domain.MoneyRequest, error) {
	var req domain.MoneyRequest
	query := `
		SELECT id, user_id, host_id, amount, description, status, created_at, updated_at
		FROM requests
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, requestID).Scan(&req.ID, &req.UserID, &req.HostID, &req.Amount, &req.Description, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GetLimitForHost performs a point lookup on the limits table. A missing row
// maps to LimitLookup{Found: false}, never to an error: requests may carry a
// host_id with no corresponding limit row.
func (r *PostgresRepository) GetLimitForHost(ctx context.Context, hostID uuid.UUID) (domain.LimitLookup, error) {
	var available int64
	err := r.db.QueryRow(ctx, `SELECT available_limit FROM limits WHERE host_id = $1`, hostID).Scan(&available)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.LimitLookup{}, nil
		}
		return domain.LimitLookup{}, err
	}
	return domain.LimitLookup{Found: true, AvailableLimit: available}, nil
}

// CommitExpirySweep applies every staged mutation of a sweep cycle inside one
// database transaction. The updates are pipelined with pgx.Batch and the
// transaction commits only after every queued statement has succeeded, so a
// failure anywhere rolls the whole cycle back.
func (r *PostgresRepository) CommitExpirySweep(ctx context.Context, batch *ExpirySweepBatch) error {
	if batch == nil || batch.Empty() {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin sweep transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pgBatch := &pgx.Batch{}
	for _, update := range batch.StatusUpdates {
		pgBatch.Queue(
			`UPDATE requests SET status = $1, updated_at = now() WHERE id = $2`,
			update.Status, update.RequestID,
		)
	}
	for _, update := range batch.LimitUpdates {
		pgBatch.Queue(
			`UPDATE limits SET available_limit = $1, updated_at = now() WHERE host_id = $2`,
			update.AvailableLimit, update.HostID,
		)
	}

	results := tx.SendBatch(ctx, pgBatch)
	for i := 0; i < pgBatch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("sweep batch statement %d failed: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close sweep batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sweep transaction: %w", err)
	}
	return nil
}

// FindUserByID retrieves the notification-relevant slice of a user row.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, first_name, last_name, push_token FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.FirstName, &user.LastName, &user.PushToken)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindTransactionByID retrieves a transaction for the cashback flow.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	var tx domain.Transaction
	query := `SELECT id, host_id, amount, cashback_status, created_at FROM transactions WHERE id = $1`
	err := r.db.QueryRow(ctx, query, transactionID).Scan(&tx.ID, &tx.HostID, &tx.Amount, &tx.CashbackStatus, &tx.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// MarkTransactionCashbackSuccess flips a transaction's cashback status.
func (r *PostgresRepository) MarkTransactionCashbackSuccess(ctx context.Context, transactionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE transactions SET cashback_status = $1 WHERE id = $2`,
		domain.CashbackStatusSuccess, transactionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
