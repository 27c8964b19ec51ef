/**
 * @description
 * This file contains the core business logic for the request-service. The `Service`
 * struct coordinates the money-request lifecycle flows between the database
 * repository, the push gateway client, and the message broker.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - internal/domain, internal/store: For domain models and data access.
 */

package app

import (
	"context"
	"time"

	"github.com/letspay/request-service/internal/domain"
	"github.com/letspay/request-service/internal/store"
)

// PushSender dispatches a push message to a device token. Delivery is fire
// and forget from the caller's point of view: failures are logged, never
// surfaced to the triggering flow.
type PushSender interface {
	Send(ctx context.Context, token, title, body, deepLink string) error
}

// EventPublisher publishes request lifecycle events for downstream consumers.
type EventPublisher interface {
	PublishRequestExpired(ctx context.Context, item domain.ExpiredRequest) error
	PublishCashbackConfirmed(ctx context.Context, transactionID, hostID string) error
}

// Service provides the core business logic for money request lifecycle management.
type Service struct {
	repo              store.Repository
	push              PushSender
	events            EventPublisher
	retention         time.Duration
	sweepMaxBatchSize int
	deepLink          string
}

// NewService creates a new request service instance. push and events may be
// nil, in which case the corresponding dispatches are skipped.
func NewService(repo store.Repository, push PushSender, events EventPublisher, retention time.Duration, sweepMaxBatchSize int, deepLink string) *Service {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if sweepMaxBatchSize <= 0 {
		sweepMaxBatchSize = 500
	}
	return &Service{
		repo:              repo,
		push:              push,
		events:            events,
		retention:         retention,
		sweepMaxBatchSize: sweepMaxBatchSize,
		deepLink:          deepLink,
	}
}
