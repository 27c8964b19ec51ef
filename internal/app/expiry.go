/**
 * @description
 * This file contains the expiry sweep: the periodic job that auto-rejects
 * money requests that stayed pending past the retention window and restores
 * the host's spending limit in the same atomic commit.
 *
 * Key features:
 * - Pure expiry decision at whole-second granularity.
 * - Limit reconciliation that tolerates a missing limit row.
 * - One atomic batch commit per cycle: all staged mutations apply or none do.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - internal/domain, internal/store: For domain models and data access.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/letspay/request-service/internal/domain"
	"github.com/letspay/request-service/internal/store"
)

// shouldExpire reports whether a request created at createdAt has aged past
// the cutoff. The comparison is at whole-second granularity: the sub-second
// component of createdAt is ignored, so a request created on the same second
// as the cutoff compares equal and expires.
func shouldExpire(createdAt, cutoff time.Time) bool {
	return createdAt.Unix() <= cutoff.Unix()
}

// reconcileLimit computes the restored limit after a request expires. When no
// limit row exists for the host the second return is false and no limit
// mutation is staged; the status transition still happens. No clamping is
// applied, so negative or over-cap results flow through unchanged.
func reconcileLimit(lookup domain.LimitLookup, amount int64) (int64, bool) {
	if !lookup.Found {
		return 0, false
	}
	return lookup.AvailableLimit + amount, true
}

// SweepExpiredRequests runs one full expiry cycle: it queries every pending
// request, stages an auto_rejected transition plus a limit restoration for
// each request past the cutoff, and commits all staged mutations in a single
// transaction. Any failure during the query, the per-host limit lookups, or
// the commit aborts the cycle with zero mutations applied.
//
// Overlapping invocations are not mutually excluded: two concurrent sweeps
// can both observe the same pending request and double-restore its limit.
// Retry, if any, belongs to the trigger infrastructure.
func (s *Service) SweepExpiredRequests(ctx context.Context) (*domain.SweepResult, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-s.retention)

	pending, err := s.repo.ListPendingRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	log.Printf("level=info component=service flow=expiry_sweep msg=\"found pending requests\" count=%d cutoff=%s", len(pending), cutoff.Format(time.RFC3339))

	if len(pending) > s.sweepMaxBatchSize {
		return nil, fmt.Errorf("pending set of %d exceeds sweep batch limit of %d; refusing to split the atomic commit", len(pending), s.sweepMaxBatchSize)
	}

	batch := &store.ExpirySweepBatch{}
	result := &domain.SweepResult{Seen: len(pending)}

	// Limits already staged this cycle, so a second expiring request for the
	// same host increments the carried value instead of the stale read.
	stagedLimits := make(map[uuid.UUID]int64)

	for _, req := range pending {
		if !shouldExpire(req.CreatedAt, cutoff) {
			continue
		}

		batch.Add(store.StatusUpdate{RequestID: req.ID, Status: domain.RequestStatusAutoRejected})

		// Point lookup per record, awaited before moving on. Acceptable for
		// the pending-set sizes this job sees; bulk-read by key set if that
		// ever changes.
		lookup, err := s.repo.GetLimitForHost(ctx, req.HostID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up limit for host %s: %w", req.HostID, err)
		}
		if staged, ok := stagedLimits[req.HostID]; ok {
			lookup = domain.LimitLookup{Found: true, AvailableLimit: staged}
		}

		restored, ok := reconcileLimit(lookup, req.Amount)
		if ok {
			batch.AddLimit(store.LimitUpdate{HostID: req.HostID, AvailableLimit: restored})
			stagedLimits[req.HostID] = restored
		} else {
			log.Printf("level=info component=service flow=expiry_sweep msg=\"no limit row for host; status transition staged without restoration\" request_id=%s host_id=%s", req.ID, req.HostID)
		}

		result.Expired++
		result.Items = append(result.Items, domain.ExpiredRequest{
			RequestID: req.ID,
			HostID:    req.HostID,
			Amount:    req.Amount,
			Restored:  ok,
		})
	}

	if err := s.repo.CommitExpirySweep(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to commit expiry sweep: %w", err)
	}

	s.publishExpiredEvents(ctx, result.Items)

	log.Printf("level=info component=service flow=expiry_sweep msg=\"sweep committed\" seen=%d expired=%d", result.Seen, result.Expired)
	return result, nil
}

// publishExpiredEvents emits one lifecycle event per expired request after the
// commit. Delivery is best effort: failures are logged and never fail the
// sweep that already committed.
func (s *Service) publishExpiredEvents(ctx context.Context, items []domain.ExpiredRequest) {
	if s.events == nil {
		return
	}
	for _, item := range items {
		if err := s.events.PublishRequestExpired(ctx, item); err != nil {
			log.Printf("level=warn component=service flow=expiry_sweep msg=\"failed to publish expiry event\" request_id=%s err=%v", item.RequestID, err)
		}
	}
}
