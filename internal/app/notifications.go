/**
 * @description
 * This file contains the notification flows that sit alongside the expiry
 * sweep: the push sent when a request is created, the cashback confirmation
 * flow, and the ad-hoc notification operation. Push delivery is best effort
 * throughout; a failed or impossible dispatch is logged and never fails the
 * triggering operation.
 *
 * @dependencies
 * - context, fmt, log, strings: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/store: For data access and sentinel errors.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/letspay/request-service/internal/store"
)

// NotifyRequestCreated pushes a "please accept or decline" message to the
// payer of a freshly created request. It is invoked by the creation flow
// right after the request row is written. Every missing-data case (request
// gone, payer or host missing, no device token) is a log-and-skip, not an
// error: creation already succeeded and must not be failed retroactively.
func (s *Service) NotifyRequestCreated(ctx context.Context, requestID uuid.UUID) error {
	req, err := s.repo.FindRequestByID(ctx, requestID)
	if err != nil {
		if err == store.ErrRequestNotFound {
			log.Printf("level=warn component=service flow=request_created msg=\"request disappeared before notification\" request_id=%s", requestID)
			return nil
		}
		return fmt.Errorf("failed to load request: %w", err)
	}

	payer, err := s.repo.FindUserByID(ctx, req.UserID)
	if err != nil {
		if err == store.ErrUserNotFound {
			log.Printf("level=warn component=service flow=request_created msg=\"payer not found\" request_id=%s user_id=%s", req.ID, req.UserID)
			return nil
		}
		return fmt.Errorf("failed to load payer: %w", err)
	}

	host, err := s.repo.FindUserByID(ctx, req.HostID)
	if err != nil {
		if err == store.ErrUserNotFound {
			log.Printf("level=warn component=service flow=request_created msg=\"host not found\" request_id=%s host_id=%s", req.ID, req.HostID)
			return nil
		}
		return fmt.Errorf("failed to load host: %w", err)
	}

	if payer.PushToken == nil || strings.TrimSpace(*payer.PushToken) == "" {
		log.Printf("level=info component=service flow=request_created msg=\"payer has no push token\" user_id=%s", payer.ID)
		return nil
	}

	hostName := strings.TrimSpace(host.FirstName + " " + host.LastName)
	body := fmt.Sprintf("Payment request for ₹%d for %s. Please accept or decline", req.Amount, req.Description)
	s.dispatchPush(ctx, *payer.PushToken, hostName, body, "request_created", payer.ID)
	return nil
}

// ConfirmCashback marks a transaction's cashback as credited and notifies the
// host. The status update is the operation; the push and the event are best
// effort on top of it.
func (s *Service) ConfirmCashback(ctx context.Context, transactionID uuid.UUID) error {
	tx, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkTransactionCashbackSuccess(ctx, tx.ID); err != nil {
		return fmt.Errorf("failed to update cashback status: %w", err)
	}

	host, err := s.repo.FindUserByID(ctx, tx.HostID)
	if err != nil {
		log.Printf("level=warn component=service flow=cashback msg=\"host lookup failed; skipping notification\" transaction_id=%s host_id=%s err=%v", tx.ID, tx.HostID, err)
	} else if host.PushToken == nil || strings.TrimSpace(*host.PushToken) == "" {
		log.Printf("level=info component=service flow=cashback msg=\"host has no push token\" host_id=%s", host.ID)
	} else {
		s.dispatchPush(ctx, *host.PushToken,
			"Cashback credited!",
			"You have received cashback for a transaction. Check your balance.",
			"cashback", host.ID,
		)
	}

	if s.events != nil {
		if err := s.events.PublishCashbackConfirmed(ctx, tx.ID.String(), tx.HostID.String()); err != nil {
			log.Printf("level=warn component=service flow=cashback msg=\"failed to publish cashback event\" transaction_id=%s err=%v", tx.ID, err)
		}
	}
	return nil
}

// SendUserNotification pushes an arbitrary title/body to one user. A user
// without a device token is a no-op success; an unknown user is an error so
// the caller can report 404.
func (s *Service) SendUserNotification(ctx context.Context, userID uuid.UUID, title, body string) error {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PushToken == nil || strings.TrimSpace(*user.PushToken) == "" {
		log.Printf("level=info component=service flow=ad_hoc_notify msg=\"user has no push token\" user_id=%s", user.ID)
		return nil
	}

	s.dispatchPush(ctx, *user.PushToken, title, body, "ad_hoc_notify", user.ID)
	return nil
}

func (s *Service) dispatchPush(ctx context.Context, token, title, body, flow string, userID uuid.UUID) {
	if s.push == nil {
		log.Printf("level=warn component=service flow=%s msg=\"push client not configured; notification skipped\" user_id=%s", flow, userID)
		return
	}
	if err := s.push.Send(ctx, token, title, body, s.deepLink); err != nil {
		log.Printf("level=error component=service flow=%s msg=\"push dispatch failed\" user_id=%s err=%v", flow, userID, err)
		return
	}
	log.Printf("level=info component=service flow=%s msg=\"notification sent\" user_id=%s", flow, userID)
}
