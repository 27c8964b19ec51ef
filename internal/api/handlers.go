/**
 * @description
 * This file contains the HTTP handlers for the request-service's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the appropriate
 * methods on the application service, and writing the HTTP response. They act as the
 * bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/letspay/request-service/internal/app"
	"github.com/letspay/request-service/internal/domain"
	"github.com/letspay/request-service/internal/store"
)

// RequestHandlers holds the application service that handlers will use.
type RequestHandlers struct {
	service              *app.Service
	rateLimiter          *app.RedisNotifyRateLimiter
	notifyLimitPerMinute int
}

// NewRequestHandlers creates a new instance of RequestHandlers. rateLimiter
// may be nil, in which case the notify endpoint is not rate limited.
func NewRequestHandlers(service *app.Service, rateLimiter *app.RedisNotifyRateLimiter, notifyLimitPerMinute int) *RequestHandlers {
	return &RequestHandlers{
		service:              service,
		rateLimiter:          rateLimiter,
		notifyLimitPerMinute: notifyLimitPerMinute,
	}
}

// sweepResponse summarizes one expiry sweep for the HTTP trigger.
type sweepResponse struct {
	Message string `json:"message"`
	Seen    int    `json:"seen"`
	Expired int    `json:"expired"`
}

// SweepHandler triggers one expiry sweep cycle on demand. The summary message
// reports the number of pending requests seen, which is the count this job
// has always reported.
func (h *RequestHandlers) SweepHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SweepExpiredRequests(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=expire_requests outcome=failure err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Error updating requests.")
		return
	}

	h.writeJSON(w, http.StatusOK, sweepResponse{
		Message: fmt.Sprintf("Updated %d pending requests to rejected.", result.Seen),
		Seen:    result.Seen,
		Expired: result.Expired,
	})
}

// RequestCreatedHandler is the hook the request creation flow calls after
// writing a new request row; it dispatches the "accept or decline" push to
// the payer.
func (h *RequestHandlers) RequestCreatedHandler(w http.ResponseWriter, r *http.Request) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request ID.")
		return
	}

	if err := h.service.NotifyRequestCreated(r.Context(), requestID); err != nil {
		log.Printf("level=error component=api endpoint=request_created outcome=failure request_id=%s err=%v", requestID, err)
		h.writeError(w, http.StatusInternalServerError, "Error sending notification.")
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]string{"message": "Notification dispatch scheduled."})
}

// CashbackHandler marks a transaction's cashback as credited and notifies the host.
func (h *RequestHandlers) CashbackHandler(w http.ResponseWriter, r *http.Request) {
	idParam := strings.TrimSpace(chi.URLParam(r, "id"))
	if idParam == "" {
		h.writeError(w, http.StatusBadRequest, "Transaction ID is required.")
		return
	}
	transactionID, err := uuid.Parse(idParam)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid transaction ID.")
		return
	}

	if err := h.service.ConfirmCashback(r.Context(), transactionID); err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("Transaction document with ID %s not found.", transactionID))
			return
		}
		log.Printf("level=error component=api endpoint=cashback outcome=failure transaction_id=%s err=%v", transactionID, err)
		h.writeError(w, http.StatusInternalServerError, "Error updating cashback status.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Updated cashback status of transaction %s to success.", transactionID),
	})
}

// NotifyHandler sends an ad-hoc notification to one user.
func (h *RequestHandlers) NotifyHandler(w http.ResponseWriter, r *http.Request) {
	var payload domain.SendNotificationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if payload.UserID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "User ID is required.")
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		h.writeError(w, http.StatusBadRequest, "Title is required.")
		return
	}
	if strings.TrimSpace(payload.Body) == "" {
		h.writeError(w, http.StatusBadRequest, "Body is required.")
		return
	}

	if !h.allowNotify(w, r, payload.UserID) {
		return
	}

	if err := h.service.SendUserNotification(r.Context(), payload.UserID, payload.Title, payload.Body); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.writeError(w, http.StatusNotFound, fmt.Sprintf("User document with ID %s not found.", payload.UserID))
			return
		}
		log.Printf("level=error component=api endpoint=notify outcome=failure user_id=%s err=%v", payload.UserID, err)
		h.writeError(w, http.StatusInternalServerError, "Error sending notification.")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Sent notification to user with ID %s.", payload.UserID),
	})
}

// allowNotify applies the per-user fixed-window rate limit for the notify
// endpoint. A limiter error fails open: a degraded redis must not block
// notifications.
func (h *RequestHandlers) allowNotify(w http.ResponseWriter, r *http.Request, userID uuid.UUID) bool {
	if h.rateLimiter == nil || h.notifyLimitPerMinute <= 0 {
		return true
	}

	count, retryAfter, err := h.rateLimiter.ConsumeRateLimit(r.Context(), "notify", userID.String(), h.notifyLimitPerMinute, time.Minute)
	if err != nil {
		log.Printf("level=warn component=api endpoint=notify msg=\"rate limiter unavailable; allowing request\" err=%v", err)
		return true
	}
	if count > h.notifyLimitPerMinute {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many notifications for this user. Please try again later.")
		return false
	}
	return true
}

func (h *RequestHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *RequestHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
