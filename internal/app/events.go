package app

import (
	"context"
	"time"

	"github.com/letspay/request-service/internal/domain"
	"github.com/letspay/request-service/pkg/rabbitmq"
)

// Routing keys for request lifecycle events.
const (
	eventRequestExpired    = "request.auto_rejected"
	eventCashbackConfirmed = "cashback.confirmed"
)

// RequestEventPublisher adapts the RabbitMQ producer to the EventPublisher
// interface the service consumes.
type RequestEventPublisher struct {
	producer rabbitmq.Publisher
}

// NewRequestEventPublisher wraps a producer. A nil producer yields a nil
// publisher, which the service treats as "events disabled".
func NewRequestEventPublisher(producer rabbitmq.Publisher) *RequestEventPublisher {
	if producer == nil {
		return nil
	}
	return &RequestEventPublisher{producer: producer}
}

func (p *RequestEventPublisher) PublishRequestExpired(ctx context.Context, item domain.ExpiredRequest) error {
	return p.producer.Publish(ctx, eventRequestExpired, rabbitmq.RequestExpiredEvent{
		RequestID:     item.RequestID,
		HostID:        item.HostID,
		Amount:        item.Amount,
		LimitRestored: item.Restored,
		Timestamp:     time.Now().UTC(),
	})
}

func (p *RequestEventPublisher) PublishCashbackConfirmed(ctx context.Context, transactionID, hostID string) error {
	return p.producer.Publish(ctx, eventCashbackConfirmed, rabbitmq.CashbackConfirmedEvent{
		TransactionID: transactionID,
		HostID:        hostID,
		Timestamp:     time.Now().UTC(),
	})
}
