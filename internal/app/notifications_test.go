package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/letspay/request-service/internal/domain"
	"github.com/letspay/request-service/internal/store"
)

type notifyRepoStub struct {
	store.Repository

	request *domain.MoneyRequest
	users   map[uuid.UUID]*domain.User
	tx      *domain.Transaction

	cashbackMarked bool
}

func (s *notifyRepoStub) FindRequestByID(ctx context.Context, requestID uuid.UUID) (*domain.MoneyRequest, error) {
	if s.request == nil {
		return nil, store.ErrRequestNotFound
	}
	return s.request, nil
}

func (s *notifyRepoStub) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *notifyRepoStub) FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	if s.tx == nil {
		return nil, store.ErrTransactionNotFound
	}
	return s.tx, nil
}

func (s *notifyRepoStub) MarkTransactionCashbackSuccess(ctx context.Context, transactionID uuid.UUID) error {
	s.cashbackMarked = true
	return nil
}

type pushStub struct {
	sent []pushCall
	err  error
}

type pushCall struct {
	token string
	title string
	body  string
	link  string
}

func (s *pushStub) Send(ctx context.Context, token, title, body, deepLink string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, pushCall{token: token, title: title, body: body, link: deepLink})
	return nil
}

func newNotifyService(repo store.Repository, push PushSender, events EventPublisher) *Service {
	return NewService(repo, push, events, 24*time.Hour, 500, "https://letspay.netlify.app")
}

func TestNotifyRequestCreated_SendsPushToPayer(t *testing.T) {
	payerID := uuid.New()
	hostID := uuid.New()
	token := "device-token-1"
	repo := &notifyRepoStub{
		request: &domain.MoneyRequest{
			ID:          uuid.New(),
			UserID:      payerID,
			HostID:      hostID,
			Amount:      250,
			Description: "dinner",
			Status:      domain.RequestStatusPending,
		},
		users: map[uuid.UUID]*domain.User{
			payerID: {ID: payerID, FirstName: "Asha", LastName: "Rao", PushToken: &token},
			hostID:  {ID: hostID, FirstName: "Vik", LastName: "Shah"},
		},
	}
	push := &pushStub{}
	service := newNotifyService(repo, push, nil)

	if err := service.NotifyRequestCreated(context.Background(), repo.request.ID); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(push.sent) != 1 {
		t.Fatalf("expected one push, got %d", len(push.sent))
	}
	if push.sent[0].title != "Vik Shah" {
		t.Fatalf("expected host name as title, got %q", push.sent[0].title)
	}
	if push.sent[0].token != token {
		t.Fatalf("expected payer token, got %q", push.sent[0].token)
	}
	if push.sent[0].link != "https://letspay.netlify.app" {
		t.Fatalf("expected configured deep link, got %q", push.sent[0].link)
	}
}

func TestNotifyRequestCreated_MissingTokenIsNoOp(t *testing.T) {
	payerID := uuid.New()
	hostID := uuid.New()
	repo := &notifyRepoStub{
		request: &domain.MoneyRequest{ID: uuid.New(), UserID: payerID, HostID: hostID, Amount: 100},
		users: map[uuid.UUID]*domain.User{
			payerID: {ID: payerID, FirstName: "Asha"},
			hostID:  {ID: hostID, FirstName: "Vik"},
		},
	}
	push := &pushStub{}
	service := newNotifyService(repo, push, nil)

	if err := service.NotifyRequestCreated(context.Background(), repo.request.ID); err != nil {
		t.Fatalf("expected missing token to be a no-op, got %v", err)
	}
	if len(push.sent) != 0 {
		t.Fatalf("expected no push, got %d", len(push.sent))
	}
}

func TestNotifyRequestCreated_MissingRequestIsNoOp(t *testing.T) {
	repo := &notifyRepoStub{users: map[uuid.UUID]*domain.User{}}
	push := &pushStub{}
	service := newNotifyService(repo, push, nil)

	if err := service.NotifyRequestCreated(context.Background(), uuid.New()); err != nil {
		t.Fatalf("expected vanished request to be a no-op, got %v", err)
	}
	if len(push.sent) != 0 {
		t.Fatal("expected no push for a vanished request")
	}
}

func TestConfirmCashback_UpdatesStatusAndNotifiesHost(t *testing.T) {
	hostID := uuid.New()
	token := "host-token"
	repo := &notifyRepoStub{
		tx: &domain.Transaction{ID: uuid.New(), HostID: hostID, Amount: 1000},
		users: map[uuid.UUID]*domain.User{
			hostID: {ID: hostID, FirstName: "Vik", PushToken: &token},
		},
	}
	push := &pushStub{}
	events := &eventsStub{}
	service := newNotifyService(repo, push, events)

	if err := service.ConfirmCashback(context.Background(), repo.tx.ID); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !repo.cashbackMarked {
		t.Fatal("expected cashback status update")
	}
	if len(push.sent) != 1 || push.sent[0].title != "Cashback credited!" {
		t.Fatalf("expected cashback push, got %+v", push.sent)
	}
	if events.cashback != 1 {
		t.Fatalf("expected one cashback event, got %d", events.cashback)
	}
}

func TestConfirmCashback_UnknownTransaction(t *testing.T) {
	repo := &notifyRepoStub{users: map[uuid.UUID]*domain.User{}}
	service := newNotifyService(repo, &pushStub{}, nil)

	err := service.ConfirmCashback(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestConfirmCashback_PushFailureDoesNotFailOperation(t *testing.T) {
	hostID := uuid.New()
	token := "host-token"
	repo := &notifyRepoStub{
		tx: &domain.Transaction{ID: uuid.New(), HostID: hostID},
		users: map[uuid.UUID]*domain.User{
			hostID: {ID: hostID, PushToken: &token},
		},
	}
	push := &pushStub{err: errors.New("gateway down")}
	service := newNotifyService(repo, push, nil)

	if err := service.ConfirmCashback(context.Background(), repo.tx.ID); err != nil {
		t.Fatalf("expected push failure to be swallowed, got %v", err)
	}
	if !repo.cashbackMarked {
		t.Fatal("expected cashback status update despite push failure")
	}
}

func TestSendUserNotification_UnknownUser(t *testing.T) {
	repo := &notifyRepoStub{users: map[uuid.UUID]*domain.User{}}
	service := newNotifyService(repo, &pushStub{}, nil)

	err := service.SendUserNotification(context.Background(), uuid.New(), "Hello", "World")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSendUserNotification_SendsTitleAndBody(t *testing.T) {
	userID := uuid.New()
	token := "tok"
	repo := &notifyRepoStub{
		users: map[uuid.UUID]*domain.User{
			userID: {ID: userID, PushToken: &token},
		},
	}
	push := &pushStub{}
	service := newNotifyService(repo, push, nil)

	if err := service.SendUserNotification(context.Background(), userID, "Maintenance", "We will be down at midnight"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(push.sent) != 1 {
		t.Fatalf("expected one push, got %d", len(push.sent))
	}
	if push.sent[0].title != "Maintenance" || push.sent[0].body != "We will be down at midnight" {
		t.Fatalf("unexpected push payload: %+v", push.sent[0])
	}
}
