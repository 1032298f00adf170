package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrInvalidAmount   = errors.New("invalid transaction amount")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidVerdict  = errors.New("invalid verification verdict")
)

type PaymentTransactionRepository interface {
	Create(ctx context.Context, payment *model.PaymentTransaction) (*model.PaymentTransaction, error)
	GetByID(ctx context.Context, id int64) (*model.PaymentTransaction, error)
	SetVerification(ctx context.Context, id int64, status model.VerificationStatus, verifierID int64, notes string, at time.Time) error
	List(ctx context.Context, f model.PaymentFilter) ([]*model.PaymentTransaction, int64, error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

type PaymentService struct {
	paymentRepo PaymentTransactionRepository
	events      EventPublisher
}

func NewPaymentService(paymentRepo PaymentTransactionRepository, events EventPublisher) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		events:      events,
	}
}

// HandleWebhook stores the gateway settlement, then publishes the
// reconcile event once the insert has committed, so the consumer never
// reads an event for a row that is not yet visible. A failed publish is
// logged, not returned: the stored settlement still reaches the
// verification queue.
func (s *PaymentService) HandleWebhook(ctx context.Context, req model.PaymentCreateRequest, raw string) (*model.PaymentTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, req.Amount)
	}

	payment := &model.PaymentTransaction{
		TransactionID:      req.TransactionID,
		RRN:                req.RRN,
		Amount:             amount,
		ResponseCode:       req.ResponseCode,
		InvoiceNumber:      req.InvoiceNumber,
		CardType:           req.CardType,
		CompanyCode:        req.CompanyCode,
		ProcessingStatus:   model.ProcessingPendingVerification,
		VerificationStatus: model.VerificationUnverified,
		RawPayload:         raw,
	}

	created, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if _, err := s.events.PublishJSON(ctx, model.PaymentEvent{PaymentID: created.ID}, nil); err != nil {
		logger.Error("publish payment event failed", "payment_id", created.ID, "error", err)
	}

	logger.Info("payment recorded", "payment_id", created.ID, "transaction_id", created.TransactionID, "amount", created.Amount.String())

	return created, nil
}

// Verify records the human verdict for a settlement.
func (s *PaymentService) Verify(ctx context.Context, paymentID int64, verdict model.VerificationStatus, verifierID int64, notes string) (*model.PaymentTransaction, error) {
	switch verdict {
	case model.VerificationVerified, model.VerificationRejected, model.VerificationFlagged:
	default:
		return nil, ErrInvalidVerdict
	}

	if _, err := s.paymentRepo.GetByID(ctx, paymentID); err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if err := s.paymentRepo.SetVerification(ctx, paymentID, verdict, verifierID, notes, time.Now()); err != nil {
		return nil, err
	}

	logger.Info("payment verified", "payment_id", paymentID, "verdict", string(verdict), "verifier_id", verifierID)

	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *PaymentService) Get(ctx context.Context, paymentID int64) (*model.PaymentTransaction, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// PendingVerification lists payments awaiting a human verdict.
func (s *PaymentService) PendingVerification(ctx context.Context, limit, offset int) ([]*model.PaymentTransaction, int64, error) {
	return s.paymentRepo.List(ctx, model.PaymentFilter{
		VerificationStatuses: []model.VerificationStatus{model.VerificationUnverified},
		Limit:                limit,
		Offset:               offset,
		Desc:                 true,
	})
}

func (s *PaymentService) List(ctx context.Context, f model.PaymentFilter) ([]*model.PaymentTransaction, int64, error) {
	return s.paymentRepo.List(ctx, f)
}
