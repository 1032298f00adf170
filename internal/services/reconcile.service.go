package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

type ReconcilePaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*model.PaymentTransaction, error)
	SetProcessingStatus(ctx context.Context, id int64, status model.ProcessingStatus) error
	FinishReconciliation(ctx context.Context, id int64, res repository.ReconciliationResult, at time.Time) error
	FindTicketHolder(ctx context.Context, ticketID, excludePaymentID int64) (*model.PaymentTransaction, error)
}

type ReconcileTicketRepository interface {
	FindByTicketNumber(ctx context.Context, companyCode, ticketNumber string) (*model.TicketTransaction, error)
}

type ReconcileService struct {
	paymentRepo ReconcilePaymentRepository
	ticketRepo  ReconcileTicketRepository
	now         func() time.Time
}

func NewReconcileService(paymentRepo ReconcilePaymentRepository, ticketRepo ReconcileTicketRepository) *ReconcileService {
	return &ReconcileService{
		paymentRepo: paymentRepo,
		ticketRepo:  ticketRepo,
		now:         time.Now,
	}
}

// Reconcile classifies one settlement against stored ticket data.
// Redelivered events are no-ops once a payment carries the processed
// flag. The verdict, whatever it is, lands the payment back in
// pending_verification; failures along the way are absorbed into
// reconciliation_error rather than bubbling to the caller.
func (s *ReconcileService) Reconcile(ctx context.Context, paymentID int64) (*model.PaymentTransaction, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if payment.ReconciliationProcessed {
		logger.Debug("payment already reconciled, skipping", "payment_id", paymentID)
		return payment, nil
	}

	if !payment.IsPaymentSuccessful() {
		res := repository.ReconciliationResult{
			Error: fmt.Sprintf("payment declined by gateway (response code %s)", payment.ResponseCode),
		}
		if err := s.paymentRepo.FinishReconciliation(ctx, paymentID, res, s.now()); err != nil {
			return nil, err
		}
		logger.Info("declined payment recorded", "payment_id", paymentID, "response_code", payment.ResponseCode)
		return s.paymentRepo.GetByID(ctx, paymentID)
	}

	if err := s.paymentRepo.SetProcessingStatus(ctx, paymentID, model.ProcessingReconciling); err != nil {
		return nil, err
	}

	res := s.classify(ctx, payment)

	if err := s.paymentRepo.FinishReconciliation(ctx, paymentID, res, s.now()); err != nil {
		return nil, err
	}

	logger.Info("payment reconciled", "payment_id", paymentID, "status", string(res.Status), "error", res.Error)

	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *ReconcileService) classify(ctx context.Context, payment *model.PaymentTransaction) repository.ReconciliationResult {
	if payment.InvoiceNumber == "" {
		return repository.ReconciliationResult{
			Status: model.ReconciliationNotFound,
			Error:  "no invoice number on settlement",
		}
	}

	ticket, err := s.ticketRepo.FindByTicketNumber(ctx, payment.CompanyCode, payment.InvoiceNumber)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return repository.ReconciliationResult{
				Status: model.ReconciliationNotFound,
				Error:  fmt.Sprintf("no ticket with number %s", payment.InvoiceNumber),
			}
		}
		return repository.ReconciliationResult{
			Error: fmt.Sprintf("ticket lookup failed: %v", err),
		}
	}

	gatewayAmount := payment.Amount.Round(2)
	ticketAmount := ticket.TicketAmount.Round(2)

	if !gatewayAmount.Equal(ticketAmount) {
		// related_ticket stays attached so the mismatch can be audited.
		return repository.ReconciliationResult{
			Status:          model.ReconciliationAmountMismatch,
			RelatedTicketID: &ticket.ID,
			Error:           fmt.Sprintf("amount mismatch: gateway %s, ticket %s", gatewayAmount.StringFixed(2), ticketAmount.StringFixed(2)),
		}
	}

	holder, err := s.paymentRepo.FindTicketHolder(ctx, ticket.ID, payment.ID)
	if err != nil {
		return repository.ReconciliationResult{
			Error: fmt.Sprintf("duplicate check failed: %v", err),
		}
	}
	if holder != nil {
		// The verifier sees the winning transaction, not the loser's own id.
		return repository.ReconciliationResult{
			Status: model.ReconciliationDuplicate,
			Error:  fmt.Sprintf("ticket %s already settled by transaction %s", payment.InvoiceNumber, holder.TransactionID),
		}
	}

	return repository.ReconciliationResult{
		Status:          model.ReconciliationAutoMatched,
		RelatedTicketID: &ticket.ID,
	}
}
