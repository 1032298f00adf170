package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/queue"
	"github.com/transitops/ticket-backoffice/pkg/logger"
	"github.com/transitops/ticket-backoffice/pkg/prom"
)

type Reconciler interface {
	Reconcile(ctx context.Context, paymentID int64) (*model.PaymentTransaction, error)
}

// PaymentEventProcessor consumes settlement-created events and runs the
// reconciliation engine over each one.
type PaymentEventProcessor struct {
	reconciler  Reconciler
	idempotency *IdempotencyService
}

func NewPaymentEventProcessor(reconciler Reconciler, idempotency *IdempotencyService) *PaymentEventProcessor {
	return &PaymentEventProcessor{
		reconciler:  reconciler,
		idempotency: idempotency,
	}
}

func (p *PaymentEventProcessor) GetType() string {
	return "payment"
}

func (p *PaymentEventProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var event model.PaymentEvent
	if err := json.Unmarshal(queueMessage.Data, &event); err != nil {
		logger.Error("failed to unmarshal payment event", "error", err)
		return err // malformed events go to the DLQ
	}
	if event.PaymentID == 0 {
		logger.Error("payment event without payment id", "message_id", queueMessage.ID)
		return errors.New("payment event without payment id")
	}

	paymentID := strconv.FormatInt(event.PaymentID, 10)

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrAlreadyReconciled) {
			logger.Info("payment already reconciled, skipping", "payment_id", paymentID)
			return nil // ACK
		}
		if errors.Is(err, ErrMaxRetriesExceeded) {
			logger.Error("giving up on payment event", "payment_id", paymentID)
			prom.IncReconciliationOutcome("abandoned")
			return nil // ACK to move to DLQ
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return errors.New("lock held by another consumer")
		}
		return err
	}

	defer p.idempotency.ReleaseLock(ctx, procCtx)

	logger.Info("reconciling payment",
		"payment_id", paymentID,
		"retry_count", procCtx.RetryCount,
		"is_retry", procCtx.IsRetry)

	start := time.Now()
	payment, err := p.reconciler.Reconcile(ctx, event.PaymentID)
	if err != nil {
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			logger.Error("failed to mark failure", "payment_id", paymentID, "error", markErr)
		}
		return err // NACK to retry from queue
	}

	prom.AddReconciliationDuration(time.Since(start).Seconds())
	prom.IncReconciliationOutcome(outcomeLabel(payment))

	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		// The engine already stamped reconciled_at; a redelivery will
		// hit the skip path in the service.
		logger.Error("failed to mark success", "payment_id", paymentID, "error", markErr)
	}

	logger.Info("payment reconciled",
		"payment_id", paymentID,
		"status", string(payment.ReconciliationStatus),
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}

func outcomeLabel(payment *model.PaymentTransaction) string {
	if payment.ReconciliationStatus == model.ReconciliationNone {
		return "declined"
	}
	return string(payment.ReconciliationStatus)
}
