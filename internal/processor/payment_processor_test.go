package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/queue"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, paymentID int64) (*model.PaymentTransaction, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentTransaction), args.Error(1)
}

func eventMessage(t *testing.T, paymentID int64) *queue.Message {
	t.Helper()
	data, err := json.Marshal(model.PaymentEvent{PaymentID: paymentID})
	require.NoError(t, err)
	return &queue.Message{ID: "1-0", Data: data}
}

func newPaymentProcessor(reconciler Reconciler) *PaymentEventProcessor {
	idem := NewIdempotencyService(newMockRedisAdapter(), DefaultIdempotencyConfig())
	return NewPaymentEventProcessor(reconciler, idem)
}

func TestPaymentEventProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("acks after successful reconciliation", func(t *testing.T) {
		reconciler := new(MockReconciler)
		p := newPaymentProcessor(reconciler)

		reconciler.On("Reconcile", mock.Anything, int64(42)).Return(&model.PaymentTransaction{
			ID:                   42,
			ReconciliationStatus: model.ReconciliationAutoMatched,
		}, nil)

		err := p.Process(ctx, eventMessage(t, 42))
		require.NoError(t, err)
	})

	t.Run("redelivery after success is skipped", func(t *testing.T) {
		reconciler := new(MockReconciler)
		p := newPaymentProcessor(reconciler)

		reconciler.On("Reconcile", mock.Anything, int64(42)).Return(&model.PaymentTransaction{
			ID:                   42,
			ReconciliationStatus: model.ReconciliationAutoMatched,
		}, nil).Once()

		require.NoError(t, p.Process(ctx, eventMessage(t, 42)))
		require.NoError(t, p.Process(ctx, eventMessage(t, 42)))

		reconciler.AssertNumberOfCalls(t, "Reconcile", 1)
	})

	t.Run("engine failure nacks for retry", func(t *testing.T) {
		reconciler := new(MockReconciler)
		p := newPaymentProcessor(reconciler)

		reconciler.On("Reconcile", mock.Anything, int64(42)).Return(nil, errors.New("db down"))

		err := p.Process(ctx, eventMessage(t, 42))
		assert.Error(t, err)
	})

	t.Run("exhausted retries ack to park the event", func(t *testing.T) {
		reconciler := new(MockReconciler)
		idem := NewIdempotencyService(newMockRedisAdapter(), IdempotencyConfig{
			LockTTL:        DefaultIdempotencyConfig().LockTTL,
			DoneTTL:        DefaultIdempotencyConfig().DoneTTL,
			MaxRetries:     1,
			LockKeyPrefix:  "reconcile:lock:",
			RetryKeyPrefix: "reconcile:retry:",
			DoneKeyPrefix:  "reconcile:done:",
		})
		p := NewPaymentEventProcessor(reconciler, idem)

		reconciler.On("Reconcile", mock.Anything, int64(42)).Return(nil, errors.New("db down")).Once()

		require.Error(t, p.Process(ctx, eventMessage(t, 42)))

		// Retry budget is now spent; the event is acked away.
		require.NoError(t, p.Process(ctx, eventMessage(t, 42)))
		reconciler.AssertNumberOfCalls(t, "Reconcile", 1)
	})

	t.Run("malformed event goes to the DLQ", func(t *testing.T) {
		p := newPaymentProcessor(new(MockReconciler))

		err := p.Process(ctx, &queue.Message{ID: "1-1", Data: []byte("{")})
		assert.Error(t, err)
	})

	t.Run("event without payment id is rejected", func(t *testing.T) {
		p := newPaymentProcessor(new(MockReconciler))

		err := p.Process(ctx, eventMessage(t, 0))
		assert.Error(t, err)
	})
}
