package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/transitops/ticket-backoffice/pkg/logger"
	"github.com/transitops/ticket-backoffice/pkg/redis"
)

var (
	ErrAlreadyReconciled  = errors.New("payment already reconciled")
	ErrLockAcquireFailed  = errors.New("failed to acquire reconciliation lock")
	ErrMaxRetriesExceeded = errors.New("maximum reconciliation retries exceeded")
)

// IdempotencyConfig tunes the redis-side guards around the engine. The
// database stamp (reconciled_at) is the source of truth; these keys only
// keep redeliveries from hammering the engine and serialize consumers
// racing on the same payment.
type IdempotencyConfig struct {
	LockTTL        time.Duration
	DoneTTL        time.Duration
	MaxRetries     int
	LockKeyPrefix  string
	RetryKeyPrefix string
	DoneKeyPrefix  string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:        30 * time.Second,
		DoneTTL:        24 * time.Hour,
		MaxRetries:     3,
		LockKeyPrefix:  "reconcile:lock:",
		RetryKeyPrefix: "reconcile:retry:",
		DoneKeyPrefix:  "reconcile:done:",
	}
}

type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

type ProcessingContext struct {
	PaymentID    string
	RetryCount   int
	IsRetry      bool
	lockAcquired bool
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, paymentID string) (*ProcessingContext, error) {
	exists, err := s.redis.Exist(s.config.DoneKeyPrefix + paymentID)
	if err != nil {
		// A failed check falls through to the engine, which is
		// idempotent anyway.
		logger.Warn("done marker check failed", "payment_id", paymentID, "error", err)
	} else if exists > 0 {
		return nil, ErrAlreadyReconciled
	}

	retryCount, err := s.GetRetryCount(ctx, paymentID)
	if err != nil {
		logger.Warn("retry counter read failed", "payment_id", paymentID, "error", err)
	}
	if retryCount >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: payment_id=%s, retries=%d", ErrMaxRetriesExceeded, paymentID, retryCount)
	}

	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	acquired, err := s.redis.SetNX(s.config.LockKeyPrefix+paymentID, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &ProcessingContext{
		PaymentID:    paymentID,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		lockAcquired: true,
	}, nil
}

func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	if err := s.redis.Set(s.config.DoneKeyPrefix+pc.PaymentID, []byte("1"), s.config.DoneTTL); err != nil {
		return fmt.Errorf("failed to set done marker: %w", err)
	}

	s.cleanup(pc)
	return nil
}

func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) error {
	newRetryCount := pc.RetryCount + 1
	retryValue := []byte(fmt.Sprintf("%d", newRetryCount))

	if err := s.redis.Set(s.config.RetryKeyPrefix+pc.PaymentID, retryValue, s.config.DoneTTL); err != nil {
		logger.Error("failed to bump retry counter", "payment_id", pc.PaymentID, "error", err)
	}

	if err := s.redis.Del(s.config.LockKeyPrefix + pc.PaymentID); err != nil {
		logger.Warn("failed to remove lock", "payment_id", pc.PaymentID, "error", err)
	}
	pc.lockAcquired = false

	logger.Warn("reconciliation failed, will retry",
		"payment_id", pc.PaymentID,
		"retry_count", newRetryCount,
		"max_retries", s.config.MaxRetries,
		"reason", reason)

	return nil
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}

	if err := s.redis.Del(s.config.LockKeyPrefix + pc.PaymentID); err != nil {
		logger.Warn("failed to release lock", "payment_id", pc.PaymentID, "error", err)
		return err
	}

	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) cleanup(pc *ProcessingContext) {
	if err := s.redis.Del(s.config.LockKeyPrefix + pc.PaymentID); err != nil {
		logger.Warn("failed to cleanup lock", "payment_id", pc.PaymentID, "error", err)
	}
	if err := s.redis.Del(s.config.RetryKeyPrefix + pc.PaymentID); err != nil {
		logger.Warn("failed to cleanup retry counter", "payment_id", pc.PaymentID, "error", err)
	}
	pc.lockAcquired = false
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, paymentID string) (int, error) {
	raw, err := s.redis.Get(s.config.RetryKeyPrefix + paymentID)
	if err != nil {
		if err == redis.NilError {
			return 0, nil
		}
		return 0, err
	}

	retryCount := 0
	fmt.Sscanf(string(raw), "%d", &retryCount)
	return retryCount, nil
}
