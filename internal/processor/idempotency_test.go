package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/transitops/ticket-backoffice/pkg/redis"
)

type mockRedisAdapter struct {
	data map[string][]byte
	ttls map[string]time.Time
}

func newMockRedisAdapter() *mockRedisAdapter {
	return &mockRedisAdapter{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Time),
	}
}

func (m *mockRedisAdapter) SetNX(key string, value []byte, ttl time.Duration) (bool, error) {
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	m.data[key] = value
	if ttl > 0 {
		m.ttls[key] = time.Now().Add(ttl)
	}
	return true, nil
}

func (m *mockRedisAdapter) Set(key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	if ttl > 0 {
		m.ttls[key] = time.Now().Add(ttl)
	}
	return nil
}

func (m *mockRedisAdapter) Get(key string) ([]byte, error) {
	if ttl, ok := m.ttls[key]; ok && time.Now().After(ttl) {
		delete(m.data, key)
		delete(m.ttls, key)
		return nil, redis.NilError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, redis.NilError
}

func (m *mockRedisAdapter) Del(key string) error {
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

func (m *mockRedisAdapter) Exist(key string) (int64, error) {
	if ttl, ok := m.ttls[key]; ok && time.Now().After(ttl) {
		delete(m.data, key)
		delete(m.ttls, key)
		return 0, nil
	}
	if _, ok := m.data[key]; ok {
		return 1, nil
	}
	return 0, nil
}

// Stub implementations for unused methods
func (m *mockRedisAdapter) SMembers(key string) ([]string, error)         { return nil, nil }
func (m *mockRedisAdapter) SAdd(key string, value ...interface{}) error   { return nil }
func (m *mockRedisAdapter) HGet(key string, field string) ([]byte, error) { return nil, nil }
func (m *mockRedisAdapter) HGetAll(key string) (map[string]string, error) { return nil, nil }
func (m *mockRedisAdapter) HScan(key string, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return nil, 0, nil
}
func (m *mockRedisAdapter) SScan(key string, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return nil, 0, nil
}
func (m *mockRedisAdapter) HGetMultiple(keys ...string) (map[string]map[string]string, error) {
	return nil, nil
}
func (m *mockRedisAdapter) HSetIfNotExists(key string, field string, value interface{}) error {
	return nil
}
func (m *mockRedisAdapter) HSet(key string, field string, value interface{}) error { return nil }
func (m *mockRedisAdapter) HIncrement(key string, field string, value int64) error { return nil }
func (m *mockRedisAdapter) HIncrementBatch(coreName, keySuffix string, fieldAndValues map[string]int64, ttl time.Duration) error {
	return nil
}
func (m *mockRedisAdapter) TxPipelined(fn func(goredis.Pipeliner) error) ([]goredis.Cmder, error) {
	return nil, nil
}
func (m *mockRedisAdapter) Client() goredis.UniversalClient { return nil }
func (m *mockRedisAdapter) XAdd(key string, values map[string]interface{}) (string, error) {
	return "", nil
}
func (m *mockRedisAdapter) XAddWithID(key string, id string, values map[string]interface{}) (string, error) {
	return "", nil
}
func (m *mockRedisAdapter) XRead(key string, id string, count int64) ([]redis.StreamMessage, error) {
	return nil, nil
}
func (m *mockRedisAdapter) XReadGroup(group, consumer, key, id string, count int64) ([]redis.StreamMessage, error) {
	return nil, nil
}
func (m *mockRedisAdapter) XAck(key, group string, ids ...string) error           { return nil }
func (m *mockRedisAdapter) XGroupCreate(key, group, start string) error           { return nil }
func (m *mockRedisAdapter) XGroupCreateMkStream(key, group, start string) error   { return nil }
func (m *mockRedisAdapter) XLen(key string) (int64, error)                        { return 0, nil }
func (m *mockRedisAdapter) XDel(key string, ids ...string) error                  { return nil }
func (m *mockRedisAdapter) XTrim(key string, maxLen int64) error                  { return nil }
func (m *mockRedisAdapter) XTrimApprox(key string, maxLen int64) error            { return nil }
func (m *mockRedisAdapter) XPending(key, group string) (*goredis.XPending, error) { return nil, nil }
func (m *mockRedisAdapter) XPendingExt(key, group string, start, end string, count int64) ([]goredis.XPendingExt, error) {
	return nil, nil
}
func (m *mockRedisAdapter) XClaim(key, group, consumer string, minIdle time.Duration, ids ...string) ([]redis.StreamMessage, error) {
	return nil, nil
}

func TestIdempotencyService_AcquireProcessingLock_FirstAttempt(t *testing.T) {
	adapter := newMockRedisAdapter()
	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())

	pc, err := svc.AcquireProcessingLock(context.Background(), "101")
	if err != nil {
		t.Fatalf("expected lock acquisition, got error: %v", err)
	}
	if pc.RetryCount != 0 {
		t.Errorf("expected retry count 0, got %d", pc.RetryCount)
	}
	if pc.IsRetry {
		t.Error("first attempt should not be a retry")
	}
	if !pc.lockAcquired {
		t.Error("lock should be held")
	}
}

func TestIdempotencyService_AcquireProcessingLock_Concurrent(t *testing.T) {
	adapter := newMockRedisAdapter()
	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	if _, err := svc.AcquireProcessingLock(ctx, "101"); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	_, err := svc.AcquireProcessingLock(ctx, "101")
	if !errors.Is(err, ErrLockAcquireFailed) {
		t.Errorf("expected ErrLockAcquireFailed, got %v", err)
	}
}

func TestIdempotencyService_MarkSuccess(t *testing.T) {
	adapter := newMockRedisAdapter()
	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "101")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if err := svc.MarkSuccess(ctx, pc); err != nil {
		t.Fatalf("mark success failed: %v", err)
	}

	// Redelivery must short-circuit on the done marker.
	_, err = svc.AcquireProcessingLock(ctx, "101")
	if !errors.Is(err, ErrAlreadyReconciled) {
		t.Errorf("expected ErrAlreadyReconciled, got %v", err)
	}
}

func TestIdempotencyService_MarkFailure_WithRetry(t *testing.T) {
	adapter := newMockRedisAdapter()
	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "101")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if err := svc.MarkFailure(ctx, pc, errors.New("engine error")); err != nil {
		t.Fatalf("mark failure failed: %v", err)
	}

	// Lock is released and retry count carries over.
	pc2, err := svc.AcquireProcessingLock(ctx, "101")
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	if pc2.RetryCount != 1 {
		t.Errorf("expected retry count 1, got %d", pc2.RetryCount)
	}
	if !pc2.IsRetry {
		t.Error("second attempt should be marked a retry")
	}
}

func TestIdempotencyService_MaxRetriesExceeded(t *testing.T) {
	adapter := newMockRedisAdapter()
	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = 2
	svc := NewIdempotencyService(adapter, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		pc, err := svc.AcquireProcessingLock(ctx, "101")
		if err != nil {
			t.Fatalf("acquire %d failed: %v", i, err)
		}
		if err := svc.MarkFailure(ctx, pc, errors.New("engine error")); err != nil {
			t.Fatalf("mark failure %d failed: %v", i, err)
		}
	}

	_, err := svc.AcquireProcessingLock(ctx, "101")
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("expected ErrMaxRetriesExceeded, got %v", err)
	}
}

func TestIdempotencyService_ReleaseLock(t *testing.T) {
	adapter := newMockRedisAdapter()
	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := svc.AcquireProcessingLock(ctx, "101")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if err := svc.ReleaseLock(ctx, pc); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	// Releasing without success must not block a later attempt.
	if _, err := svc.AcquireProcessingLock(ctx, "101"); err != nil {
		t.Errorf("reacquire after release failed: %v", err)
	}
}

func TestIdempotencyService_GetRetryCount(t *testing.T) {
	adapter := newMockRedisAdapter()
	svc := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	count, err := svc.GetRetryCount(ctx, "101")
	if err != nil {
		t.Fatalf("get retry count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 for unseen payment, got %d", count)
	}

	pc, _ := svc.AcquireProcessingLock(ctx, "101")
	_ = svc.MarkFailure(ctx, pc, errors.New("engine error"))

	count, err = svc.GetRetryCount(ctx, "101")
	if err != nil {
		t.Fatalf("get retry count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 after a failure, got %d", count)
	}
}
