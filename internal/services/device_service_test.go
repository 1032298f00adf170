package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
)

func TestDeviceService_ResolveOrCreate(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 1, Username: "conductor"}

	t.Run("existing mapping for same user", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		svc := NewDeviceService(mappingRepo, nil, nil)

		existing := &model.DeviceMapping{ID: 5, UserID: 1, DeviceUID: "uid-a", Status: model.DeviceStatusApproved}
		mappingRepo.On("FindByUID", ctx, "uid-a").Return(existing, nil)
		mappingRepo.On("RefreshMeta", ctx, int64(5), "Mozilla/5.0 (Android)", model.DeviceTypeAndroid, mock.AnythingOfType("time.Time")).Return(nil)

		got, err := svc.ResolveOrCreate(ctx, user, "uid-a", "Mozilla/5.0 (Android)")
		require.NoError(t, err)
		assert.Equal(t, existing, got)
		mappingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("pending login still refreshes the snapshot", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		svc := NewDeviceService(mappingRepo, nil, nil)

		existing := &model.DeviceMapping{
			ID:         5,
			UserID:     1,
			DeviceUID:  "uid-a",
			DeviceType: model.DeviceTypeUnknown,
			UserAgent:  "OldAgent/1.0",
			Status:     model.DeviceStatusPending,
		}
		mappingRepo.On("FindByUID", ctx, "uid-a").Return(existing, nil)
		mappingRepo.On("RefreshMeta", ctx, int64(5), "Dalvik/2.1.0 (Linux; Android 12)", model.DeviceTypeAndroid, mock.AnythingOfType("time.Time")).Return(nil)

		got, err := svc.ResolveOrCreate(ctx, user, "uid-a", "Dalvik/2.1.0 (Linux; Android 12)")
		require.NoError(t, err)
		assert.Equal(t, "Dalvik/2.1.0 (Linux; Android 12)", got.UserAgent)
		assert.Equal(t, model.DeviceTypeAndroid, got.DeviceType)
		require.NotNil(t, got.LastSeenAt)
		mappingRepo.AssertExpectations(t)
	})

	t.Run("empty user agent keeps the stored one", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		svc := NewDeviceService(mappingRepo, nil, nil)

		existing := &model.DeviceMapping{ID: 6, UserID: 1, DeviceUID: "uid-b", DeviceType: model.DeviceTypeAndroid, UserAgent: "Dalvik/2.1.0", Status: model.DeviceStatusApproved}
		mappingRepo.On("FindByUID", ctx, "uid-b").Return(existing, nil)
		mappingRepo.On("RefreshMeta", ctx, int64(6), "Dalvik/2.1.0", model.DeviceTypeAndroid, mock.AnythingOfType("time.Time")).Return(nil)

		got, err := svc.ResolveOrCreate(ctx, user, "uid-b", "")
		require.NoError(t, err)
		assert.Equal(t, "Dalvik/2.1.0", got.UserAgent)
		require.NotNil(t, got.LastSeenAt)
	})

	t.Run("bound to another user", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		svc := NewDeviceService(mappingRepo, nil, nil)

		mappingRepo.On("FindByUID", ctx, "uid-a").Return(&model.DeviceMapping{ID: 5, UserID: 99, DeviceUID: "uid-a"}, nil)

		_, err := svc.ResolveOrCreate(ctx, user, "uid-a", "")
		assert.ErrorIs(t, err, ErrDeviceBoundElsewhere)
	})

	t.Run("first sight creates pending", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		svc := NewDeviceService(mappingRepo, nil, nil)

		mappingRepo.On("FindByUID", ctx, "uid-new").Return(nil, repository.ErrMappingNotFound)
		mappingRepo.On("Create", ctx, mock.MatchedBy(func(m *model.DeviceMapping) bool {
			return m.UserID == 1 && m.DeviceUID == "uid-new" &&
				m.Status == model.DeviceStatusPending &&
				m.DeviceType == model.DeviceTypeAndroid
		})).Return(&model.DeviceMapping{ID: 6, UserID: 1, DeviceUID: "uid-new", Status: model.DeviceStatusPending}, nil)

		got, err := svc.ResolveOrCreate(ctx, user, "uid-new", "Dalvik/2.1.0 (Linux; Android 12)")
		require.NoError(t, err)
		assert.Equal(t, model.DeviceStatusPending, got.Status)
	})
}

func TestDeviceService_AcquireSlot(t *testing.T) {
	ctx := context.Background()
	companyID := int64(10)

	t.Run("already active is idempotent", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		companyRepo := new(MockCompanyRepository)
		svc := NewDeviceService(mappingRepo, companyRepo, nil)

		mapping := &model.DeviceMapping{ID: 1, DeviceUID: "uid-a", Status: model.DeviceStatusApproved, IsActive: true}

		mappingRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		companyRepo.On("GetForUpdate", ctx, companyID).Return(validatedCompany(companyID, 1), nil)
		mappingRepo.On("TouchLastSeen", ctx, int64(1), mock.AnythingOfType("time.Time")).Return(nil)

		require.NoError(t, svc.AcquireSlot(ctx, companyID, mapping))
		mappingRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("free slot is claimed", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		companyRepo := new(MockCompanyRepository)
		svc := NewDeviceService(mappingRepo, companyRepo, nil)

		mapping := &model.DeviceMapping{ID: 2, DeviceUID: "uid-b", Status: model.DeviceStatusApproved}

		mappingRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		companyRepo.On("GetForUpdate", ctx, companyID).Return(validatedCompany(companyID, 2), nil)
		mappingRepo.On("CountActiveForCompany", ctx, companyID, "uid-b").Return(int64(1), nil)
		mappingRepo.On("SetActive", ctx, int64(2), true).Return(nil)
		mappingRepo.On("TouchLastSeen", ctx, int64(2), mock.AnythingOfType("time.Time")).Return(nil)

		require.NoError(t, svc.AcquireSlot(ctx, companyID, mapping))
		mappingRepo.AssertExpectations(t)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		companyRepo := new(MockCompanyRepository)
		svc := NewDeviceService(mappingRepo, companyRepo, nil)

		mapping := &model.DeviceMapping{ID: 3, DeviceUID: "uid-c", Status: model.DeviceStatusApproved}

		mappingRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		companyRepo.On("GetForUpdate", ctx, companyID).Return(validatedCompany(companyID, 2), nil)
		mappingRepo.On("CountActiveForCompany", ctx, companyID, "uid-c").Return(int64(2), nil)

		err := svc.AcquireSlot(ctx, companyID, mapping)
		assert.ErrorIs(t, err, ErrDeviceLimitReached)
		mappingRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("registered-device quota does not widen the mobile quota", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		companyRepo := new(MockCompanyRepository)
		svc := NewDeviceService(mappingRepo, companyRepo, nil)

		mapping := &model.DeviceMapping{ID: 4, DeviceUID: "uid-d", Status: model.DeviceStatusApproved}
		company := validatedCompany(companyID, 1)
		company.DeviceCount = 5

		mappingRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		companyRepo.On("GetForUpdate", ctx, companyID).Return(company, nil)
		mappingRepo.On("CountActiveForCompany", ctx, companyID, "uid-d").Return(int64(1), nil)

		err := svc.AcquireSlot(ctx, companyID, mapping)
		assert.ErrorIs(t, err, ErrDeviceLimitReached)
		mappingRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeviceService_ApproveRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("approve refreshes device_valid", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		userRepo := new(MockUserRepository)
		svc := NewDeviceService(mappingRepo, nil, userRepo)

		mapping := &model.DeviceMapping{ID: 1, UserID: 7, DeviceUID: "uid-a", Status: model.DeviceStatusPending}
		approved := &model.DeviceMapping{ID: 1, UserID: 7, DeviceUID: "uid-a", Status: model.DeviceStatusApproved}

		mappingRepo.On("GetByID", ctx, int64(1)).Return(mapping, nil).Once()
		mappingRepo.On("Approve", ctx, int64(1), int64(100), mock.AnythingOfType("time.Time")).Return(nil)
		mappingRepo.On("HasApprovedForUser", ctx, int64(7)).Return(true, nil)
		userRepo.On("SetDeviceValid", ctx, int64(7), true).Return(nil)
		mappingRepo.On("GetByID", ctx, int64(1)).Return(approved, nil).Once()

		got, err := svc.Approve(ctx, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, model.DeviceStatusApproved, got.Status)
		userRepo.AssertExpectations(t)
	})

	t.Run("revoking the last device clears device_valid", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		userRepo := new(MockUserRepository)
		svc := NewDeviceService(mappingRepo, nil, userRepo)

		mapping := &model.DeviceMapping{ID: 2, UserID: 7, DeviceUID: "uid-b", Status: model.DeviceStatusApproved, IsActive: true}

		mappingRepo.On("GetByID", ctx, int64(2)).Return(mapping, nil)
		mappingRepo.On("Revoke", ctx, int64(2)).Return(nil)
		mappingRepo.On("HasApprovedForUser", ctx, int64(7)).Return(false, nil)
		userRepo.On("SetDeviceValid", ctx, int64(7), false).Return(nil)

		require.NoError(t, svc.Revoke(ctx, 2))
		userRepo.AssertExpectations(t)
	})

	t.Run("unknown mapping", func(t *testing.T) {
		mappingRepo := new(MockDeviceMappingRepository)
		svc := NewDeviceService(mappingRepo, nil, nil)

		mappingRepo.On("GetByID", ctx, int64(99)).Return(nil, repository.ErrMappingNotFound)

		_, err := svc.Approve(ctx, 99, 1)
		assert.ErrorIs(t, err, ErrMappingNotFound)
	})
}
