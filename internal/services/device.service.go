package services

import (
	"context"
	"errors"
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrDeviceBoundElsewhere = errors.New("device is bound to another user")
	ErrDeviceLimitReached   = errors.New("company device limit reached")
	ErrMappingNotFound      = errors.New("device mapping not found")
)

type DeviceMappingRepository interface {
	Create(ctx context.Context, mapping *model.DeviceMapping) (*model.DeviceMapping, error)
	GetByID(ctx context.Context, id int64) (*model.DeviceMapping, error)
	FindByUID(ctx context.Context, deviceUID string) (*model.DeviceMapping, error)
	ListForUser(ctx context.Context, userID int64) ([]*model.DeviceMapping, error)
	ListPendingForCompany(ctx context.Context, companyID int64) ([]*model.DeviceMapping, error)
	CountActiveForCompany(ctx context.Context, companyID int64, excludeUID string) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
	RefreshMeta(ctx context.Context, id int64, userAgent string, deviceType model.DeviceType, at time.Time) error
	Approve(ctx context.Context, id int64, approverID int64, at time.Time) error
	Revoke(ctx context.Context, id int64) error
	HasApprovedForUser(ctx context.Context, userID int64) (bool, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type DeviceCompanyRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*model.Company, error)
}

type DeviceUserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	SetDeviceValid(ctx context.Context, id int64, valid bool) error
}

type DeviceService struct {
	mappingRepo DeviceMappingRepository
	companyRepo DeviceCompanyRepository
	userRepo    DeviceUserRepository
}

func NewDeviceService(mappingRepo DeviceMappingRepository, companyRepo DeviceCompanyRepository, userRepo DeviceUserRepository) *DeviceService {
	return &DeviceService{
		mappingRepo: mappingRepo,
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

// ResolveOrCreate returns the user's mapping for the device, creating a
// Pending one on first sight. An existing mapping gets its user agent,
// device type and last-seen stamp refreshed on every login, whatever its
// status. A device already bound to a different user is rejected for
// life.
func (s *DeviceService) ResolveOrCreate(ctx context.Context, user *model.User, deviceUID, userAgent string) (*model.DeviceMapping, error) {
	existing, err := s.mappingRepo.FindByUID(ctx, deviceUID)
	if err == nil {
		if existing.UserID != user.ID {
			return nil, ErrDeviceBoundElsewhere
		}

		ua, deviceType := existing.UserAgent, existing.DeviceType
		if userAgent != "" {
			ua, deviceType = userAgent, model.ClassifyDevice(userAgent)
		}
		now := time.Now()
		if err := s.mappingRepo.RefreshMeta(ctx, existing.ID, ua, deviceType, now); err != nil {
			return nil, err
		}
		existing.UserAgent = ua
		existing.DeviceType = deviceType
		existing.LastSeenAt = &now

		return existing, nil
	}
	if !errors.Is(err, repository.ErrMappingNotFound) {
		return nil, err
	}

	mapping, err := s.mappingRepo.Create(ctx, &model.DeviceMapping{
		UserID:           user.ID,
		UsernameSnapshot: user.Username,
		DeviceUID:        deviceUID,
		DeviceType:       model.ClassifyDevice(userAgent),
		UserAgent:        userAgent,
		Status:           model.DeviceStatusPending,
	})
	if err != nil {
		// Lost the race to another request for the same uid.
		if errors.Is(err, repository.ErrDeviceUIDTaken) {
			return s.ResolveOrCreate(ctx, user, deviceUID, userAgent)
		}
		return nil, err
	}

	logger.Info("device mapping created", "user_id", user.ID, "device_uid", deviceUID, "device_type", string(mapping.DeviceType))

	return mapping, nil
}

// AcquireSlot claims one of the company's mobile_device_count slots for
// an approved mapping. The company row is locked for the duration of the
// check-then-set so two devices cannot both squeeze into the last slot.
func (s *DeviceService) AcquireSlot(ctx context.Context, companyID int64, mapping *model.DeviceMapping) error {
	return s.mappingRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		company, err := s.companyRepo.GetForUpdate(ctx, companyID)
		if err != nil {
			return err
		}

		if mapping.IsActive {
			return s.mappingRepo.TouchLastSeen(ctx, mapping.ID, time.Now())
		}

		active, err := s.mappingRepo.CountActiveForCompany(ctx, companyID, mapping.DeviceUID)
		if err != nil {
			return err
		}

		if active >= int64(company.MobileDeviceCount) {
			return ErrDeviceLimitReached
		}

		if err := s.mappingRepo.SetActive(ctx, mapping.ID, true); err != nil {
			return err
		}
		return s.mappingRepo.TouchLastSeen(ctx, mapping.ID, time.Now())
	})
}

// ReleaseSlot frees the slot on logout. Unknown devices are ignored so
// logout never fails.
func (s *DeviceService) ReleaseSlot(ctx context.Context, deviceUID string) error {
	mapping, err := s.mappingRepo.FindByUID(ctx, deviceUID)
	if err != nil {
		if errors.Is(err, repository.ErrMappingNotFound) {
			return nil
		}
		return err
	}

	return s.mappingRepo.SetActive(ctx, mapping.ID, false)
}

// Approve moves the mapping to Approved and refreshes the owner's
// device_valid flag.
func (s *DeviceService) Approve(ctx context.Context, mappingID, approverID int64) (*model.DeviceMapping, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		if errors.Is(err, repository.ErrMappingNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}

	if err := s.mappingRepo.Approve(ctx, mappingID, approverID, time.Now()); err != nil {
		return nil, err
	}

	if err := s.refreshDeviceValid(ctx, mapping.UserID); err != nil {
		return nil, err
	}

	logger.Info("device approved", "mapping_id", mappingID, "user_id", mapping.UserID, "approved_by", approverID)

	return s.mappingRepo.GetByID(ctx, mappingID)
}

// Revoke deactivates the mapping, frees its slot and refreshes the
// owner's device_valid flag. The uid stays bound to the user.
func (s *DeviceService) Revoke(ctx context.Context, mappingID int64) error {
	mapping, err := s.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		if errors.Is(err, repository.ErrMappingNotFound) {
			return ErrMappingNotFound
		}
		return err
	}

	if err := s.mappingRepo.Revoke(ctx, mappingID); err != nil {
		return err
	}

	if err := s.refreshDeviceValid(ctx, mapping.UserID); err != nil {
		return err
	}

	logger.Info("device revoked", "mapping_id", mappingID, "user_id", mapping.UserID)

	return nil
}

func (s *DeviceService) refreshDeviceValid(ctx context.Context, userID int64) error {
	has, err := s.mappingRepo.HasApprovedForUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepo.SetDeviceValid(ctx, userID, has)
}

func (s *DeviceService) ListForUser(ctx context.Context, userID int64) ([]*model.DeviceMapping, error) {
	return s.mappingRepo.ListForUser(ctx, userID)
}

func (s *DeviceService) ListPending(ctx context.Context, companyID int64) ([]*model.DeviceMapping, error) {
	return s.mappingRepo.ListPendingForCompany(ctx, companyID)
}
