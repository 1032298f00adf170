package repository

import (
	"context"
	"errors"
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrMappingNotFound  = errors.New("device mapping not found")
	ErrDeviceUIDTaken   = errors.New("device uid already bound")
	ErrMappingNotActive = errors.New("device mapping is not active")
)

type DeviceMappingRepository struct {
	*pg.DB
}

func NewDeviceMappingRepository(db *pg.DB) *DeviceMappingRepository {
	return &DeviceMappingRepository{
		db,
	}
}

func (r *DeviceMappingRepository) Create(ctx context.Context, mapping *model.DeviceMapping) (*model.DeviceMapping, error) {
	entity := toDeviceMappingEntity(mapping)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDeviceUIDTaken
		}
		return nil, err
	}

	return toDeviceMappingModel(entity), nil
}

func (r *DeviceMappingRepository) GetByID(ctx context.Context, id int64) (*model.DeviceMapping, error) {
	var entity DeviceMappingEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}

	return toDeviceMappingModel(&entity), nil
}

// FindByUID looks a device up across all users. The device_uid column is
// globally unique, so at most one row matches.
func (r *DeviceMappingRepository) FindByUID(ctx context.Context, deviceUID string) (*model.DeviceMapping, error) {
	var entity DeviceMappingEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("device_uid = ?", deviceUID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}
		return nil, err
	}

	return toDeviceMappingModel(&entity), nil
}

func (r *DeviceMappingRepository) ListForUser(ctx context.Context, userID int64) ([]*model.DeviceMapping, error) {
	var entities []*DeviceMappingEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toDeviceMappingModels(entities), nil
}

func (r *DeviceMappingRepository) ListPendingForCompany(ctx context.Context, companyID int64) ([]*model.DeviceMapping, error) {
	var entities []*DeviceMappingEntity
	err := r.Read(ctx).WithContext(ctx).
		Table("device_mappings AS dm").
		Select("dm.*").
		Joins("JOIN users AS u ON u.id = dm.user_id").
		Where("u.company_id = ? AND dm.status = ?", companyID, int(model.DeviceStatusPending)).
		Order("dm.created_at ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}

	return toDeviceMappingModels(entities), nil
}

// CountActiveForCompany counts occupied concurrency slots: approved,
// active mappings whose owner belongs to the company. excludeUID keeps a
// re-admitting device from counting against itself.
func (r *DeviceMappingRepository) CountActiveForCompany(ctx context.Context, companyID int64, excludeUID string) (int64, error) {
	q := r.Write(ctx).WithContext(ctx).
		Table("device_mappings AS dm").
		Joins("JOIN users AS u ON u.id = dm.user_id").
		Where("u.company_id = ? AND dm.status = ? AND dm.is_active = ?",
			companyID, int(model.DeviceStatusApproved), true)

	if excludeUID != "" {
		q = q.Where("dm.device_uid <> ?", excludeUID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *DeviceMappingRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&DeviceMappingEntity{}).
		Where("id = ?", id).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}
	return nil
}

func (r *DeviceMappingRepository) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&DeviceMappingEntity{}).
		Where("id = ?", id).
		Update("last_seen_at", at).
		Error
}

// RefreshMeta rewrites the login-time snapshot of the device: user
// agent, derived device type and last-seen stamp.
func (r *DeviceMappingRepository) RefreshMeta(ctx context.Context, id int64, userAgent string, deviceType model.DeviceType, at time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&DeviceMappingEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"user_agent":   userAgent,
			"device_type":  string(deviceType),
			"last_seen_at": at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}
	return nil
}

// Approve moves a Pending or Inactive mapping to Approved and records the
// approver. An already-approved mapping is left untouched.
func (r *DeviceMappingRepository) Approve(ctx context.Context, id int64, approverID int64, at time.Time) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&DeviceMappingEntity{}).
		Where("id = ? AND status <> ?", id, int(model.DeviceStatusApproved)).
		Updates(map[string]interface{}{
			"status":         int(model.DeviceStatusApproved),
			"approved_by_id": approverID,
			"approved_at":    at,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Revoke moves a mapping to Inactive and frees its slot.
func (r *DeviceMappingRepository) Revoke(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&DeviceMappingEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    int(model.DeviceStatusInactive),
			"is_active": false,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMappingNotFound
	}
	return nil
}

// HasApprovedForUser backs the users.device_valid recompute.
func (r *DeviceMappingRepository) HasApprovedForUser(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&DeviceMappingEntity{}).
		Where("user_id = ? AND status = ?", userID, int(model.DeviceStatusApproved)).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
