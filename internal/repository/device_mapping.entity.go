package repository

import (
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
)

type DeviceMappingEntity struct {
	ID               int64      `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	UserID           int64      `db:"user_id"           gorm:"column:user_id;not null;index"`
	UsernameSnapshot string     `db:"username_snapshot" gorm:"column:username_snapshot;not null"`
	DeviceUID        string     `db:"device_uid"        gorm:"column:device_uid;not null;unique"`
	DeviceType       string     `db:"device_type"       gorm:"column:device_type;not null;default:unknown"`
	UserAgent        string     `db:"user_agent"        gorm:"column:user_agent"`
	Status           int        `db:"status"            gorm:"column:status;not null;default:0"`
	IsActive         bool       `db:"is_active"         gorm:"column:is_active;not null;default:false"`
	ApprovedByID     *int64     `db:"approved_by_id"    gorm:"column:approved_by_id"`
	ApprovedAt       *time.Time `db:"approved_at"       gorm:"column:approved_at"`
	LastSeenAt       *time.Time `db:"last_seen_at"      gorm:"column:last_seen_at"`
	CreatedAt        time.Time  `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `db:"updated_at"        gorm:"column:updated_at;autoUpdateTime"`
}

func (DeviceMappingEntity) TableName() string {
	return "device_mappings"
}

func toDeviceMappingEntity(m *model.DeviceMapping) *DeviceMappingEntity {
	if m == nil {
		return nil
	}
	return &DeviceMappingEntity{
		ID:               m.ID,
		UserID:           m.UserID,
		UsernameSnapshot: m.UsernameSnapshot,
		DeviceUID:        m.DeviceUID,
		DeviceType:       string(m.DeviceType),
		UserAgent:        m.UserAgent,
		Status:           int(m.Status),
		IsActive:         m.IsActive,
		ApprovedByID:     m.ApprovedByID,
		ApprovedAt:       m.ApprovedAt,
		LastSeenAt:       m.LastSeenAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toDeviceMappingModel(e *DeviceMappingEntity) *model.DeviceMapping {
	if e == nil {
		return nil
	}
	return &model.DeviceMapping{
		ID:               e.ID,
		UserID:           e.UserID,
		UsernameSnapshot: e.UsernameSnapshot,
		DeviceUID:        e.DeviceUID,
		DeviceType:       model.DeviceType(e.DeviceType),
		UserAgent:        e.UserAgent,
		Status:           model.DeviceStatus(e.Status),
		IsActive:         e.IsActive,
		ApprovedByID:     e.ApprovedByID,
		ApprovedAt:       e.ApprovedAt,
		LastSeenAt:       e.LastSeenAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toDeviceMappingModels(entities []*DeviceMappingEntity) []*model.DeviceMapping {
	if entities == nil {
		return nil
	}
	models := make([]*model.DeviceMapping, len(entities))
	for i, e := range entities {
		models[i] = toDeviceMappingModel(e)
	}
	return models
}
