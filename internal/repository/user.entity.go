package repository

import (
	"time"

	"github.com/transitops/ticket-backoffice/internal/model"
)

type UserEntity struct {
	ID           int64      `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Username     string     `db:"username"      gorm:"column:username;not null;unique"`
	Email        string     `db:"email"         gorm:"column:email;not null"`
	PasswordHash string     `db:"password_hash" gorm:"column:password_hash;not null"`
	Role         string     `db:"role"          gorm:"column:role;not null;default:user"`
	IsActive     bool       `db:"is_active"     gorm:"column:is_active;not null;default:true"`
	IsVerified   bool       `db:"is_verified"   gorm:"column:is_verified;not null;default:false"`
	CompanyID    *int64     `db:"company_id"    gorm:"column:company_id;index"`
	DeviceValid  bool       `db:"device_valid"  gorm:"column:device_valid;not null;default:false"`
	LastLogin    *time.Time `db:"last_login"    gorm:"column:last_login"`
	CreatedAt    time.Time  `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (UserEntity) TableName() string {
	return "users"
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         string(m.Role),
		IsActive:     m.IsActive,
		IsVerified:   m.IsVerified,
		CompanyID:    m.CompanyID,
		DeviceValid:  m.DeviceValid,
		LastLogin:    m.LastLogin,
		CreatedAt:    m.CreatedAt,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Username:     e.Username,
		Email:        e.Email,
		PasswordHash: e.PasswordHash,
		Role:         model.Role(e.Role),
		IsActive:     e.IsActive,
		IsVerified:   e.IsVerified,
		CompanyID:    e.CompanyID,
		DeviceValid:  e.DeviceValid,
		LastLogin:    e.LastLogin,
		CreatedAt:    e.CreatedAt,
	}
}

func toUserModels(entities []*UserEntity) []*model.User {
	if entities == nil {
		return nil
	}
	models := make([]*model.User, len(entities))
	for i, e := range entities {
		models[i] = toUserModel(e)
	}
	return models
}
