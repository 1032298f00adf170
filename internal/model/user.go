package model

import (
	"fmt"
	"time"
)

// Role is a closed enum. Authorization questions go through the
// capability methods below instead of string comparisons at call sites.
type Role string

const (
	RoleUser          Role = "user"
	RoleCompanyAdmin  Role = "company_admin"
	RoleSuperadmin    Role = "superadmin"
	RoleDealerUser    Role = "dealer_user"
	RoleExecutiveUser Role = "executive_user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleCompanyAdmin, RoleSuperadmin, RoleDealerUser, RoleExecutiveUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// BypassesDeviceAdmission reports whether login skips the device
// approval flow entirely.
func (r Role) BypassesDeviceAdmission() bool {
	return r == RoleSuperadmin
}

// CanApproveDevices reports whether the role may approve or revoke
// device mappings.
func (r Role) CanApproveDevices() bool {
	return r == RoleSuperadmin
}

// CanManageMasterData reports whether the role may create or update
// company-scoped master data.
func (r Role) CanManageMasterData() bool {
	return r == RoleCompanyAdmin || r == RoleSuperadmin
}

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsVerified   bool       `json:"is_verified"`
	CompanyID    *int64     `json:"company_id,omitempty"` // nil for superadmin
	DeviceValid  bool       `json:"is_device_valid"`      // derived: has any approved device
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type UserCreateRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CompanyID *int64 `json:"company_id"`
}

func (p UserCreateRequest) Validate() error {
	if p.Username == "" {
		return errRequired("username")
	}
	if p.Email == "" {
		return errRequired("email")
	}
	if p.Password == "" {
		return errRequired("password")
	}
	return nil
}

func errRequired(field string) error {
	return fmt.Errorf("%s is required", field)
}
