package model

import (
	"strings"
	"time"
)

// DeviceStatus is the approval lifecycle of a device mapping.
// Pending -[approve]-> Approved -[revoke]-> Inactive -[approve]-> Approved.
type DeviceStatus int

const (
	DeviceStatusPending  DeviceStatus = 0
	DeviceStatusApproved DeviceStatus = 1
	DeviceStatusInactive DeviceStatus = 2
)

func (s DeviceStatus) String() string {
	switch s {
	case DeviceStatusPending:
		return "pending"
	case DeviceStatusApproved:
		return "approved"
	case DeviceStatusInactive:
		return "inactive"
	}
	return "unknown"
}

type DeviceType string

const (
	DeviceTypeAndroid    DeviceType = "android"
	DeviceTypeIOS        DeviceType = "ios"
	DeviceTypeWebMobile  DeviceType = "web_mobile"
	DeviceTypeWebDesktop DeviceType = "web_desktop"
	DeviceTypeUnknown    DeviceType = "unknown"
)

// ClassifyDevice maps a user-agent string to a DeviceType. Used for
// storage and reporting only: user agents are forgeable, so the device
// admission flow is gated on the presence of a device_uid instead.
func ClassifyDevice(userAgent string) DeviceType {
	agent := strings.ToLower(userAgent)
	if strings.Contains(agent, "android") {
		return DeviceTypeAndroid
	}
	if strings.Contains(agent, "iphone") || strings.Contains(agent, "ipad") || strings.Contains(agent, "ios") {
		return DeviceTypeIOS
	}
	for _, token := range []string{"mobile", "opera mini", "blackberry", "iemobile"} {
		if strings.Contains(agent, token) {
			return DeviceTypeWebMobile
		}
	}
	if agent != "" {
		return DeviceTypeWebDesktop
	}
	return DeviceTypeUnknown
}

// DeviceMapping binds a device_uid to exactly one user for its lifetime.
// is_active marks an occupied concurrency slot and is only meaningful
// while status is Approved. Mappings are never hard-deleted.
type DeviceMapping struct {
	ID               int64        `json:"id"`
	UserID           int64        `json:"user_id"`
	UsernameSnapshot string       `json:"username_snapshot"`
	DeviceUID        string       `json:"device_uid"`
	DeviceType       DeviceType   `json:"device_type"`
	UserAgent        string       `json:"user_agent,omitempty"`
	Status           DeviceStatus `json:"status"`
	IsActive         bool         `json:"is_active"`
	ApprovedByID     *int64       `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time   `json:"approved_at,omitempty"`
	LastSeenAt       *time.Time   `json:"last_seen_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
