package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

// Admission reason codes. Every rejected login carries exactly one.
const (
	ReasonInvalidCredentials     = "INVALID_CREDENTIALS"
	ReasonAccountInactive        = "ACCOUNT_INACTIVE"
	ReasonLicenseExpired         = "LICENSE_EXPIRED"
	ReasonLicensePendingApproval = "LICENSE_PENDING_APPROVAL"
	ReasonDeviceUIDAlreadyBound  = "DEVICE_UID_ALREADY_BOUND"
	ReasonDevicePendingApproval  = "DEVICE_PENDING_APPROVAL"
	ReasonDeviceInactive         = "DEVICE_INACTIVE"
	ReasonDeviceLimitReached     = "DEVICE_LIMIT_REACHED"
)

// AdmissionError is a reason-coded login rejection.
type AdmissionError struct {
	Reason  string
	Message string
	Mapping *model.DeviceMapping
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func rejected(reason, message string) *AdmissionError {
	return &AdmissionError{Reason: reason, Message: message}
}

type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	DeviceUID string `json:"device_uid"`
	UserAgent string `json:"-"`
}

type LoginResult struct {
	User    *model.User
	Mapping *model.DeviceMapping
	Tokens  *TokenPair
}

type AdmissionUserRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type AdmissionCompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Company, error)
}

type DeviceRegistry interface {
	ResolveOrCreate(ctx context.Context, user *model.User, deviceUID, userAgent string) (*model.DeviceMapping, error)
	AcquireSlot(ctx context.Context, companyID int64, mapping *model.DeviceMapping) error
	ReleaseSlot(ctx context.Context, deviceUID string) error
}

type LicenseGate interface {
	CheckValidity(company *model.Company) LicenseVerdict
}

type TokenIssuer interface {
	IssuePair(user *model.User, deviceUID string) (*TokenPair, error)
	ParseRefresh(token string) (*SessionClaims, error)
}

type RejectionRecorder func(reason string)

type AdmissionService struct {
	userRepo    AdmissionUserRepository
	companyRepo AdmissionCompanyRepository
	devices     DeviceRegistry
	license     LicenseGate
	tokens      TokenIssuer
	onRejection RejectionRecorder
}

func NewAdmissionService(userRepo AdmissionUserRepository, companyRepo AdmissionCompanyRepository, devices DeviceRegistry, license LicenseGate, tokens TokenIssuer, onRejection RejectionRecorder) *AdmissionService {
	if onRejection == nil {
		onRejection = func(string) {}
	}
	return &AdmissionService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		devices:     devices,
		license:     license,
		tokens:      tokens,
		onRejection: onRejection,
	}
}

// Login runs the admission decision protocol in order; the first failing
// step wins and later steps never run.
func (s *AdmissionService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	result, err := s.login(ctx, req)
	if err != nil {
		var adm *AdmissionError
		if errors.As(err, &adm) {
			s.onRejection(adm.Reason)
			logger.Info("login rejected", "username", req.Username, "reason", adm.Reason)
		}
		return nil, err
	}
	return result, nil
}

func (s *AdmissionService) login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, rejected(ReasonInvalidCredentials, "invalid username or password")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, rejected(ReasonInvalidCredentials, "invalid username or password")
	}

	if !user.IsActive {
		return nil, rejected(ReasonAccountInactive, "account is disabled, contact your administrator")
	}

	if user.CompanyID != nil {
		company, err := s.companyRepo.GetByID(ctx, *user.CompanyID)
		if err != nil {
			return nil, err
		}

		switch s.license.CheckValidity(company) {
		case LicenseExpired:
			return nil, rejected(ReasonLicenseExpired, "company license has expired, renew the subscription")
		case LicensePendingApproval:
			return nil, rejected(ReasonLicensePendingApproval, "company license is awaiting approval")
		}
	}

	if user.Role.BypassesDeviceAdmission() {
		return s.admit(ctx, user, nil, req.DeviceUID)
	}

	if req.DeviceUID == "" {
		// Browser login, no device identity to gate on.
		return s.admit(ctx, user, nil, "")
	}

	mapping, err := s.devices.ResolveOrCreate(ctx, user, req.DeviceUID, req.UserAgent)
	if err != nil {
		if errors.Is(err, ErrDeviceBoundElsewhere) {
			return nil, rejected(ReasonDeviceUIDAlreadyBound, "this device is registered to another user")
		}
		return nil, err
	}

	switch mapping.Status {
	case model.DeviceStatusPending:
		return nil, &AdmissionError{
			Reason:  ReasonDevicePendingApproval,
			Message: "device is awaiting administrator approval",
			Mapping: mapping,
		}
	case model.DeviceStatusInactive:
		return nil, &AdmissionError{
			Reason:  ReasonDeviceInactive,
			Message: "device access has been revoked",
			Mapping: mapping,
		}
	}

	if user.CompanyID != nil {
		if err := s.devices.AcquireSlot(ctx, *user.CompanyID, mapping); err != nil {
			if errors.Is(err, ErrDeviceLimitReached) {
				return nil, rejected(ReasonDeviceLimitReached, "all device slots are in use, log out another device or raise the license limit")
			}
			return nil, err
		}
	}

	return s.admit(ctx, user, mapping, req.DeviceUID)
}

func (s *AdmissionService) admit(ctx context.Context, user *model.User, mapping *model.DeviceMapping, deviceUID string) (*LoginResult, error) {
	tokens, err := s.tokens.IssuePair(user, deviceUID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Warn("failed to stamp last login", "user_id", user.ID, "error", err)
	}

	logger.Info("login admitted", "user_id", user.ID, "username", user.Username, "device_uid", deviceUID)

	return &LoginResult{User: user, Mapping: mapping, Tokens: tokens}, nil
}

// Logout frees the device slot. Cookie clearing is the transport layer's
// job and happens regardless of what this returns.
func (s *AdmissionService) Logout(ctx context.Context, deviceUID string) error {
	if deviceUID == "" {
		return nil
	}
	return s.devices.ReleaseSlot(ctx, deviceUID)
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AdmissionService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Username)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, rejected(ReasonAccountInactive, "account is disabled")
	}

	tokens, err := s.tokens.IssuePair(user, claims.DeviceUID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Tokens: tokens}, nil
}
