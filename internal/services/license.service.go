package services

import (
	"context"
	"errors"
	"time"

	"github.com/transitops/ticket-backoffice/internal/licensing"
	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrValidationRunning = errors.New("license validation already running")
	ErrCompanyNotFound   = errors.New("company not found")
)

// LicenseVerdict is the gate's answer for one login attempt.
type LicenseVerdict int

const (
	LicenseAllowed LicenseVerdict = iota
	LicenseExpired
	LicensePendingApproval
)

type LicenseCompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Company, error)
	SetCustomerID(ctx context.Context, id int64, customerID string) error
	BeginValidation(ctx context.Context, id int64) error
	SetAuthStatus(ctx context.Context, id int64, status model.AuthStatus) error
	ResetValidating(ctx context.Context, id int64) error
	ApplyLicenseGrant(ctx context.Context, id int64, grant model.LicenseGrant) error
}

type LicenseAuthority interface {
	Register(ctx context.Context, company *model.Company) (string, error)
	Authenticate(ctx context.Context, customerID string) (*licensing.Verdict, error)
}

type LicenseService struct {
	companyRepo  LicenseCompanyRepository
	authority    LicenseAuthority
	pollInterval time.Duration
	pollTimeout  time.Duration
	now          func() time.Time
}

func NewLicenseService(companyRepo LicenseCompanyRepository, authority LicenseAuthority, pollInterval, pollTimeout time.Duration) *LicenseService {
	return &LicenseService{
		companyRepo:  companyRepo,
		authority:    authority,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		now:          time.Now,
	}
}

// CheckValidity is a pure decision over the stored company state. It
// never calls the authority, so login stays fast when the license desk
// is slow or down.
func (s *LicenseService) CheckValidity(company *model.Company) LicenseVerdict {
	if company.IsValidated() {
		if company.LicenseExpired(s.now()) {
			return LicenseExpired
		}
		return LicenseAllowed
	}
	if company.AuthenticationStatus == model.AuthStatusExpired {
		return LicenseExpired
	}
	return LicensePendingApproval
}

// Register submits the company profile to the authority once. A company
// that already holds a customer id is not re-registered.
func (s *LicenseService) Register(ctx context.Context, companyID int64) (string, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return "", ErrCompanyNotFound
		}
		return "", err
	}

	if company.CustomerID != "" {
		return company.CustomerID, nil
	}

	customerID, err := s.authority.Register(ctx, company)
	if err != nil {
		return "", err
	}

	if err := s.companyRepo.SetCustomerID(ctx, companyID, customerID); err != nil {
		return "", err
	}

	return customerID, nil
}

// StartValidation flips the company into Validating and kicks off the
// background poll. Returns ErrValidationRunning when another run holds
// the Validating state.
func (s *LicenseService) StartValidation(ctx context.Context, companyID int64) error {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return ErrCompanyNotFound
		}
		return err
	}

	if company.CustomerID == "" {
		customerID, err := s.Register(ctx, companyID)
		if err != nil {
			return err
		}
		company.CustomerID = customerID
	}

	if err := s.companyRepo.BeginValidation(ctx, companyID); err != nil {
		if errors.Is(err, repository.ErrValidationInProgress) {
			return ErrValidationRunning
		}
		return err
	}

	go s.poll(companyID, company.CustomerID)

	return nil
}

// poll runs detached from the request. Whatever happens, a company left
// in Validating is put back to Pending so a failed run never wedges the
// workflow.
func (s *LicenseService) poll(companyID int64, customerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pollTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("license poll panicked", "company_id", companyID, "panic", r)
		}
		resetCtx, resetCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer resetCancel()
		if err := s.companyRepo.ResetValidating(resetCtx, companyID); err != nil {
			logger.Error("failed to reset validating status", "company_id", companyID, "error", err)
		}
	}()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		verdict, err := s.authority.Authenticate(ctx, customerID)
		if err != nil {
			logger.Error("license authenticate failed, aborting poll", "company_id", companyID, "error", err)
			return
		}

		if !verdict.Waiting {
			s.finalize(ctx, companyID, verdict)
			return
		}

		logger.Debug("license still pending at authority", "company_id", companyID)

		select {
		case <-ctx.Done():
			logger.Warn("license poll timed out", "company_id", companyID)
			return
		case <-ticker.C:
		}
	}
}

func (s *LicenseService) finalize(ctx context.Context, companyID int64, verdict *licensing.Verdict) {
	switch verdict.Status {
	case model.AuthStatusApproved:
		if verdict.Grant == nil {
			logger.Error("approve verdict without grant", "company_id", companyID)
			return
		}
		if err := s.companyRepo.ApplyLicenseGrant(ctx, companyID, *verdict.Grant); err != nil {
			logger.Error("failed to apply license grant", "company_id", companyID, "error", err)
			return
		}
		logger.Info("license approved", "company_id", companyID)
	case model.AuthStatusExpired, model.AuthStatusBlocked:
		if err := s.companyRepo.SetAuthStatus(ctx, companyID, verdict.Status); err != nil {
			logger.Error("failed to store license verdict", "company_id", companyID, "status", string(verdict.Status), "error", err)
			return
		}
		logger.Info("license verdict stored", "company_id", companyID, "status", string(verdict.Status))
	default:
		logger.Error("unexpected license verdict", "company_id", companyID, "status", string(verdict.Status))
	}
}
