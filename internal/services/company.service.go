package services

import (
	"context"
	"errors"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrCompanyCodeTaken = errors.New("company code already in use")
)

type CompanyRepositoryFull interface {
	Create(ctx context.Context, company *model.Company) (*model.Company, error)
	GetByID(ctx context.Context, id int64) (*model.Company, error)
	GetByCode(ctx context.Context, code string) (*model.Company, error)
	List(ctx context.Context, limit, offset int) ([]*model.Company, int64, error)
	UpdateProfile(ctx context.Context, company *model.Company) error
}

type CompanyService struct {
	companyRepo CompanyRepositoryFull
}

func NewCompanyService(companyRepo CompanyRepositoryFull) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

// Create onboards a tenant. Licensing starts at Pending; the validation
// workflow is the only path to Approve.
func (s *CompanyService) Create(ctx context.Context, req model.CompanyCreateRequest) (*model.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	company := &model.Company{
		CompanyCode:          req.CompanyCode,
		Name:                 req.Name,
		Email:                req.Email,
		GSTNumber:            req.GSTNumber,
		ContactPerson:        req.ContactPerson,
		ContactNumber:        req.ContactNumber,
		Address:              req.Address,
		Address2:             req.Address2,
		City:                 req.City,
		State:                req.State,
		ZipCode:              req.ZipCode,
		AuthenticationStatus: model.AuthStatusPending,
	}

	created, err := s.companyRepo.Create(ctx, company)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyCodeTaken) {
			return nil, ErrCompanyCodeTaken
		}
		return nil, err
	}

	logger.Info("company onboarded", "company_id", created.ID, "company_code", created.CompanyCode)

	return created, nil
}

func (s *CompanyService) Get(ctx context.Context, id int64) (*model.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context, limit, offset int) ([]*model.Company, int64, error) {
	return s.companyRepo.List(ctx, limit, offset)
}

// UpdateProfile changes contact and address fields only. License fields
// are owned by the validation workflow and cannot be edited here.
func (s *CompanyService) UpdateProfile(ctx context.Context, company *model.Company) (*model.Company, error) {
	if err := s.companyRepo.UpdateProfile(ctx, company); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return s.companyRepo.GetByID(ctx, company.ID)
}
