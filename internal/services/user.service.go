package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/transitops/ticket-backoffice/internal/model"
	"github.com/transitops/ticket-backoffice/internal/repository"
	"github.com/transitops/ticket-backoffice/pkg/logger"
)

var (
	ErrUsernameTaken = errors.New("username already in use")
	ErrUserNotFound  = errors.New("user not found")
)

type UserRepositoryFull interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, companyID *int64, limit, offset int) ([]*model.User, int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type UserService struct {
	userRepo UserRepositoryFull
}

func NewUserService(userRepo UserRepositoryFull) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CompanyID:    req.CompanyID,
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logger.Info("user created", "user_id", created.ID, "username", created.Username, "role", string(created.Role))

	return created, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, companyID *int64, limit, offset int) ([]*model.User, int64, error) {
	return s.userRepo.List(ctx, companyID, limit, offset)
}

func (s *UserService) SetActive(ctx context.Context, id int64, active bool) error {
	err := s.userRepo.SetActive(ctx, id, active)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
