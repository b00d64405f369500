package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

var ErrCustomerNotFound = errors.New("customer not found")

// CustomerService client directory
type CustomerService interface {
	// Create stores the customer unless the name is taken; created reports which.
	Create(ctx context.Context, req *dto.CreateCustomerRequest) (c *model.Customer, created bool, err error)
	Update(ctx context.Context, id string, req *dto.UpdateCustomerRequest) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
}

type customerService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewCustomerService creates a CustomerService.
func NewCustomerService(repo *repository.Repository, logger *zap.Logger, now Clock) CustomerService {
	return &customerService{repo: repo, logger: logger, now: now}
}

func (s *customerService) Create(ctx context.Context, req *dto.CreateCustomerRequest) (*model.Customer, bool, error) {
	c := &model.Customer{
		ID:        req.ID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		CreatedAt: model.FormatTime(s.now()),
	}
	if c.ID == "" {
		c.ID = "c_" + newID()
	}
	created, err := s.repo.Customer.Create(ctx, c)
	if err != nil {
		s.logger.Error("failed to create customer", zap.Error(err))
		return nil, false, err
	}
	return c, created, nil
}

func (s *customerService) Update(ctx context.Context, id string, req *dto.UpdateCustomerRequest) (*model.Customer, error) {
	c, err := s.repo.Customer.Update(ctx, id, func(c *model.Customer) error {
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Phone != nil {
			c.Phone = *req.Phone
		}
		if req.Email != nil {
			c.Email = req.Email
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		s.logger.Error("failed to update customer", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context) ([]model.Customer, error) {
	list, err := s.repo.Customer.List(ctx)
	if err != nil {
		s.logger.Error("failed to list customers", zap.Error(err))
		return nil, err
	}
	return list, nil
}
