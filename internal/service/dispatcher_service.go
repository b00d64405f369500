package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

var ErrDispatcherNotFound = errors.New("dispatcher not found")

// DispatcherService dispatcher roster
type DispatcherService interface {
	List(ctx context.Context) ([]model.Dispatcher, error)
	Update(ctx context.Context, id string, req *dto.UpdateDispatcherRequest) (*model.Dispatcher, error)
	ToggleGeoAccess(ctx context.Context, id string) (*model.Dispatcher, error)
	SetStatus(ctx context.Context, id, status string) (*model.Dispatcher, error)
}

type dispatcherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDispatcherService creates a DispatcherService.
func NewDispatcherService(repo *repository.Repository, logger *zap.Logger) DispatcherService {
	return &dispatcherService{repo: repo, logger: logger}
}

func (s *dispatcherService) List(ctx context.Context) ([]model.Dispatcher, error) {
	disps, err := s.repo.Dispatcher.List(ctx)
	if err != nil {
		s.logger.Error("failed to list dispatchers", zap.Error(err))
		return nil, err
	}
	for i := range disps {
		disps[i] = disps[i].Public()
	}
	return disps, nil
}

func (s *dispatcherService) Update(ctx context.Context, id string, req *dto.UpdateDispatcherRequest) (*model.Dispatcher, error) {
	var hash string
	if req.Password != nil {
		b, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}
	return s.update(ctx, id, func(d *model.Dispatcher) {
		if req.Name != nil {
			d.Name = *req.Name
		}
		if req.Phone != nil {
			d.Phone = *req.Phone
		}
		if req.Status != nil {
			d.Status = *req.Status
		}
		if req.Role != nil {
			d.Role = *req.Role
		}
		if hash != "" {
			d.PasswordHash = hash
		}
	})
}

func (s *dispatcherService) ToggleGeoAccess(ctx context.Context, id string) (*model.Dispatcher, error) {
	return s.update(ctx, id, func(d *model.Dispatcher) { d.GeoAllowed = !d.GeoAllowed })
}

func (s *dispatcherService) SetStatus(ctx context.Context, id, status string) (*model.Dispatcher, error) {
	return s.update(ctx, id, func(d *model.Dispatcher) { d.Status = status })
}

func (s *dispatcherService) update(ctx context.Context, id string, fn func(*model.Dispatcher)) (*model.Dispatcher, error) {
	d, err := s.repo.Dispatcher.Update(ctx, id, func(d *model.Dispatcher) error {
		fn(d)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrDispatcherNotFound
		}
		s.logger.Error("failed to update dispatcher", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	out := d.Public()
	return &out, nil
}

// ────────────────────── Bootstrap ──────────────────────

// BootstrapPasswords hashes password into every dispatcher that has none yet,
// so seeded accounts can log in. It returns how many were updated.
func BootstrapPasswords(ctx context.Context, repo *repository.Repository, password string, logger *zap.Logger) (int, error) {
	if password == "" {
		return 0, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	updated := 0
	err = repo.Atomic(ctx, func(tx *repository.Repository) error {
		disps, err := tx.Dispatcher.List(ctx)
		if err != nil {
			return err
		}
		for i := range disps {
			if disps[i].PasswordHash == "" {
				disps[i].PasswordHash = string(hash)
				updated++
			}
		}
		if updated == 0 {
			return nil
		}
		return tx.Dispatcher.SaveAll(ctx, disps)
	})
	if err != nil {
		logger.Error("failed to bootstrap dispatcher passwords", zap.Error(err))
		return 0, err
	}
	if updated > 0 {
		logger.Info("bootstrapped dispatcher passwords", zap.Int("count", updated))
	}
	return updated, nil
}
