package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// EmployeeService worker records, reviews, location and SOS
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*model.Employee, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	// AddReview prepends the review and recomputes the mean rating.
	AddReview(ctx context.Context, id string, req *dto.AddReviewRequest) (*model.Employee, error)
	UpdateLocation(ctx context.Context, id string, lat, lng float64) (*model.Employee, error)
	BufferLocation(ctx context.Context, id string, lat, lng float64) error
	// SyncOfflineLocations applies the newest buffered fix and empties the buffer.
	SyncOfflineLocations(ctx context.Context) (*dto.SyncLocationsResponse, error)
	TriggerEmergency(ctx context.Context, id string, req *dto.EmergencyRequest) (*model.Employee, error)
	ResolveEmergency(ctx context.Context, id string) (*model.Employee, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewEmployeeService creates an EmployeeService.
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger, now Clock) EmployeeService {
	return &employeeService{repo: repo, logger: logger, now: now}
}

// ────────────────────── Create ──────────────────────

// Create stores a new worker. An existing ID is not overwritten; the stored
// record is returned instead.
func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*model.Employee, error) {
	emp := &model.Employee{
		ID:             req.ID,
		FullName:       orDefault(req.FullName, "?"),
		Phone:          orDefault(req.Phone, "?"),
		Email:          req.Email,
		Messengers:     req.Messengers,
		IsSelfEmployed: req.IsSelfEmployed,
		Rating:         5,
		Status:         model.EmployeeStatusNew,
		AvatarColor:    strPtr(fmt.Sprintf("#%06x", rand.Intn(0x1000000))),
		Reviews:        []model.Review{},
	}
	if emp.ID == "" {
		emp.ID = "w_" + newID()[:5]
	}
	if emp.Messengers == nil {
		emp.Messengers = []string{}
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		emp.PasswordHash = string(hash)
	}

	created, err := s.repo.Employee.Create(ctx, emp)
	if err != nil {
		s.logger.Error("failed to create employee", zap.Error(err))
		return nil, err
	}
	if !created {
		return s.GetByID(ctx, emp.ID)
	}
	out := emp.Public()
	return &out, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest) (*model.Employee, error) {
	var hash string
	if req.Password != nil {
		b, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash = string(b)
	}

	return s.update(ctx, id, func(e *model.Employee) {
		if req.FullName != nil {
			e.FullName = *req.FullName
		}
		if req.Phone != nil {
			e.Phone = *req.Phone
		}
		if req.Email != nil {
			e.Email = req.Email
		}
		if req.Messengers != nil {
			e.Messengers = req.Messengers
		}
		if req.IsSelfEmployed != nil {
			e.IsSelfEmployed = *req.IsSelfEmployed
		}
		if req.Status != nil {
			e.Status = *req.Status
		}
		if req.BalancePaid != nil {
			e.BalancePaid = *req.BalancePaid
		}
		if req.AvatarColor != nil {
			e.AvatarColor = req.AvatarColor
		}
		if req.IsOnline != nil {
			e.IsOnline = *req.IsOnline
		}
		if hash != "" {
			e.PasswordHash = hash
		}
	})
}

// ────────────────────── List / GetByID ──────────────────────

func (s *employeeService) List(ctx context.Context) ([]model.Employee, error) {
	emps, err := s.repo.Employee.List(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", zap.Error(err))
		return nil, err
	}
	for i := range emps {
		emps[i] = emps[i].Public()
	}
	return emps, nil
}

func (s *employeeService) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	emp, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("failed to load employee", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	out := emp.Public()
	return &out, nil
}

// ────────────────────── AddReview ──────────────────────

func (s *employeeService) AddReview(ctx context.Context, id string, req *dto.AddReviewRequest) (*model.Employee, error) {
	var out *model.Employee
	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		emp, err := tx.Employee.Update(ctx, id, func(e *model.Employee) error {
			review := model.Review{
				ID:         newID(),
				AuthorName: req.AuthorName,
				Rating:     req.Rating,
				Comment:    req.Comment,
				Timestamp:  model.FormatTime(s.now()),
			}
			e.Reviews = append([]model.Review{review}, e.Reviews...)
			e.Rating = e.MeanRating()
			return nil
		})
		if err != nil {
			return err
		}
		out = emp
		_, err = appendLog(ctx, tx, s.now, id, "Admin",
			fmt.Sprintf("left a review for the employee: %d stars", req.Rating), model.ContextAdmin, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("failed to add review", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	pub := out.Public()
	return &pub, nil
}

// ────────────────────── Location ──────────────────────

func (s *employeeService) UpdateLocation(ctx context.Context, id string, lat, lng float64) (*model.Employee, error) {
	return s.update(ctx, id, func(e *model.Employee) {
		e.Lat = &lat
		e.Lng = &lng
		e.LastLocationUpdate = strPtr(model.FormatTime(s.now()))
	})
}

func (s *employeeService) BufferLocation(ctx context.Context, id string, lat, lng float64) error {
	loc := &model.OfflineLocation{WorkerID: id, Lat: lat, Lng: lng, Timestamp: model.FormatTime(s.now())}
	if err := s.repo.OfflineLocation.Append(ctx, loc); err != nil {
		s.logger.Error("failed to buffer location", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *employeeService) SyncOfflineLocations(ctx context.Context) (*dto.SyncLocationsResponse, error) {
	out := &dto.SyncLocationsResponse{}
	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		locs, err := tx.OfflineLocation.List(ctx)
		if err != nil || len(locs) == 0 {
			return err
		}
		last := locs[len(locs)-1]
		_, err = tx.Employee.Update(ctx, last.WorkerID, func(e *model.Employee) error {
			e.Lat = &last.Lat
			e.Lng = &last.Lng
			e.LastLocationUpdate = strPtr(model.FormatTime(s.now()))
			return nil
		})
		if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
			return err
		}
		out.Synced = len(locs)
		out.WorkerID = last.WorkerID
		return tx.OfflineLocation.Clear(ctx)
	})
	if err != nil {
		s.logger.Error("failed to sync offline locations", zap.Error(err))
		return nil, err
	}
	return out, nil
}

// ────────────────────── Emergency ──────────────────────

func (s *employeeService) TriggerEmergency(ctx context.Context, id string, req *dto.EmergencyRequest) (*model.Employee, error) {
	return s.emergency(ctx, id, &model.EmergencyStatus{
		Active:    true,
		Timestamp: model.FormatTime(s.now()),
		Lat:       req.Lat,
		Lng:       req.Lng,
	}, "System", "SOS! Emergency button pressed", model.ContextWorker)
}

func (s *employeeService) ResolveEmergency(ctx context.Context, id string) (*model.Employee, error) {
	return s.emergency(ctx, id, &model.EmergencyStatus{Active: false, Timestamp: ""},
		"Dispatcher", "Emergency resolved", model.ContextDispatcher)
}

func (s *employeeService) emergency(ctx context.Context, id string, status *model.EmergencyStatus, author, action, appContext string) (*model.Employee, error) {
	var out *model.Employee
	err := s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		emp, err := tx.Employee.Update(ctx, id, func(e *model.Employee) error {
			e.EmergencyStatus = status
			return nil
		})
		if err != nil {
			return err
		}
		out = emp
		_, err = appendLog(ctx, tx, s.now, id, author, action, appContext, nil)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("failed to update emergency status", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if status.Active {
		s.logger.Warn("emergency raised", zap.String("worker_id", id))
	}
	pub := out.Public()
	return &pub, nil
}

func (s *employeeService) update(ctx context.Context, id string, fn func(*model.Employee)) (*model.Employee, error) {
	emp, err := s.repo.Employee.Update(ctx, id, func(e *model.Employee) error {
		fn(e)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("failed to update employee", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	out := emp.Public()
	return &out, nil
}
