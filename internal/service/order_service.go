package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
)

// OrderService order lifecycle outside of assignment
type OrderService interface {
	Create(ctx context.Context, req *dto.CreateOrderRequest) (*model.Order, error)
	// List returns every order, newest datetime first.
	List(ctx context.Context) ([]model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	SetGeoRequired(ctx context.Context, id string, required bool) (*model.Order, error)
	SetStatus(ctx context.Context, id, status string) (*model.Order, error)
}

type orderService struct {
	cfg    *config.BusinessConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    Clock
}

// NewOrderService creates an OrderService.
func NewOrderService(cfg *config.BusinessConfig, repo *repository.Repository, logger *zap.Logger, now Clock) OrderService {
	return &orderService{cfg: cfg, repo: repo, logger: logger, now: now}
}

// ────────────────────── Create ──────────────────────

func (s *orderService) Create(ctx context.Context, req *dto.CreateOrderRequest) (*model.Order, error) {
	now := model.FormatTime(s.now())

	order := &model.Order{
		ID:                  newID(),
		ClientName:          orDefault(req.ClientName, "?"),
		Address:             orDefault(req.Address, "?"),
		Datetime:            orDefault(req.Datetime, now),
		RequiredWorkers:     req.RequiredWorkers,
		Description:         req.Description,
		Status:              model.OrderStatusActive,
		AssignedEmployeeIDs: []string{},
		OrderServices:       req.OrderServices,
		AssignmentsDetail:   map[string]*model.Assignment{},
		Lat:                 req.Lat,
		Lng:                 req.Lng,
		Radius:              req.Radius,
		PaymentStatus:       model.PaymentStatusUnpaid,
		GeoRequired:         req.GeoRequired,
		PaymentType:         orDefault(req.PaymentType, model.PaymentTypeNonCash),
		CreatedAt:           &now,
	}
	if order.RequiredWorkers <= 0 {
		order.RequiredWorkers = 1
	}
	if len(order.OrderServices) == 0 {
		order.OrderServices = []model.ServiceItem{{
			ID:          "s1",
			Name:        "General labor",
			Quantity:    1,
			PriceWorker: s.cfg.DefaultWorkerRate,
			PriceClient: s.cfg.DefaultClientRate,
		}}
	}

	if err := s.repo.Order.Create(ctx, order); err != nil {
		s.logger.Error("failed to create order", zap.Error(err))
		return nil, err
	}
	return order, nil
}

// ────────────────────── List ──────────────────────

func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	orders, err := s.repo.Order.List(ctx)
	if err != nil {
		s.logger.Error("failed to list orders", zap.Error(err))
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].Datetime > orders[j].Datetime
	})
	return orders, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *orderService) GetByID(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.repo.Order.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("failed to load order", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

// ────────────────────── SetGeoRequired / SetStatus ──────────────────────

func (s *orderService) SetGeoRequired(ctx context.Context, id string, required bool) (*model.Order, error) {
	return s.update(ctx, id, func(o *model.Order) { o.GeoRequired = required })
}

func (s *orderService) SetStatus(ctx context.Context, id, status string) (*model.Order, error) {
	return s.update(ctx, id, func(o *model.Order) { o.Status = status })
}

func (s *orderService) update(ctx context.Context, id string, fn func(*model.Order)) (*model.Order, error) {
	order, err := s.repo.Order.Update(ctx, id, func(o *model.Order) error {
		fn(o)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		s.logger.Error("failed to update order", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return order, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
