package service

import (
	"time"

	"go.uber.org/zap"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/pkg/jwt"
	"dispetcher/backend/pkg/notify"
)

// Service groups every service for the handlers.
type Service struct {
	Auth       AuthService
	Order      OrderService
	Assignment AssignmentService
	Shift      ShiftService
	Finance    FinanceService
	Stats      StatsService
	Report     ReportService
	Calendar   CalendarService
	Employee   EmployeeService
	Dispatcher DispatcherService
	Customer   CustomerService
	Activity   ActivityService
	Chat       ChatService
}

// NewService wires the services against the wall clock.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	notifier notify.Notifier,
	logger *zap.Logger,
) *Service {
	return newService(cfg, repo, jwtMgr, blacklist, notifier, logger, time.Now)
}

func newService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	notifier notify.Notifier,
	logger *zap.Logger,
	now Clock,
) *Service {
	biz := &cfg.Business
	stats := NewStatsService(biz, repo, logger)
	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, logger),
		Order:      NewOrderService(biz, repo, logger, now),
		Assignment: NewAssignmentService(biz, repo, notifier, logger, now),
		Shift:      NewShiftService(biz, repo, logger, now),
		Finance:    NewFinanceService(biz, repo, logger),
		Stats:      stats,
		Report:     NewReportService(stats, logger),
		Calendar:   NewCalendarService(biz, repo, logger, now),
		Employee:   NewEmployeeService(repo, logger, now),
		Dispatcher: NewDispatcherService(repo, logger),
		Customer:   NewCustomerService(repo, logger, now),
		Activity:   NewActivityService(repo, logger, now),
		Chat:       NewChatService(repo, logger, now),
	}
}
