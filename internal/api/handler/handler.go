package handler

import (
	"dispetcher/backend/config"
	"dispetcher/backend/internal/service"
	"dispetcher/backend/pkg/jwt"
	"dispetcher/backend/pkg/notify"
)

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth       *AuthHandler
	Meta       *MetaHandler
	Order      *OrderHandler
	Finance    *FinanceHandler
	Stats      *StatsHandler
	Export     *ExportHandler
	Employee   *EmployeeHandler
	Dispatcher *DispatcherHandler
	Customer   *CustomerHandler
	Activity   *ActivityHandler
	Chat       *ChatHandler
	Stream     *StreamHandler
}

// NewHandler wires handlers to their services.
func NewHandler(cfg *config.Config, svc *service.Service, jwtMgr *jwt.Manager, hub *notify.Hub) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Meta:       NewMetaHandler(&cfg.Business),
		Order:      NewOrderHandler(svc.Order, svc.Assignment, svc.Shift, svc.Finance),
		Finance:    NewFinanceHandler(svc.Finance),
		Stats:      NewStatsHandler(svc.Stats),
		Export:     NewExportHandler(svc.Report, svc.Calendar),
		Employee:   NewEmployeeHandler(svc.Employee),
		Dispatcher: NewDispatcherHandler(svc.Dispatcher),
		Customer:   NewCustomerHandler(svc.Customer),
		Activity:   NewActivityHandler(svc.Activity),
		Chat:       NewChatHandler(svc.Chat),
		Stream:     NewStreamHandler(jwtMgr, hub, cfg.Server.CORS.AllowOrigins),
	}
}
