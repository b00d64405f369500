package handler

import (
	"github.com/gin-gonic/gin"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/pkg/response"
)

// MetaHandler publishes client polling and rate hints.
type MetaHandler struct {
	meta dto.MetaResponse
}

// NewMetaHandler creates a MetaHandler.
func NewMetaHandler(cfg *config.BusinessConfig) *MetaHandler {
	return &MetaHandler{meta: dto.MetaResponse{
		PollingInterval:   int(cfg.PollingInterval.Seconds()),
		DefaultWorkerRate: cfg.DefaultWorkerRate,
		DefaultClientRate: cfg.DefaultClientRate,
		MinClientRate:     cfg.MinClientRate,
		PlannedStart:      cfg.PlannedStart,
		PlannedEnd:        cfg.PlannedEnd,
	}}
}

// Get
// GET /api/v1/meta
func (h *MetaHandler) Get(c *gin.Context) {
	response.OK(c, h.meta)
}
