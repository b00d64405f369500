package dto

import "dispetcher/backend/internal/model"

// ── orders ──

// CreateOrderRequest new order; omitted fields take defaults
type CreateOrderRequest struct {
	ClientName      string              `json:"client_name"`
	Address         string              `json:"address"`
	Datetime        string              `json:"datetime"`
	RequiredWorkers int                 `json:"required_workers" binding:"omitempty,min=1"`
	Description     *string             `json:"description"`
	OrderServices   []model.ServiceItem `json:"order_services"`
	Lat             *float64            `json:"lat"`
	Lng             *float64            `json:"lng"`
	Radius          *float64            `json:"radius"`
	GeoRequired     bool                `json:"geo_required"`
	PaymentType     string              `json:"payment_type" binding:"omitempty,oneof=cash non-cash"`
}

// SetGeoRequest PUT /orders/:id/geo
type SetGeoRequest struct {
	Required *bool `json:"required" binding:"required"`
}

// SetOrderStatusRequest PUT /orders/:id/status
type SetOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active completed cancelled"`
}

// ClaimOrderRequest POST /orders/:id/claim; defaults to the caller
type ClaimOrderRequest struct {
	DispatcherID string `json:"dispatcher_id"`
}

// AssignmentPatch partial assignment update; nil fields are left alone
type AssignmentPatch struct {
	StartTime          *string  `json:"start_time"`
	EndTime            *string  `json:"end_time"`
	Hours              *float64 `json:"hours"`
	Payout             *float64 `json:"payout"`
	ActualStart        *string  `json:"actual_start"`
	ActualEnd          *string  `json:"actual_end"`
	CalculatedDuration *string  `json:"calculated_duration"`
	ArrivalTime        *string  `json:"arrival_time"`
	IsConfirmed        *bool    `json:"is_confirmed"`
}
