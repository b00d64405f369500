package dto

// ActionResponse outcome of an operation that may be skipped
type ActionResponse struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// ShiftFinishResponse outcome of finishing a shift
type ShiftFinishResponse struct {
	ActionResponse
	Hours              float64 `json:"hours"`
	Payout             float64 `json:"payout"`
	CalculatedDuration string  `json:"calculated_duration,omitempty"`
}

// MetaResponse client polling hints
type MetaResponse struct {
	PollingInterval   int     `json:"polling_interval"` // seconds
	DefaultWorkerRate float64 `json:"default_worker_rate"`
	DefaultClientRate float64 `json:"default_client_rate"`
	MinClientRate     float64 `json:"min_client_rate"`
	PlannedStart      string  `json:"planned_start"`
	PlannedEnd        string  `json:"planned_end"`
}

// DateRange inclusive YYYY-MM-DD bounds
type DateRange struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to"   binding:"required"`
}
