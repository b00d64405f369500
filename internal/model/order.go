package model

// ServiceItem is one billable line of an order.
type ServiceItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	PriceWorker float64 `json:"price_worker"`
	PriceClient float64 `json:"price_client"`
}

// Assignment is one worker's state on one order.
type Assignment struct {
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Hours              float64 `json:"hours"`
	Payout             float64 `json:"payout"`
	ActualStart        *string `json:"actual_start,omitempty"`
	ActualEnd          *string `json:"actual_end,omitempty"`
	CalculatedDuration *string `json:"calculated_duration,omitempty"`
	ArrivalTime        *string `json:"arrival_time,omitempty"`
	IsConfirmed        bool    `json:"is_confirmed"`
}

// Order is a labor request at a client site.
type Order struct {
	ID                    string                 `json:"id"`
	ClientName            string                 `json:"client_name"`
	Address               string                 `json:"address"`
	Datetime              string                 `json:"datetime"`
	RequiredWorkers       int                    `json:"required_workers"`
	ConfirmedWorkersCount int                    `json:"confirmed_workers_count"`
	Description           *string                `json:"description,omitempty"`
	Status                string                 `json:"status"`
	AssignedEmployeeIDs   []string               `json:"assigned_employee_ids"`
	OrderServices         []ServiceItem          `json:"order_services"`
	AssignmentsDetail     map[string]*Assignment `json:"assignments_detail"`
	PaidAmount            float64                `json:"paid_amount"`
	TotalClientCost       float64                `json:"total_client_cost"`
	Lat                   *float64               `json:"lat,omitempty"`
	Lng                   *float64               `json:"lng,omitempty"`
	Radius                *float64               `json:"radius,omitempty"`
	PaymentStatus         string                 `json:"payment_status"`
	ClaimedBy             *string                `json:"claimed_by"`
	GeoRequired           bool                   `json:"geo_required"`
	PaymentType           string                 `json:"payment_type"`
	CreatedAt             *string                `json:"created_at,omitempty"`
}

// HasWorker reports whether workerID is in the assigned list.
func (o *Order) HasWorker(workerID string) bool {
	for _, id := range o.AssignedEmployeeIDs {
		if id == workerID {
			return true
		}
	}
	return false
}

// RecountConfirmed derives confirmed_workers_count from the details.
func (o *Order) RecountConfirmed() {
	n := 0
	for _, d := range o.AssignmentsDetail {
		if d != nil && d.IsConfirmed {
			n++
		}
	}
	o.ConfirmedWorkersCount = n
}

// WorkerRate is the first service line's worker rate, or fallback when unset.
func (o *Order) WorkerRate(fallback float64) float64 {
	if len(o.OrderServices) > 0 && o.OrderServices[0].PriceWorker != 0 {
		return o.OrderServices[0].PriceWorker
	}
	return fallback
}

// ClientRate is the first service line's client rate, or fallback when unset.
func (o *Order) ClientRate(fallback float64) float64 {
	if len(o.OrderServices) > 0 && o.OrderServices[0].PriceClient != 0 {
		return o.OrderServices[0].PriceClient
	}
	return fallback
}

// Normalize fills the fields older records may have left null.
func (o *Order) Normalize() {
	if o.AssignedEmployeeIDs == nil {
		o.AssignedEmployeeIDs = []string{}
	}
	if o.AssignmentsDetail == nil {
		o.AssignmentsDetail = map[string]*Assignment{}
	}
	if o.OrderServices == nil {
		o.OrderServices = []ServiceItem{}
	}
	if o.Datetime == "" && o.CreatedAt != nil {
		o.Datetime = *o.CreatedAt
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentStatusUnpaid
	}
}
