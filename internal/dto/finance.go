package dto

import "dispetcher/backend/internal/model"

// ── finance ──

// ClientPaymentRequest POST /finance/payments
type ClientPaymentRequest struct {
	ClientName string  `json:"client_name" binding:"required"`
	Amount     float64 `json:"amount"      binding:"required"`
}

// PaymentAllocation share of a payment applied to one order
type PaymentAllocation struct {
	OrderID         string  `json:"order_id"`
	Datetime        string  `json:"datetime"`
	Applied         float64 `json:"applied"`
	PaidAmount      float64 `json:"paid_amount"`
	TotalClientCost float64 `json:"total_client_cost"`
	PaymentStatus   string  `json:"payment_status"`
}

// SettlementResponse result of a FIFO payment distribution
type SettlementResponse struct {
	ClientName  string              `json:"client_name"`
	Amount      float64             `json:"amount"`
	Applied     float64             `json:"applied"`
	Leftover    float64             `json:"leftover"` // discarded, not credited
	Allocations []PaymentAllocation `json:"allocations"`
}

// WorkerFinanceEdit per-worker row of the finance editor
type WorkerFinanceEdit struct {
	Hours  *float64 `json:"hours"`
	Rate   *float64 `json:"rate"` // rederives payout = hours * rate
	Payout *float64 `json:"payout"`
}

// OrderFinanceRequest PUT /orders/:id/finance
type OrderFinanceRequest struct {
	Workers    map[string]WorkerFinanceEdit `json:"workers"`
	WorkerRate *float64                     `json:"worker_rate"`
	ClientRate *float64                     `json:"client_rate"`
	PaidAmount *float64                     `json:"paid_amount"`
}

// DebtorResponse one client with outstanding debt
type DebtorResponse struct {
	Client    string        `json:"client"`
	TotalDebt float64       `json:"total_debt"`
	Orders    []model.Order `json:"orders"`
}

// WorkerFinanceResponse worker balance buckets
type WorkerFinanceResponse struct {
	Today float64 `json:"today"`
	Month float64 `json:"month"`
	Total float64 `json:"total"`
}
