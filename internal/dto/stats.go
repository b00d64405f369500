package dto

// ── stats ──

// SystemStatsResponse dashboard counters
type SystemStatsResponse struct {
	WorkersAtSiteCount int     `json:"workers_at_site_count"`
	OnlineFreeWorkers  int     `json:"online_free_workers"`
	OnlineDispatchers  int     `json:"online_dispatchers"`
	TotalClientDebt    float64 `json:"total_client_debt"`
}

// PeriodFinanceResponse income/expense over a date range
type PeriodFinanceResponse struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
	Count   int     `json:"count"`
	Hours   float64 `json:"hours"`
}

// DispatcherStat margin generated by one dispatcher in the period
type DispatcherStat struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PeriodRevenue float64 `json:"period_revenue"`
}

// EmployeeStat earnings of one employee in the period
type EmployeeStat struct {
	ID             string  `json:"id"`
	FullName       string  `json:"full_name"`
	PeriodEarnings float64 `json:"period_earnings"`
}

// ClientStat amount invoiced to one client in the period
type ClientStat struct {
	Name           string  `json:"name"`
	PeriodInvoiced float64 `json:"period_invoiced"`
	ActiveCount    int     `json:"active_count"`
}

// AdminStatsResponse admin dashboard buckets
type AdminStatsResponse struct {
	Dispatchers  []DispatcherStat `json:"dispatchers"`
	Employees    []EmployeeStat   `json:"employees"`
	Clients      []ClientStat     `json:"clients"`
	TotalRevenue float64          `json:"total_revenue"`
}

// PayrollRequest GET /reports/payroll; no employee_ids means every employee
type PayrollRequest struct {
	DateRange
	EmployeeIDs []string `form:"employee_ids"`
}

// PayrollShift one worked assignment
type PayrollShift struct {
	OrderID string  `json:"order_id"`
	Date    string  `json:"date"`
	Client  string  `json:"client"`
	Hours   float64 `json:"hours"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Payout  float64 `json:"payout"`
}

// EmployeePayroll shifts and total for one employee
type EmployeePayroll struct {
	EmployeeID  string         `json:"employee_id"`
	FullName    string         `json:"full_name"`
	Shifts      []PayrollShift `json:"shifts"`
	TotalPayout float64        `json:"total_payout"`
}

// PayrollReportResponse payroll for the selected employees
type PayrollReportResponse struct {
	From      string            `json:"from"`
	To        string            `json:"to"`
	Employees []EmployeePayroll `json:"employees"`
}
