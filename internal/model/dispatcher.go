package model

// Dispatcher operator who claims orders and assigns workers
type Dispatcher struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	Status               string  `json:"status"`
	GeoAllowed           bool    `json:"geo_allowed"`
	TotalMarginGenerated float64 `json:"total_margin_generated"`
	Role                 string  `json:"role,omitempty"`
	PasswordHash         string  `json:"password_hash,omitempty"`
}

// Public returns a copy without credentials.
func (d Dispatcher) Public() Dispatcher {
	d.PasswordHash = ""
	if d.Role == "" {
		d.Role = RoleDispatcher
	}
	return d
}

// SeedDispatchers is served when the dispatchers collection was never written.
func SeedDispatchers() []Dispatcher {
	return []Dispatcher{
		{ID: "d1", Name: "Алексей (Старший)", Phone: "+79001112233", Status: DispatcherStatusActive, GeoAllowed: true, TotalMarginGenerated: 150000, Role: RoleAdmin},
		{ID: "d3", Name: "Алексей2 (Старший)", Phone: "+79001112236", Status: DispatcherStatusActive, GeoAllowed: true, TotalMarginGenerated: 150000, Role: RoleDispatcher},
		{ID: "d4", Name: "Алексей4 (Старший)", Phone: "+79001112234", Status: DispatcherStatusActive, GeoAllowed: true, TotalMarginGenerated: 15000, Role: RoleDispatcher},
		{ID: "d2", Name: "Мария", Phone: "+79004445566", Status: DispatcherStatusActive, GeoAllowed: true, TotalMarginGenerated: 85000, Role: RoleDispatcher},
	}
}
