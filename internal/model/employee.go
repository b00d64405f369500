package model

// Review is feedback left on an employee.
type Review struct {
	ID         string `json:"id"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	Timestamp  string `json:"timestamp"`
}

// EmergencyStatus is the SOS state raised from the worker app.
type EmergencyStatus struct {
	Active    bool     `json:"active"`
	Timestamp string   `json:"timestamp"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// Employee is a worker that can be assigned to orders.
type Employee struct {
	ID                 string           `json:"id"`
	FullName           string           `json:"full_name"`
	Phone              string           `json:"phone"`
	Email              *string          `json:"email,omitempty"`
	Messengers         []string         `json:"messengers"`
	IsSelfEmployed     bool             `json:"is_self_employed"`
	TotalHours         float64          `json:"total_hours"`
	Rating             float64          `json:"rating"`
	Status             string           `json:"status"`
	BalancePaid        float64          `json:"balance_paid"`
	BalanceOwed        float64          `json:"balance_owed"`
	BalanceToday       float64          `json:"balance_today"`
	BalanceMonth       float64          `json:"balance_month"`
	AvatarColor        *string          `json:"avatar_color,omitempty"`
	IsOnline           bool             `json:"is_online"`
	IsAtSite           bool             `json:"is_at_site"`
	Lat                *float64         `json:"lat,omitempty"`
	Lng                *float64         `json:"lng,omitempty"`
	LastLocationUpdate *string          `json:"last_location_update,omitempty"`
	Reviews            []Review         `json:"reviews"`
	EmergencyStatus    *EmergencyStatus `json:"emergency_status,omitempty"`
	PasswordHash       string           `json:"password_hash,omitempty"`
}

// Public returns a copy without credentials.
func (e Employee) Public() Employee {
	e.PasswordHash = ""
	return e
}

// MeanRating is the average of all review ratings; 5 when there are none.
func (e *Employee) MeanRating() float64 {
	if len(e.Reviews) == 0 {
		return 5
	}
	sum := 0
	for _, r := range e.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(e.Reviews))
}

// OfflineLocation is a GPS fix buffered while the worker app was offline.
type OfflineLocation struct {
	WorkerID  string  `json:"worker_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp string  `json:"timestamp"`
}
