package model

// LogEntry activity feed record, stored newest first
type LogEntry struct {
	ID         string  `json:"id"`
	OrderID    *string `json:"order_id,omitempty"`
	EntityID   string  `json:"entity_id"`
	EntityName string  `json:"entity_name"`
	Action     string  `json:"action"`
	Timestamp  string  `json:"timestamp"`
	AppContext string  `json:"app_context"`
}
