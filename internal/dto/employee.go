package dto

// ── employees ──

// CreateEmployeeRequest POST /employees
type CreateEmployeeRequest struct {
	ID             string   `json:"id"`
	FullName       string   `json:"full_name"`
	Phone          string   `json:"phone"`
	Email          *string  `json:"email"`
	Messengers     []string `json:"messengers"`
	IsSelfEmployed bool     `json:"is_self_employed"`
	Password       string   `json:"password" binding:"omitempty,min=6,max=64"`
}

// UpdateEmployeeRequest PATCH /employees/:id
type UpdateEmployeeRequest struct {
	FullName       *string  `json:"full_name"`
	Phone          *string  `json:"phone"`
	Email          *string  `json:"email"`
	Messengers     []string `json:"messengers"`
	IsSelfEmployed *bool    `json:"is_self_employed"`
	Status         *string  `json:"status" binding:"omitempty,oneof=new experienced"`
	BalancePaid    *float64 `json:"balance_paid"`
	AvatarColor    *string  `json:"avatar_color"`
	IsOnline       *bool    `json:"is_online"`
	Password       *string  `json:"password" binding:"omitempty,min=6,max=64"`
}

// AddReviewRequest POST /employees/:id/reviews
type AddReviewRequest struct {
	AuthorName string `json:"author_name" binding:"required"`
	Rating     int    `json:"rating"      binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

// LocationRequest GPS fix
type LocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// EmergencyRequest optional coordinates of an SOS
type EmergencyRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// SyncLocationsResponse result of flushing the offline GPS buffer
type SyncLocationsResponse struct {
	Synced   int    `json:"synced"`
	WorkerID string `json:"worker_id,omitempty"`
}

// ── dispatchers ──

// UpdateDispatcherRequest PATCH /dispatchers/:id
type UpdateDispatcherRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Status   *string `json:"status" binding:"omitempty,oneof=active break offline"`
	Role     *string `json:"role"   binding:"omitempty,oneof=dispatcher admin"`
	Password *string `json:"password" binding:"omitempty,min=6,max=64"`
}

// SetDispatcherStatusRequest PUT /dispatchers/:id/status
type SetDispatcherStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active break offline"`
}

// ── customers ──

// CreateCustomerRequest POST /customers
type CreateCustomerRequest struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"  binding:"required"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
}

// UpdateCustomerRequest PATCH /customers/:id
type UpdateCustomerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// ── chat ──

// SendMessageRequest POST /chats
type SendMessageRequest struct {
	SenderID    string  `json:"sender_id"`
	RecipientID string  `json:"recipient_id" binding:"required"`
	Text        string  `json:"text"         binding:"required"`
	OrderID     *string `json:"order_id"`
	Type        *string `json:"type"`
}

// ChatListRequest GET /chats
type ChatListRequest struct {
	WorkerID string `form:"worker_id"`
}

// MarkReadRequest PUT /chats/read; a worker caller always marks its own conversation
type MarkReadRequest struct {
	WorkerID     string `json:"worker_id"`
	DispatcherID string `json:"dispatcher_id" binding:"required"`
}
