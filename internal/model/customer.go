package model

// Customer client billed for orders; Name is unique
type Customer struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email,omitempty"`
	CreatedAt string  `json:"created_at"`
}
