package model

// MessageMetadata optional context attached to a chat message
type MessageMetadata struct {
	OrderID *string `json:"order_id,omitempty"`
	Type    *string `json:"type,omitempty"`
}

// ChatMessage dispatcher/worker chat message
type ChatMessage struct {
	ID          string           `json:"id"`
	SenderID    string           `json:"sender_id"`
	RecipientID string           `json:"recipient_id"`
	Text        string           `json:"text"`
	Timestamp   string           `json:"timestamp"`
	IsRead      bool             `json:"is_read"`
	Status      string           `json:"status"`
	Metadata    *MessageMetadata `json:"metadata,omitempty"`
}
