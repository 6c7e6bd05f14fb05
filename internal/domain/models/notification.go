package models

import "time"

type Notification struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Type        string     `json:"type"`
	Channel     string     `json:"channel,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Read        bool       `json:"read"`
	Processed   bool       `json:"processed"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	// DeliveryResults maps channel name to outcome, persisted as JSON.
	DeliveryResults map[string]DeliveryResult `json:"deliveryResults,omitempty"`
}

type DeliveryResult struct {
	Success  bool   `json:"success"`
	Attempts int    `json:"attempts"`
	Details  string `json:"details,omitempty"`
}
