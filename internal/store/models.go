package store

import "time"

type Product struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"product_id"` // Externally stable catalog ID
	ProductName   string  `json:"product_name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Description   string  `json:"description"`
}

type User struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"` // Externally stable ID
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

type Conversation struct {
	ID             int64      `json:"id"`
	ConversationID string     `json:"conversation_id"` // UUID
	UserID         string     `json:"user_id"`
	Title          *string    `json:"title"` // Nullable
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"` // Nil until the first follow-up message
	IsActive       bool       `json:"is_active"`
}

type Message struct {
	ID             int64     `json:"id"`
	MessageID      string    `json:"message_id"` // UUID
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"` // "user" or "assistant"
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
