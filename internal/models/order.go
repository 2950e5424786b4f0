package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Status labels observed in the storefront. The set is open-ended:
// admins may push any non-empty label, these are just the known ones.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"
)

// KnownStatuses lists the labels the storefront UI understands.
var KnownStatuses = []string{StatusPending, StatusProcessing, StatusCompleted, StatusRejected}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID           string     `bun:"order_id,pk" json:"orderId"`
	UserEmail         string     `bun:"user_email" json:"userEmail"`
	GameID            string     `bun:"game_id" json:"gameId"`
	Username          string     `bun:"username" json:"username"`
	ServerID          string     `bun:"server_id" json:"serverId"`
	PackageName       string     `bun:"package_name" json:"packageName"`
	Price             float64    `bun:"price" json:"price"`
	PaymentMethod     string     `bun:"payment_method" json:"paymentMethod"`
	TransactionID     string     `bun:"transaction_id" json:"transactionId"`
	OrderNote         string     `bun:"order_note" json:"orderNote"`
	PaymentScreenshot string     `bun:"payment_screenshot" json:"paymentScreenshot"`
	Status            string     `bun:"status" json:"status"`
	Receiver          string     `bun:"receiver" json:"receiver"`
	CreatedAt         time.Time  `bun:"created_at" json:"createdAt"`
	UpdatedAt         *time.Time `bun:"updated_at" json:"updatedAt,omitempty"`
}

// OrderRequest is the customer-facing create payload. Business fields
// are accepted as-is; only presence matters to the intake path.
type OrderRequest struct {
	Email         string  `json:"email"`
	GameID        string  `json:"gameId"`
	Username      string  `json:"username"`
	ServerID      string  `json:"serverId"`
	PackageName   string  `json:"packageName"`
	Price         float64 `json:"price"`
	PaymentMethod string  `json:"paymentMethod"`
	TransactionID string  `json:"transactionId"`
	OrderNote     string  `json:"orderNote"`
}

// StatusEvent is the realtime payload pushed to room subscribers.
type StatusEvent struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
