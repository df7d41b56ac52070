package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRecipientName is used when an owner record carries no name.
const DefaultRecipientName = "User"

// RecipientBatch is every expiring item of one recipient, in store order.
type RecipientBatch struct {
	Email   string
	Name    string
	Items   []string
	ItemIDs []primitive.ObjectID
}

// Outcome records the result of one recipient's send.
type Outcome struct {
	Recipient string `json:"recipient"`
	Items     int    `json:"items"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Report summarises one scan and dispatch pass.
type Report struct {
	Trigger    string    `json:"trigger"`
	Window     Window    `json:"window"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	// Skipped counts items dropped because their owner or owner email was missing.
	Skipped int `json:"skipped"`
	// Suppressed counts items already notified for this window date.
	Suppressed int       `json:"suppressed"`
	Outcomes   []Outcome `json:"outcomes"`
}

// LedgerEntry marks an item as notified for one window date.
type LedgerEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ItemID     primitive.ObjectID `bson:"item_id"`
	NotifyDate string             `bson:"notify_date"`
	Recipient  string             `bson:"recipient"`
	SentAt     time.Time          `bson:"sent_at"`
}

// AdHocItem is one entry of a manual send request.
type AdHocItem struct {
	Name       string `json:"name"`
	ExpiryDate string `json:"expiryDate"`
}

type SendEmailRequest struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Items []AdHocItem `json:"items"`
}

type RunAtRequest struct {
	RunAt time.Time `json:"run_at"`
}
