package food

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FoodItem is one perishable item owned by a single user. Field names match the
// documents written by earlier versions of the tracker.
type FoodItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	ManufactureDate *time.Time         `bson:"manufactureDate,omitempty" json:"manufactureDate,omitempty"`
	ExpiryDate      time.Time          `bson:"expiryDate" json:"expiryDate"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Owner is the subset of a user record the notification pass needs.
type Owner struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Email string             `bson:"email"`
}

// OwnedItem is a FoodItem joined to its owner. Owner is nil when the owner
// reference does not resolve.
type OwnedItem struct {
	FoodItem `bson:",inline"`
	Owner    *Owner `bson:"owner,omitempty"`
}

// ItemFields are the replaceable fields of an item.
type ItemFields struct {
	Name            string
	Quantity        int
	ExpiryDate      time.Time
	ManufactureDate *time.Time
}

// ItemRequest is the create/update payload. Dates accept RFC 3339 or YYYY-MM-DD.
type ItemRequest struct {
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	ExpiryDate      string `json:"expiryDate"`
	ManufactureDate string `json:"manufactureDate,omitempty"`
}
