package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDisplayName is used wherever a user has no name on file.
const DefaultDisplayName = "User"

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// DisplayName returns the user's name or the default placeholder.
func (u *User) DisplayName() string {
	if u.Name == "" {
		return DefaultDisplayName
	}
	return u.Name
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
