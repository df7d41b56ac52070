package auth

import (
	"errors"
	"fmt"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// ContextKey is the echo context key holding *JWTClaims for authenticated requests.
const ContextKey = "user"

// JWTClaims identify the owner behind a request. Subject is the user's hex ObjectID.
type JWTClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// OwnerID parses the subject claim.
func (c *JWTClaims) OwnerID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Subject)
}

type JWTManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewJWTManager(cfg *config.AuthConfig) *JWTManager {
	return &JWTManager{key: []byte(cfg.JWTKey), ttl: cfg.TokenTTL, now: time.Now}
}

func (m *JWTManager) GenerateJWT(user *User) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT verifies signature and expiry and returns the claims.
func (m *JWTManager) ValidateJWT(tokenString string) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token is empty", apperr.ErrUnauthorized)
	}
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperr.ErrUnauthorized)
	}
	if _, err := claims.OwnerID(); err != nil {
		return nil, fmt.Errorf("%w: invalid subject", apperr.ErrUnauthorized)
	}
	return claims, nil
}

// ClaimsFromContext returns the claims set by the JWT middleware.
func ClaimsFromContext(c echo.Context) (*JWTClaims, bool) {
	claims, ok := c.Get(ContextKey).(*JWTClaims)
	return claims, ok && claims != nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
