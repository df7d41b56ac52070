package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FoodExpiryTracker/internal/apperr"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)

// bcrypt only hashes the first 72 bytes and rejects longer input.
const maxPasswordBytes = 72

var passwordBytes = validation.By(func(value interface{}) error {
	if s, _ := value.(string); len(s) > maxPasswordBytes {
		return fmt.Errorf("must be at most %d bytes", maxPasswordBytes)
	}
	return nil
})

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	CreateUser(ctx context.Context, user *User) error
}

type UserService struct {
	repo   userStore
	tokens *JWTManager
	logger *zap.Logger
}

func NewUserService(repo *UserRepository, tokens *JWTManager, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, logger: logger}
}

func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.RuneLength(0, 100)),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required, validation.RuneLength(8, 0), passwordBytes),
	)
	if err != nil {
		return nil, apperr.FromValidation(err)
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// AuthenticateUser checks the credential and returns a signed token.
func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (string, error) {
	email := strings.ToLower(strings.TrimSpace(cred.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.GenerateJWT(user)
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
