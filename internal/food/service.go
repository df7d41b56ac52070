package food

import (
	"context"
	"errors"
	"strings"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateOnlyLayout = "2006-01-02"

// Service implements owner-scoped CRUD for food items.
type Service struct {
	store  Store
	loc    *time.Location
	logger *zap.Logger
}

func NewService(store Store, notify *config.NotifyConfig, logger *zap.Logger) *Service {
	return &Service{store: store, loc: notify.Location, logger: logger}
}

func (s *Service) List(ctx context.Context, ownerID primitive.ObjectID) ([]FoodItem, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, ownerID primitive.ObjectID, id string) (*FoodItem, error) {
	itemID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindByIDAndOwner(ctx, itemID, ownerID)
}

func (s *Service) Create(ctx context.Context, ownerID primitive.ObjectID, req ItemRequest) (*FoodItem, error) {
	fields, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	item := &FoodItem{
		Name:            fields.Name,
		Quantity:        fields.Quantity,
		ExpiryDate:      fields.ExpiryDate,
		ManufactureDate: fields.ManufactureDate,
		UserID:          ownerID,
	}
	if err := s.store.Insert(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Debug("food item created", zap.String("id", item.ID.Hex()), zap.String("owner", ownerID.Hex()))
	return item, nil
}

func (s *Service) Update(ctx context.Context, ownerID primitive.ObjectID, id string, req ItemRequest) (*FoodItem, error) {
	itemID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	fields, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateByIDAndOwner(ctx, itemID, ownerID, fields)
}

func (s *Service) Delete(ctx context.Context, ownerID primitive.ObjectID, id string) error {
	itemID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.store.DeleteByIDAndOwner(ctx, itemID, ownerID)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NewValidationError("id", "must be a valid item id")
	}
	return oid, nil
}

// parse validates req and resolves its dates in the tracker's time zone.
func (s *Service) parse(req ItemRequest) (ItemFields, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	req.ManufactureDate = strings.TrimSpace(req.ManufactureDate)

	dateRule := validation.By(func(value interface{}) error {
		str, _ := value.(string)
		if str == "" {
			return nil
		}
		_, err := ParseDate(str, s.loc)
		return err
	})
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required.Error("Food name is required"), validation.RuneLength(2, 100).Error("Food name should be between 2 and 100 characters")),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.ExpiryDate, validation.Required.Error("Expiry date is required"), dateRule),
		validation.Field(&req.ManufactureDate, dateRule),
	)
	if err != nil {
		return ItemFields{}, apperr.FromValidation(err)
	}

	expiry, _ := ParseDate(req.ExpiryDate, s.loc)
	fields := ItemFields{Name: req.Name, Quantity: req.Quantity, ExpiryDate: expiry}
	if req.ManufactureDate != "" {
		made, _ := ParseDate(req.ManufactureDate, s.loc)
		if made.After(expiry) {
			return ItemFields{}, apperr.NewValidationError("manufactureDate", "must not be after the expiry date")
		}
		fields.ManufactureDate = &made
	}
	return fields, nil
}

// ParseDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date, which is
// read as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(dateOnlyLayout, value, loc)
	if err != nil {
		return time.Time{}, errors.New("must be a valid date")
	}
	return t.UTC(), nil
}
