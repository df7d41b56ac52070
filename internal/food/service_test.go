package food

import (
	"context"
	"testing"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memStore is an in-memory Store keyed by item id.
type memStore struct {
	items map[primitive.ObjectID]FoodItem
}

func newMemStore() *memStore {
	return &memStore{items: map[primitive.ObjectID]FoodItem{}}
}

func (m *memStore) Insert(_ context.Context, item *FoodItem) error {
	item.ID = primitive.NewObjectID()
	m.items[item.ID] = *item
	return nil
}

func (m *memStore) ListByOwner(_ context.Context, ownerID primitive.ObjectID) ([]FoodItem, error) {
	out := []FoodItem{}
	for _, it := range m.items {
		if it.UserID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStore) FindByIDAndOwner(_ context.Context, id, ownerID primitive.ObjectID) (*FoodItem, error) {
	it, ok := m.items[id]
	if !ok || it.UserID != ownerID {
		return nil, apperr.ErrNotFound
	}
	return &it, nil
}

func (m *memStore) UpdateByIDAndOwner(_ context.Context, id, ownerID primitive.ObjectID, f ItemFields) (*FoodItem, error) {
	it, ok := m.items[id]
	if !ok || it.UserID != ownerID {
		return nil, apperr.ErrNotFound
	}
	it.Name, it.Quantity, it.ExpiryDate, it.ManufactureDate = f.Name, f.Quantity, f.ExpiryDate, f.ManufactureDate
	m.items[id] = it
	return &it, nil
}

func (m *memStore) DeleteByIDAndOwner(_ context.Context, id, ownerID primitive.ObjectID) error {
	it, ok := m.items[id]
	if !ok || it.UserID != ownerID {
		return apperr.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return NewService(store, &config.NotifyConfig{Location: loc}, zap.NewNop())
}

func TestService_CreateParsesDates(t *testing.T) {
	svc := newTestService(t, newMemStore())
	owner := primitive.NewObjectID()

	item, err := svc.Create(context.Background(), owner, ItemRequest{
		Name:            "  Milk ",
		Quantity:        2,
		ExpiryDate:      "2025-09-12",
		ManufactureDate: "2025-09-01T06:30:00Z",
	})

	require.NoError(t, err)
	assert.Equal(t, "Milk", item.Name)
	assert.Equal(t, owner, item.UserID)
	// Midnight in Asia/Kolkata is 18:30 UTC on the previous day.
	assert.Equal(t, time.Date(2025, 9, 11, 18, 30, 0, 0, time.UTC), item.ExpiryDate)
	require.NotNil(t, item.ManufactureDate)
	assert.Equal(t, time.Date(2025, 9, 1, 6, 30, 0, 0, time.UTC), *item.ManufactureDate)
}

func TestService_CreateValidation(t *testing.T) {
	svc := newTestService(t, newMemStore())
	owner := primitive.NewObjectID()

	tests := []struct {
		name  string
		req   ItemRequest
		field string
	}{
		{name: "missing name", req: ItemRequest{Quantity: 1, ExpiryDate: "2025-09-12"}, field: "name"},
		{name: "short name", req: ItemRequest{Name: "M", Quantity: 1, ExpiryDate: "2025-09-12"}, field: "name"},
		{name: "zero quantity", req: ItemRequest{Name: "Milk", ExpiryDate: "2025-09-12"}, field: "quantity"},
		{name: "negative quantity", req: ItemRequest{Name: "Milk", Quantity: -2, ExpiryDate: "2025-09-12"}, field: "quantity"},
		{name: "missing expiry", req: ItemRequest{Name: "Milk", Quantity: 1}, field: "expiryDate"},
		{name: "bad expiry", req: ItemRequest{Name: "Milk", Quantity: 1, ExpiryDate: "12/09/2025"}, field: "expiryDate"},
		{name: "bad manufacture", req: ItemRequest{Name: "Milk", Quantity: 1, ExpiryDate: "2025-09-12", ManufactureDate: "yesterday"}, field: "manufactureDate"},
		{name: "made after expiry", req: ItemRequest{Name: "Milk", Quantity: 1, ExpiryDate: "2025-09-12", ManufactureDate: "2025-09-20"}, field: "manufactureDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), owner, tt.req)

			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestService_UpdateAndDeleteAreOwnerScoped(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store)
	ctx := context.Background()
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	item, err := svc.Create(ctx, owner, ItemRequest{Name: "Cheese", Quantity: 1, ExpiryDate: "2025-09-13"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, stranger, item.ID.Hex(), ItemRequest{Name: "Stolen", Quantity: 1, ExpiryDate: "2025-09-13"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := svc.Update(ctx, owner, item.ID.Hex(), ItemRequest{Name: "Brie", Quantity: 3, ExpiryDate: "2025-09-14"})
	require.NoError(t, err)
	assert.Equal(t, "Brie", updated.Name)
	assert.Equal(t, 3, updated.Quantity)
	assert.Nil(t, updated.ManufactureDate)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, item.ID.Hex()), apperr.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner, item.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, owner, item.ID.Hex()), apperr.ErrNotFound)
}

func TestService_BadID(t *testing.T) {
	svc := newTestService(t, newMemStore())

	err := svc.Delete(context.Background(), primitive.NewObjectID(), "nope")

	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "id")
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)

	got, err := ParseDate("2025-09-12T10:00:00+05:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 12, 4, 30, 0, 0, time.UTC), got)

	got, err = ParseDate("2025-09-12", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 11, 18, 30, 0, 0, time.UTC), got)

	_, err = ParseDate("2025-13-01", loc)
	assert.Error(t, err)
}
