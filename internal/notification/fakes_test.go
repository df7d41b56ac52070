package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"FoodExpiryTracker/internal/food"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

type fakeStore struct {
	items []food.OwnedItem
	err   error
	calls int
}

func (f *fakeStore) FindByExpiryRange(_ context.Context, start, end time.Time) ([]food.OwnedItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func ownedItem(name string, expiry time.Time, owner *food.Owner) food.OwnedItem {
	return food.OwnedItem{
		FoodItem: food.FoodItem{ID: primitive.NewObjectID(), Name: name, Quantity: 1, ExpiryDate: expiry},
		Owner:    owner,
	}
}

type sentAlert struct {
	Email string
	Name  string
	Items []string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentAlert
	fail     map[string]error
	panicFor string
	delay    time.Duration
	inFlight int
	maxSeen  int
}

func (m *fakeMailer) SendExpiryAlert(_ context.Context, toEmail, toName string, items []string) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	m.sent = append(m.sent, sentAlert{Email: toEmail, Name: toName, Items: append([]string(nil), items...)})
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if toEmail == m.panicFor {
		panic("mailer exploded")
	}
	return m.fail[toEmail]
}

func (m *fakeMailer) sentTo(email string) []sentAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentAlert
	for _, s := range m.sent {
		if s.Email == email {
			out = append(out, s)
		}
	}
	return out
}

// memLedger is an in-memory Ledger.
type memLedger struct {
	entries map[string]bool
	readErr error
}

func newMemLedger() *memLedger {
	return &memLedger{entries: map[string]bool{}}
}

func (l *memLedger) Notified(_ context.Context, dateKey string, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	if l.readErr != nil {
		return nil, l.readErr
	}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if l.entries[dateKey+"/"+id.Hex()] {
			seen[id] = true
		}
	}
	return seen, nil
}

func (l *memLedger) Record(_ context.Context, dateKey, _ string, ids []primitive.ObjectID) error {
	for _, id := range ids {
		l.entries[dateKey+"/"+id.Hex()] = true
	}
	return nil
}
