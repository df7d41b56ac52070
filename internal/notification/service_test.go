package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/config"
	"FoodExpiryTracker/internal/food"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// passFixture holds two items for Alice and one for Bob, all expiring on
// 12 September 2025 in Kolkata.
type passFixture struct {
	store  *fakeStore
	mailer *fakeMailer
	svc    *Service
}

func newPassFixture(t *testing.T, ledger Ledger) *passFixture {
	t.Helper()
	kolkata := mustLoad(t, "Asia/Kolkata")
	now := time.Date(2025, 9, 12, 8, 0, 0, 0, kolkata)
	day := time.Date(2025, 9, 12, 0, 0, 0, 0, kolkata)

	alice := &food.Owner{Name: "Alice", Email: "alice@example.com"}
	bob := &food.Owner{Name: "Bob", Email: "bob@example.com"}
	store := &fakeStore{items: []food.OwnedItem{
		ownedItem("Milk", day, alice),
		ownedItem("Cheese", day.Add(10*time.Hour), alice),
		ownedItem("Yoghurt", day.Add(20*time.Hour), bob),
	}}
	mailer := &fakeMailer{}
	cfg := &config.NotifyConfig{Location: kolkata, ItemFormat: config.ItemFormatDated, SendConcurrency: 1}

	svc := NewService(store, mailer, ledger, cfg, zap.NewNop())
	svc.now = func() time.Time { return now }
	return &passFixture{store: store, mailer: mailer, svc: svc}
}

func TestService_RunPass(t *testing.T) {
	f := newPassFixture(t, nopLedger{})

	report, err := f.svc.RunPass(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, TriggerManual, report.Trigger)
	assert.Equal(t, "2025-09-12", report.Window.DateKey())
	assert.Equal(t, 2, report.Recipients)
	assert.Equal(t, 2, report.Sent)
	assert.Zero(t, report.Failed)

	sent := f.mailer.sentTo("alice@example.com")
	require.Len(t, sent, 1)
	assert.Equal(t, "Alice", sent[0].Name)
	assert.Equal(t, []string{
		"Milk [Expiring on : 12 September 2025]",
		"Cheese [Expiring on : 12 September 2025]",
	}, sent[0].Items)
}

func TestService_RepeatedPassesResendWithoutLedger(t *testing.T) {
	f := newPassFixture(t, nopLedger{})

	_, err := f.svc.RunPass(context.Background(), TriggerManual)
	require.NoError(t, err)
	_, err = f.svc.RunPass(context.Background(), TriggerManual)
	require.NoError(t, err)

	sent := f.mailer.sentTo("alice@example.com")
	require.Len(t, sent, 2)
	assert.Equal(t, sent[0], sent[1])
	assert.Len(t, f.mailer.sent, 4)
}

func TestService_LedgerSuppressesRepeats(t *testing.T) {
	ledger := newMemLedger()
	f := newPassFixture(t, ledger)
	f.mailer.fail = map[string]error{"bob@example.com": errors.New("smtp down")}

	first, err := f.svc.RunPass(context.Background(), TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)
	assert.Equal(t, 1, first.Failed)

	// Bob failed, so only his item is retried.
	f.mailer.fail = nil
	second, err := f.svc.RunPass(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Suppressed)
	assert.Equal(t, 1, second.Recipients)
	assert.Len(t, f.mailer.sentTo("alice@example.com"), 1)
	assert.Len(t, f.mailer.sentTo("bob@example.com"), 2)

	third, err := f.svc.RunPass(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Suppressed)
	assert.Zero(t, third.Recipients)
	assert.NotNil(t, third.Outcomes)
	assert.Len(t, f.mailer.sent, 3)
}

func TestService_RunPassErrors(t *testing.T) {
	t.Run("store failure", func(t *testing.T) {
		f := newPassFixture(t, nopLedger{})
		f.store.err = apperr.StoreAccess("find expiring items", assert.AnError)

		_, err := f.svc.RunPass(context.Background(), TriggerManual)

		assert.ErrorIs(t, err, apperr.ErrStoreAccess)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("ledger read failure", func(t *testing.T) {
		ledger := newMemLedger()
		ledger.readErr = apperr.StoreAccess("read notification log", assert.AnError)
		f := newPassFixture(t, ledger)

		_, err := f.svc.RunPass(context.Background(), TriggerManual)

		assert.ErrorIs(t, err, apperr.ErrStoreAccess)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("negative offset", func(t *testing.T) {
		f := newPassFixture(t, nopLedger{})
		f.svc.dayOffset = -2

		_, err := f.svc.RunPass(context.Background(), TriggerManual)

		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Zero(t, f.store.calls)
	})
}

func TestService_DayOffset(t *testing.T) {
	f := newPassFixture(t, nopLedger{})
	f.svc.dayOffset = 1

	report, err := f.svc.RunPass(context.Background(), TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, "2025-09-13", report.Window.DateKey())
	// Every fixture item expires on the 12th, so the window check drops them all.
	assert.Zero(t, report.Recipients)
	assert.Empty(t, f.mailer.sent)
}

// Milk expires today at 10:00 and Cheese tomorrow at 09:00. Offset 0 reminds
// about Milk only, offset 1 about Cheese only.
func TestService_TodayAndTomorrowByOffset(t *testing.T) {
	kolkata := mustLoad(t, "Asia/Kolkata")
	now := time.Date(2025, 9, 12, 8, 0, 0, 0, kolkata)
	owner := &food.Owner{Name: "Alice", Email: "alice@example.com"}
	store := &fakeStore{items: []food.OwnedItem{
		ownedItem("Milk", time.Date(2025, 9, 12, 10, 0, 0, 0, kolkata), owner),
		ownedItem("Cheese", time.Date(2025, 9, 13, 9, 0, 0, 0, kolkata), owner),
	}}

	tests := []struct {
		offset int
		want   []string
	}{
		{offset: 0, want: []string{"Milk"}},
		{offset: 1, want: []string{"Cheese"}},
	}
	for _, tt := range tests {
		mailer := &fakeMailer{}
		cfg := &config.NotifyConfig{Location: kolkata, ItemFormat: config.ItemFormatName, DayOffset: tt.offset, SendConcurrency: 1}
		svc := NewService(store, mailer, nopLedger{}, cfg, zap.NewNop())
		svc.now = func() time.Time { return now }

		report, err := svc.RunPass(context.Background(), TriggerManual)

		require.NoError(t, err)
		assert.Equal(t, 1, report.Sent, "offset %d", tt.offset)
		sent := mailer.sentTo("alice@example.com")
		require.Len(t, sent, 1, "offset %d", tt.offset)
		assert.Equal(t, tt.want, sent[0].Items, "offset %d", tt.offset)
	}
}

func TestService_SendAdHoc(t *testing.T) {
	f := newPassFixture(t, nopLedger{})

	err := f.svc.SendAdHoc(context.Background(), SendEmailRequest{
		Email: " carol@example.com ",
		Items: []AdHocItem{{Name: "Butter", ExpiryDate: "2025-09-20"}},
	})

	require.NoError(t, err)
	sent := f.mailer.sentTo("carol@example.com")
	require.Len(t, sent, 1)
	assert.Equal(t, DefaultRecipientName, sent[0].Name)
	assert.Equal(t, []string{"Butter [Expiring on : 20 September 2025]"}, sent[0].Items)
}

func TestService_SendAdHocValidation(t *testing.T) {
	tests := []struct {
		name string
		req  SendEmailRequest
	}{
		{name: "missing email", req: SendEmailRequest{Items: []AdHocItem{{Name: "Milk", ExpiryDate: "2025-09-12"}}}},
		{name: "bad email", req: SendEmailRequest{Email: "nope", Items: []AdHocItem{{Name: "Milk", ExpiryDate: "2025-09-12"}}}},
		{name: "missing items", req: SendEmailRequest{Email: "a@example.com"}},
		{name: "blank item name", req: SendEmailRequest{Email: "a@example.com", Items: []AdHocItem{{ExpiryDate: "2025-09-12"}}}},
		{name: "bad date", req: SendEmailRequest{Email: "a@example.com", Items: []AdHocItem{{Name: "Milk", ExpiryDate: "soon"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPassFixture(t, nopLedger{})

			err := f.svc.SendAdHoc(context.Background(), tt.req)

			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Empty(t, f.mailer.sent)
		})
	}
}

func TestService_SendAdHocTransportFailure(t *testing.T) {
	f := newPassFixture(t, nopLedger{})
	f.mailer.fail = map[string]error{"a@example.com": apperr.ErrTransport}

	err := f.svc.SendAdHoc(context.Background(), SendEmailRequest{
		Email: "a@example.com",
		Items: []AdHocItem{{Name: "Milk", ExpiryDate: "2025-09-12T00:00:00Z"}},
	})

	assert.ErrorIs(t, err, apperr.ErrTransport)
}
