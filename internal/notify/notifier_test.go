package notify

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
)

type fakeEvents struct {
	topics []string
	keys   []string
	events []interface{}
}

func (f *fakeEvents) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	f.topics = append(f.topics, topic)
	f.keys = append(f.keys, key)
	f.events = append(f.events, event)
	return nil
}

func newNotifierFixture(t *testing.T) (*Notifier, *repo.GormRepo, *fakeEvents) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	r := &repo.GormRepo{DB: db}
	events := &fakeEvents{}
	n := &Notifier{
		Repo:          r,
		Events:        events,
		Topic:         "order_events",
		AdminLocale:   "en",
		DefaultLocale: "vi",
	}
	return n, r, events
}

func notificationsFor(t *testing.T, r *repo.GormRepo, userID uint) []models.Notification {
	t.Helper()

	var notes []models.Notification
	require.NoError(t, r.DB.Where("user_id = ?", userID).Find(&notes).Error)
	return notes
}

func TestNotifier_OrderStatusChanged_FansOutToAdmins(t *testing.T) {
	t.Parallel()

	n, r, events := newNotifierFixture(t)
	ctx := context.Background()

	customer := &models.User{Username: "khach", PasswordHash: "x", Role: "user"}
	admin1 := &models.User{Username: "admin1", PasswordHash: "x", Role: "admin"}
	admin2 := &models.User{Username: "admin2", PasswordHash: "x", Role: "admin"}
	require.NoError(t, r.DB.Create(customer).Error)
	require.NoError(t, r.DB.Create(admin1).Error)
	require.NoError(t, r.DB.Create(admin2).Error)

	order := &models.Order{UserID: customer.ID, Status: models.OrderStatusShipped, TotalPrice: 320_000}
	require.NoError(t, r.DB.Create(order).Error)

	n.OrderStatusChanged(ctx, order, "vi")

	customerNotes := notificationsFor(t, r, customer.ID)
	require.Len(t, customerNotes, 1)
	assert.Equal(t, TypeOrderStatusChanged, customerNotes[0].Type)
	assert.Equal(t, "vi", customerNotes[0].Locale)
	assert.Equal(t, "Đơn hàng đang giao", customerNotes[0].Title)

	for _, admin := range []*models.User{admin1, admin2} {
		notes := notificationsFor(t, r, admin.ID)
		require.Len(t, notes, 1, "admin %s", admin.Username)
		assert.Equal(t, "en", notes[0].Locale)
		assert.Equal(t, "Order shipped", notes[0].Title)
	}

	require.Len(t, events.events, 1)
	assert.Equal(t, "order_events", events.topics[0])
}

func TestNotifier_OrderStatusChanged_EmptyLocaleFallsBackToDefault(t *testing.T) {
	t.Parallel()

	n, r, _ := newNotifierFixture(t)
	ctx := context.Background()

	customer := &models.User{Username: "fallback", PasswordHash: "x", Role: "user"}
	require.NoError(t, r.DB.Create(customer).Error)

	order := &models.Order{UserID: customer.ID, Status: models.OrderStatusPending}
	require.NoError(t, r.DB.Create(order).Error)

	n.OrderStatusChanged(ctx, order, "")

	notes := notificationsFor(t, r, customer.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, TypeOrderCreated, notes[0].Type)
	assert.Equal(t, "vi", notes[0].Locale)
	assert.Equal(t, "Đặt hàng thành công", notes[0].Title)
}

func TestNotifier_OrderStatusChanged_UnknownLocaleRendersEnglish(t *testing.T) {
	t.Parallel()

	n, r, _ := newNotifierFixture(t)
	ctx := context.Background()

	customer := &models.User{Username: "tourist", PasswordHash: "x", Role: "user"}
	require.NoError(t, r.DB.Create(customer).Error)

	order := &models.Order{UserID: customer.ID, Status: models.OrderStatusCancelled}
	require.NoError(t, r.DB.Create(order).Error)

	n.OrderStatusChanged(ctx, order, "fr")

	notes := notificationsFor(t, r, customer.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Order cancelled", notes[0].Title)
	// The requested locale is still recorded even when rendering
	// falls back to English.
	assert.Equal(t, "fr", notes[0].Locale)
}

func TestNotifier_NilEventsSkipsPublish(t *testing.T) {
	t.Parallel()

	n, r, _ := newNotifierFixture(t)
	n.Events = nil
	ctx := context.Background()

	customer := &models.User{Username: "quiet", PasswordHash: "x", Role: "user"}
	require.NoError(t, r.DB.Create(customer).Error)

	order := &models.Order{UserID: customer.ID, Status: models.OrderStatusProcessing}
	require.NoError(t, r.DB.Create(order).Error)

	n.OrderStatusChanged(ctx, order, "en")

	notes := notificationsFor(t, r, customer.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Order confirmed", notes[0].Title)
}
