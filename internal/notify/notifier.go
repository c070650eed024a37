package notify

import (
	"context"
	"fmt"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/pkg/logging"
)

// Events is the publishing side of the event bus. Implemented by
// mykafka.Producer; tests supply a fake.
type Events interface {
	PublishEvent(ctx context.Context, topic, key string, event interface{}) error
}

// Notifier fans a status change out to every admin plus the order's
// owner. Dispatch is fire-and-forget: failures are logged and never
// surfaced to the transition that triggered them.
type Notifier struct {
	Repo          *repo.GormRepo
	Events        Events
	Topic         string
	AdminLocale   string
	DefaultLocale string
}

// OrderStatusChanged records notifications for the status the order
// is now in. customerLocale is passed explicitly by the caller and
// falls back to the configured default when empty.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *models.Order, customerLocale string) {
	l := logging.FromContext(ctx).With("order_id", order.ID, "status", order.Status)

	locale := customerLocale
	if locale == "" {
		locale = n.DefaultLocale
	}

	noteType := TypeOrderStatusChanged
	if order.Status == models.OrderStatusPending {
		noteType = TypeOrderCreated
	}

	var notes []models.Notification

	title, body := render(customerMessages, locale, order.Status, order.ID)
	notes = append(notes, models.Notification{
		UserID: order.UserID,
		Type:   noteType,
		Title:  title,
		Body:   body,
		Locale: locale,
	})

	admins, err := n.Repo.ListAdmins(ctx)
	if err != nil {
		l.Error("notify_list_admins_failed", "error", err)
	}
	adminTitle, adminBody := render(adminMessages, n.AdminLocale, order.Status, order.ID)
	for _, admin := range admins {
		notes = append(notes, models.Notification{
			UserID: admin.ID,
			Type:   noteType,
			Title:  adminTitle,
			Body:   adminBody,
			Locale: n.AdminLocale,
		})
	}

	if err := n.Repo.CreateNotifications(ctx, notes); err != nil {
		l.Error("notify_persist_failed", "error", err)
	}

	n.publish(ctx, order, noteType)
}

func (n *Notifier) publish(ctx context.Context, order *models.Order, noteType string) {
	if n.Events == nil {
		return
	}

	event := map[string]interface{}{
		"type":        noteType,
		"order_id":    order.ID,
		"user_id":     order.UserID,
		"status":      order.Status,
		"total_price": order.TotalPrice,
	}
	if err := n.Events.PublishEvent(ctx, n.Topic, fmt.Sprint(order.ID), event); err != nil {
		logging.FromContext(ctx).Error("notify_publish_failed", "order_id", order.ID, "error", err)
	}
}
