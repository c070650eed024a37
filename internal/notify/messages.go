package notify

import (
	"fmt"

	"github.com/hanayashop/backend/internal/models"
)

const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
)

type message struct {
	Title string
	Body  string
}

// customerMessages are rendered in the locale chosen by the caller,
// adminMessages in the fixed admin locale. Unknown locales fall back
// to "en".
var customerMessages = map[string]map[models.OrderStatus]message{
	"en": {
		models.OrderStatusPending:    {"Order placed", "Your order #%d has been placed and is awaiting confirmation."},
		models.OrderStatusProcessing: {"Order confirmed", "Your order #%d has been confirmed and is being prepared."},
		models.OrderStatusShipped:    {"Order shipped", "Your order #%d is on its way."},
		models.OrderStatusCompleted:  {"Order delivered", "Your order #%d has been delivered. Thank you for shopping with us!"},
		models.OrderStatusCancelled:  {"Order cancelled", "Your order #%d has been cancelled."},
	},
	"vi": {
		models.OrderStatusPending:    {"Đặt hàng thành công", "Đơn hàng #%d của bạn đã được tạo và đang chờ xác nhận."},
		models.OrderStatusProcessing: {"Đơn hàng đã xác nhận", "Đơn hàng #%d của bạn đã được xác nhận và đang được chuẩn bị."},
		models.OrderStatusShipped:    {"Đơn hàng đang giao", "Đơn hàng #%d của bạn đang trên đường giao."},
		models.OrderStatusCompleted:  {"Đã giao hàng", "Đơn hàng #%d của bạn đã được giao thành công. Cảm ơn bạn đã mua sắm!"},
		models.OrderStatusCancelled:  {"Đơn hàng đã hủy", "Đơn hàng #%d của bạn đã bị hủy."},
	},
}

var adminMessages = map[string]map[models.OrderStatus]message{
	"en": {
		models.OrderStatusPending:    {"New order", "Order #%d has been placed."},
		models.OrderStatusProcessing: {"Order confirmed", "Order #%d moved to processing."},
		models.OrderStatusShipped:    {"Order shipped", "Order #%d has been shipped."},
		models.OrderStatusCompleted:  {"Order completed", "Order #%d was confirmed delivered by the customer."},
		models.OrderStatusCancelled:  {"Order cancelled", "Order #%d has been cancelled; stock was restored."},
	},
	"vi": {
		models.OrderStatusPending:    {"Đơn hàng mới", "Đơn hàng #%d vừa được tạo."},
		models.OrderStatusProcessing: {"Đơn hàng đã xác nhận", "Đơn hàng #%d chuyển sang trạng thái xử lý."},
		models.OrderStatusShipped:    {"Đơn hàng đang giao", "Đơn hàng #%d đã được giao cho đơn vị vận chuyển."},
		models.OrderStatusCompleted:  {"Đơn hàng hoàn tất", "Đơn hàng #%d đã được khách xác nhận giao thành công."},
		models.OrderStatusCancelled:  {"Đơn hàng đã hủy", "Đơn hàng #%d đã bị hủy; tồn kho đã được hoàn lại."},
	},
}

func render(catalog map[string]map[models.OrderStatus]message, locale string, status models.OrderStatus, orderID uint) (string, string) {
	byStatus, ok := catalog[locale]
	if !ok {
		byStatus = catalog["en"]
	}
	m := byStatus[status]
	return m.Title, fmt.Sprintf(m.Body, orderID)
}
