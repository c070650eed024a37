package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
)

// DateRange bounds every dashboard query. From/To are inclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r DateRange) Previous() DateRange {
	span := r.To.Sub(r.From)
	return DateRange{From: r.From.Add(-span), To: r.From}
}

type RevenuePoint struct {
	Date    string  `json:"date"`
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type CategoryRevenue struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Quantity     int64   `json:"quantity"`
	Revenue      float64 `json:"revenue"`
}

type PaymentMethodRevenue struct {
	PaymentMethod string  `json:"payment_method"`
	Orders        int64   `json:"orders"`
	Revenue       float64 `json:"revenue"`
}

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type TopProduct struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int64   `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

type CustomerStats struct {
	Total         int64   `json:"total"`
	New           int64   `json:"new"`
	Active        int64   `json:"active"`
	Repeat        int64   `json:"repeat"`
	LifetimeValue float64 `json:"lifetime_value"`
}

type RetentionStats struct {
	PreviousCustomers int64   `json:"previous_customers"`
	RetainedCustomers int64   `json:"retained_customers"`
	RetentionRate     float64 `json:"retention_rate"`
}

type CategoryPerformance struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Orders       int64   `json:"orders"`
	Quantity     int64   `json:"quantity"`
	Revenue      float64 `json:"revenue"`
}

type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

type HistogramBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max,omitempty"`
	Count int64   `json:"count"`
}

type CancellationSummary struct {
	TotalOrders      int64   `json:"total_orders"`
	CancelledOrders  int64   `json:"cancelled_orders"`
	CancellationRate float64 `json:"cancellation_rate"`
	LostRevenue      float64 `json:"lost_revenue"`
}

type StockReport struct {
	LowStock   []models.Product `json:"low_stock"`
	OutOfStock []models.Product `json:"out_of_stock"`
	Threshold  int              `json:"threshold"`
}

// revenueOrders scopes a query to orders that count as revenue.
func (r *GormRepo) revenueOrders(ctx context.Context, rng DateRange) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("orders.status IN ?", models.RevenueStatuses()).
		Where("orders.created_at BETWEEN ? AND ?", rng.From, rng.To)
}

func (r *GormRepo) TotalRevenue(ctx context.Context, rng DateRange) (float64, error) {
	var total float64
	err := r.revenueOrders(ctx, rng).
		Select("COALESCE(SUM(total_price), 0)").Scan(&total).Error
	return total, err
}

func (r *GormRepo) RevenueByDate(ctx context.Context, rng DateRange) ([]RevenuePoint, error) {
	var points []RevenuePoint
	err := r.revenueOrders(ctx, rng).
		Select("DATE(orders.created_at) AS date, COUNT(*) AS orders, SUM(total_price) AS revenue").
		Group("DATE(orders.created_at)").
		Order("date ASC").
		Scan(&points).Error
	return points, err
}

func (r *GormRepo) RevenueByCategory(ctx context.Context, rng DateRange) ([]CategoryRevenue, error) {
	var rows []CategoryRevenue
	err := r.DB.WithContext(ctx).Table("order_details").
		Select("categories.id AS category_id, categories.name AS category_name, "+
			"SUM(order_details.quantity) AS quantity, "+
			"SUM(order_details.quantity * order_details.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN products ON products.id = order_details.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("orders.status IN ?", models.RevenueStatuses()).
		Where("orders.created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("categories.id, categories.name").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) RevenueByPaymentMethod(ctx context.Context, rng DateRange) ([]PaymentMethodRevenue, error) {
	var rows []PaymentMethodRevenue
	err := r.DB.WithContext(ctx).Table("orders").
		Select("payments.payment_method AS payment_method, COUNT(*) AS orders, "+
			"SUM(orders.total_price) AS revenue").
		Joins("JOIN payments ON payments.order_id = orders.id").
		Where("orders.status IN ?", models.RevenueStatuses()).
		Where("orders.created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("payments.payment_method").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) OrderCountsByStatus(ctx context.Context, rng DateRange) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	// Zero-fill missing statuses so the response is stable.
	byStatus := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	out := make([]StatusCount, 0, len(models.OrderStatuses()))
	for _, s := range models.OrderStatuses() {
		out = append(out, StatusCount{Status: s, Count: byStatus[s]})
	}
	return out, nil
}

// AverageFulfillmentHours averages created→completed time for orders
// completed inside the window. Folded in Go to stay portable between
// postgres and sqlite.
func (r *GormRepo) AverageFulfillmentHours(ctx context.Context, rng DateRange) (float64, error) {
	var rows []struct {
		CreatedAt   time.Time
		CompletedAt time.Time
	}
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("created_at, completed_at").
		Where("status = ?", models.OrderStatusCompleted).
		Where("completed_at IS NOT NULL").
		Where("completed_at BETWEEN ? AND ?", rng.From, rng.To).
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var total time.Duration
	for _, row := range rows {
		total += row.CompletedAt.Sub(row.CreatedAt)
	}
	avg := total / time.Duration(len(rows))
	return avg.Hours(), nil
}

func (r *GormRepo) TopProducts(ctx context.Context, rng DateRange, by string, limit int) ([]TopProduct, error) {
	order := "quantity DESC"
	if by == "revenue" {
		order = "revenue DESC"
	}

	var rows []TopProduct
	err := r.DB.WithContext(ctx).Table("order_details").
		Select("products.id AS product_id, products.name AS name, "+
			"SUM(order_details.quantity) AS quantity, "+
			"SUM(order_details.quantity * order_details.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN products ON products.id = order_details.product_id").
		Where("orders.status IN ?", models.RevenueStatuses()).
		Where("orders.created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("products.id, products.name").
		Order(order).
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) StockLevels(ctx context.Context, threshold int) (*StockReport, error) {
	report := &StockReport{Threshold: threshold}

	if err := r.DB.WithContext(ctx).
		Where("stock_quantity > 0 AND stock_quantity <= ?", threshold).
		Order("stock_quantity ASC").
		Find(&report.LowStock).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).
		Where("stock_quantity = 0").
		Order("name ASC").
		Find(&report.OutOfStock).Error; err != nil {
		return nil, err
	}

	return report, nil
}

func (r *GormRepo) CustomerStats(ctx context.Context, rng DateRange) (*CustomerStats, error) {
	stats := &CustomerStats{}

	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", "user").
		Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", "user").
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Count(&stats.New).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Distinct("user_id").
		Count(&stats.Active).Error; err != nil {
		return nil, err
	}

	repeatSub := r.DB.Model(&models.Order{}).
		Select("user_id").
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("user_id").
		Having("COUNT(id) >= 2")
	if err := r.DB.WithContext(ctx).Table("(?) AS repeat_customers", repeatSub).
		Count(&stats.Repeat).Error; err != nil {
		return nil, err
	}

	revenue, err := r.TotalRevenue(ctx, rng)
	if err != nil {
		return nil, err
	}
	if stats.Active > 0 {
		stats.LifetimeValue = revenue / float64(stats.Active)
	}

	return stats, nil
}

// Retention compares customers of the window immediately before rng
// against those who ordered again inside rng.
func (r *GormRepo) Retention(ctx context.Context, rng DateRange) (*RetentionStats, error) {
	prev := rng.Previous()
	stats := &RetentionStats{}

	prevSub := r.DB.Model(&models.Order{}).
		Distinct("user_id").
		Where("created_at BETWEEN ? AND ?", prev.From, prev.To)

	if err := r.DB.WithContext(ctx).Table("(?) AS prev_customers", prevSub).
		Count(&stats.PreviousCustomers).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Where("user_id IN (?)", prevSub).
		Distinct("user_id").
		Count(&stats.RetainedCustomers).Error; err != nil {
		return nil, err
	}

	if stats.PreviousCustomers > 0 {
		stats.RetentionRate = float64(stats.RetainedCustomers) / float64(stats.PreviousCustomers) * 100
	}
	return stats, nil
}

func (r *GormRepo) CategoryPerformance(ctx context.Context, rng DateRange) ([]CategoryPerformance, error) {
	var rows []CategoryPerformance
	err := r.DB.WithContext(ctx).Table("order_details").
		Select("categories.id AS category_id, categories.name AS category_name, "+
			"COUNT(DISTINCT order_details.order_id) AS orders, "+
			"SUM(order_details.quantity) AS quantity, "+
			"SUM(order_details.quantity * order_details.price) AS revenue").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN products ON products.id = order_details.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("orders.status IN ?", models.RevenueStatuses()).
		Where("orders.created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("categories.id, categories.name").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *GormRepo) ReviewRatingDistribution(ctx context.Context, rng DateRange) ([]RatingCount, error) {
	var rows []RatingCount
	err := r.DB.WithContext(ctx).Model(&models.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byRating := make(map[int]int64, len(rows))
	for _, row := range rows {
		byRating[row.Rating] = row.Count
	}
	out := make([]RatingCount, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		out = append(out, RatingCount{Rating: rating, Count: byRating[rating]})
	}
	return out, nil
}

// histogramBounds are the fixed order-value buckets (VND).
var histogramBounds = []HistogramBucket{
	{Label: "0-100K", Min: 0, Max: 100_000},
	{Label: "100K-300K", Min: 100_000, Max: 300_000},
	{Label: "300K-500K", Min: 300_000, Max: 500_000},
	{Label: "500K-1M", Min: 500_000, Max: 1_000_000},
	{Label: "1M+", Min: 1_000_000},
}

func (r *GormRepo) OrderValueHistogram(ctx context.Context, rng DateRange) ([]HistogramBucket, error) {
	var totals []float64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status <> ?", models.OrderStatusCancelled).
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Pluck("total_price", &totals).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]HistogramBucket, len(histogramBounds))
	copy(buckets, histogramBounds)
	for _, total := range totals {
		for i := range buckets {
			if total >= buckets[i].Min && (buckets[i].Max == 0 || total < buckets[i].Max) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets, nil
}

func (r *GormRepo) Cancellations(ctx context.Context, rng DateRange) (*CancellationSummary, error) {
	summary := &CancellationSummary{}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Count(&summary.TotalOrders).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCancelled).
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Count(&summary.CancelledOrders).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", models.OrderStatusCancelled).
		Where("created_at BETWEEN ? AND ?", rng.From, rng.To).
		Scan(&summary.LostRevenue).Error; err != nil {
		return nil, err
	}

	if summary.TotalOrders > 0 {
		summary.CancellationRate = float64(summary.CancelledOrders) / float64(summary.TotalOrders) * 100
	}
	return summary, nil
}
