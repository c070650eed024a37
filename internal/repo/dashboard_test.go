package repo

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
)

func newDashboardFixture(t *testing.T) (*GormRepo, DateRange) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	r := &GormRepo{DB: db}

	now := time.Now().UTC()
	rng := DateRange{From: now.AddDate(0, 0, -7), To: now}
	inWindow := now.AddDate(0, 0, -2)

	flowers := &models.Category{Name: "flowers"}
	gifts := &models.Category{Name: "gifts"}
	require.NoError(t, db.Create(flowers).Error)
	require.NoError(t, db.Create(gifts).Error)

	bouquet := &models.Product{Name: "bouquet", Price: 200_000, StockQuantity: 8, CategoryID: flowers.ID}
	teddy := &models.Product{Name: "teddy", Price: 150_000, StockQuantity: 3, CategoryID: gifts.ID}
	soldOut := &models.Product{Name: "lily-box", Price: 90_000, StockQuantity: 0, CategoryID: flowers.ID}
	require.NoError(t, db.Create(bouquet).Error)
	require.NoError(t, db.Create(teddy).Error)
	require.NoError(t, db.Create(soldOut).Error)

	alice := &models.User{Username: "alice", PasswordHash: "x", Role: "user", CreatedAt: inWindow}
	bob := &models.User{Username: "bob", PasswordHash: "x", Role: "user", CreatedAt: now.AddDate(0, -2, 0)}
	admin := &models.User{Username: "admin", PasswordHash: "x", Role: "admin"}
	require.NoError(t, db.Create(alice).Error)
	require.NoError(t, db.Create(bob).Error)
	require.NoError(t, db.Create(admin).Error)

	completedAt := inWindow.Add(30 * time.Hour)
	orders := []*models.Order{
		// Counts as revenue: 2x bouquet completed.
		{UserID: alice.ID, Status: models.OrderStatusCompleted, TotalPrice: 400_000, CreatedAt: inWindow, CompletedAt: &completedAt,
			Details: []models.OrderDetail{{ProductID: bouquet.ID, Quantity: 2, Price: 200_000}}},
		// Counts as revenue: 1x teddy processing.
		{UserID: alice.ID, Status: models.OrderStatusProcessing, TotalPrice: 150_000, CreatedAt: inWindow,
			Details: []models.OrderDetail{{ProductID: teddy.ID, Quantity: 1, Price: 150_000}}},
		// Cancelled orders never count as revenue.
		{UserID: bob.ID, Status: models.OrderStatusCancelled, TotalPrice: 1_200_000, CreatedAt: inWindow,
			Details: []models.OrderDetail{{ProductID: bouquet.ID, Quantity: 6, Price: 200_000}}},
		// Pending orders count for the histogram but not revenue.
		{UserID: bob.ID, Status: models.OrderStatusPending, TotalPrice: 90_000, CreatedAt: inWindow,
			Details: []models.OrderDetail{{ProductID: soldOut.ID, Quantity: 1, Price: 90_000}}},
		// Outside the window, must be invisible everywhere.
		{UserID: bob.ID, Status: models.OrderStatusCompleted, TotalPrice: 5_000_000, CreatedAt: now.AddDate(0, -3, 0),
			Details: []models.OrderDetail{{ProductID: bouquet.ID, Quantity: 25, Price: 200_000}}},
	}
	for _, o := range orders {
		require.NoError(t, db.Create(o).Error)
	}

	payments := []*models.Payment{
		{OrderID: orders[0].ID, PaymentMethod: models.PaymentMethodCOD, PaymentStatus: models.PaymentStatusCompleted, TransactionID: "t1"},
		{OrderID: orders[1].ID, PaymentMethod: models.PaymentMethodVNPay, PaymentStatus: models.PaymentStatusPending, TransactionID: "t2"},
	}
	for _, p := range payments {
		require.NoError(t, db.Create(p).Error)
	}

	reviews := []*models.Review{
		{UserID: alice.ID, ProductID: bouquet.ID, Rating: 5, CreatedAt: inWindow},
		{UserID: bob.ID, ProductID: bouquet.ID, Rating: 5, CreatedAt: inWindow},
		{UserID: bob.ID, ProductID: teddy.ID, Rating: 3, CreatedAt: inWindow},
	}
	for _, rv := range reviews {
		require.NoError(t, db.Create(rv).Error)
	}

	return r, rng
}

func TestGormRepo_TotalRevenue(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	total, err := r.TotalRevenue(context.Background(), rng)
	require.NoError(t, err)
	assert.InDelta(t, 550_000, total, 1e-6)
}

func TestGormRepo_RevenueByCategory(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	rows, err := r.RevenueByCategory(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ordered by revenue, flowers first.
	assert.Equal(t, "flowers", rows[0].CategoryName)
	assert.EqualValues(t, 2, rows[0].Quantity)
	assert.InDelta(t, 400_000, rows[0].Revenue, 1e-6)

	assert.Equal(t, "gifts", rows[1].CategoryName)
	assert.EqualValues(t, 1, rows[1].Quantity)
	assert.InDelta(t, 150_000, rows[1].Revenue, 1e-6)
}

func TestGormRepo_RevenueByPaymentMethod(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	rows, err := r.RevenueByPaymentMethod(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byMethod := map[string]PaymentMethodRevenue{}
	for _, row := range rows {
		byMethod[row.PaymentMethod] = row
	}
	assert.InDelta(t, 400_000, byMethod[models.PaymentMethodCOD].Revenue, 1e-6)
	assert.InDelta(t, 150_000, byMethod[models.PaymentMethodVNPay].Revenue, 1e-6)
}

func TestGormRepo_OrderCountsByStatus_ZeroFills(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	rows, err := r.OrderCountsByStatus(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, rows, len(models.OrderStatuses()))

	byStatus := map[models.OrderStatus]int64{}
	for _, row := range rows {
		byStatus[row.Status] = row.Count
	}
	assert.EqualValues(t, 1, byStatus[models.OrderStatusPending])
	assert.EqualValues(t, 1, byStatus[models.OrderStatusProcessing])
	assert.EqualValues(t, 0, byStatus[models.OrderStatusShipped])
	assert.EqualValues(t, 1, byStatus[models.OrderStatusCompleted])
	assert.EqualValues(t, 1, byStatus[models.OrderStatusCancelled])
}

func TestGormRepo_AverageFulfillmentHours(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	avg, err := r.AverageFulfillmentHours(context.Background(), rng)
	require.NoError(t, err)
	assert.InDelta(t, 30, avg, 0.01)
}

func TestGormRepo_TopProducts(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)
	ctx := context.Background()

	byQuantity, err := r.TopProducts(ctx, rng, "quantity", 10)
	require.NoError(t, err)
	require.Len(t, byQuantity, 2)
	assert.Equal(t, "bouquet", byQuantity[0].Name)
	assert.EqualValues(t, 2, byQuantity[0].Quantity)

	byRevenue, err := r.TopProducts(ctx, rng, "revenue", 1)
	require.NoError(t, err)
	require.Len(t, byRevenue, 1)
	assert.Equal(t, "bouquet", byRevenue[0].Name)
	assert.InDelta(t, 400_000, byRevenue[0].Revenue, 1e-6)
}

func TestGormRepo_StockLevels(t *testing.T) {
	t.Parallel()

	r, _ := newDashboardFixture(t)

	report, err := r.StockLevels(context.Background(), 5)
	require.NoError(t, err)

	require.Len(t, report.LowStock, 1)
	assert.Equal(t, "teddy", report.LowStock[0].Name)

	require.Len(t, report.OutOfStock, 1)
	assert.Equal(t, "lily-box", report.OutOfStock[0].Name)

	assert.Equal(t, 5, report.Threshold)
}

func TestGormRepo_CustomerStats(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	stats, err := r.CustomerStats(context.Background(), rng)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Total, "admins are not customers")
	assert.EqualValues(t, 1, stats.New)
	assert.EqualValues(t, 2, stats.Active)
	assert.EqualValues(t, 2, stats.Repeat)
	assert.InDelta(t, 275_000, stats.LifetimeValue, 1e-6)
}

func TestGormRepo_Retention(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)
	ctx := context.Background()

	// bob ordered in the previous window and again inside rng.
	var bob models.User
	require.NoError(t, r.DB.Where("username = ?", "bob").First(&bob).Error)
	prev := rng.Previous()
	require.NoError(t, r.DB.Create(&models.Order{
		UserID:    bob.ID,
		Status:    models.OrderStatusCompleted,
		CreatedAt: prev.From.Add(12 * time.Hour),
	}).Error)

	stats, err := r.Retention(ctx, rng)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.PreviousCustomers)
	assert.EqualValues(t, 1, stats.RetainedCustomers)
	assert.InDelta(t, 100, stats.RetentionRate, 1e-6)
}

func TestGormRepo_ReviewRatingDistribution_ZeroFills(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	rows, err := r.ReviewRatingDistribution(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, 1, rows[0].Rating)
	assert.EqualValues(t, 0, rows[0].Count)
	assert.EqualValues(t, 1, rows[2].Count)
	assert.EqualValues(t, 2, rows[4].Count)
}

func TestGormRepo_OrderValueHistogram(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	buckets, err := r.OrderValueHistogram(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, buckets, 5)

	byLabel := map[string]int64{}
	for _, b := range buckets {
		byLabel[b.Label] = b.Count
	}
	// 90000 pending, 150000 processing, 400000 completed; the
	// cancelled 1.2M order is excluded.
	assert.EqualValues(t, 1, byLabel["0-100K"])
	assert.EqualValues(t, 1, byLabel["100K-300K"])
	assert.EqualValues(t, 1, byLabel["300K-500K"])
	assert.EqualValues(t, 0, byLabel["500K-1M"])
	assert.EqualValues(t, 0, byLabel["1M+"])
}

func TestGormRepo_Cancellations(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	summary, err := r.Cancellations(context.Background(), rng)
	require.NoError(t, err)

	assert.EqualValues(t, 4, summary.TotalOrders)
	assert.EqualValues(t, 1, summary.CancelledOrders)
	assert.InDelta(t, 25, summary.CancellationRate, 1e-6)
	assert.InDelta(t, 1_200_000, summary.LostRevenue, 1e-6)
}

func TestGormRepo_RevenueByDate(t *testing.T) {
	t.Parallel()

	r, rng := newDashboardFixture(t)

	points, err := r.RevenueByDate(context.Background(), rng)
	require.NoError(t, err)
	require.Len(t, points, 1)

	assert.EqualValues(t, 2, points[0].Orders)
	assert.InDelta(t, 550_000, points[0].Revenue, 1e-6)
}
