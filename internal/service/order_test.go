package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
)

func seedOrder(t *testing.T, r *repo.GormRepo, userID uint, status models.OrderStatus, details []models.OrderDetail) *models.Order {
	t.Helper()

	var total float64
	for _, d := range details {
		total += d.Price * float64(d.Quantity)
	}
	order := &models.Order{
		UserID:     userID,
		Status:     status,
		TotalPrice: total,
		Details:    details,
	}
	require.NoError(t, r.DB.Create(order).Error)
	return order
}

func TestOrderService_Confirm_MovesPendingToProcessing(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "daisy", "user")
	order := seedOrder(t, r, user.ID, models.OrderStatusPending, nil)

	got, err := svc.Confirm(ctx, order.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	reloaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, reloaded.Status)
}

func TestOrderService_Confirm_IsIdempotentOnProcessing(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "rose", "user")
	order := seedOrder(t, r, user.ID, models.OrderStatusProcessing, nil)

	got, err := svc.Confirm(ctx, order.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)

	got, err = svc.Confirm(ctx, order.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
}

func TestOrderService_Confirm_RejectsShippedOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "lily", "user")
	order := seedOrder(t, r, user.ID, models.OrderStatusShipped, nil)

	_, err := svc.Confirm(ctx, order.ID, "en")
	require.ErrorIs(t, err, ErrInvalidTransition)

	reloaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, reloaded.Status)
}

func TestOrderService_Ship_RejectsPendingOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "tulip", "user")
	order := seedOrder(t, r, user.ID, models.OrderStatusPending, nil)

	_, err := svc.Ship(ctx, order.ID, "en")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_Receive_CompletesShippedOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "orchid", "user")
	order := seedOrder(t, r, user.ID, models.OrderStatusShipped, nil)

	got, err := svc.Receive(ctx, order.ID, user.ID, "vi")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
}

func TestOrderService_Receive_RejectsUnshippedOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "peony", "user")

	for _, status := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusProcessing} {
		order := seedOrder(t, r, user.ID, status, nil)

		_, err := svc.Receive(ctx, order.ID, user.ID, "en")
		require.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
	}
}

func TestOrderService_Receive_RejectsOtherUsersOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, "owner", "user")
	other := seedUser(t, r, "other", "user")
	order := seedOrder(t, r, owner.ID, models.OrderStatusShipped, nil)

	_, err := svc.Receive(ctx, order.ID, other.ID, "en")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_Cancel_RestoresStock(t *testing.T) {
	t.Parallel()

	for _, status := range []models.OrderStatus{models.OrderStatusPending, models.OrderStatusProcessing} {
		t.Run(string(status), func(t *testing.T) {
			t.Parallel()

			r := newTestRepo(t)
			svc := &OrderService{Repo: r}
			ctx := context.Background()

			user := seedUser(t, r, "iris", "user")
			bouquet := seedProduct(t, r, "bouquet", 200_000, 0, 10)
			vase := seedProduct(t, r, "vase", 150_000, 0, 5)

			order := seedOrder(t, r, user.ID, status, []models.OrderDetail{
				{ProductID: bouquet.ID, Quantity: 3, Price: 200_000},
				{ProductID: vase.ID, Quantity: 2, Price: 150_000},
			})

			got, err := svc.Cancel(ctx, order.ID, user.ID, "vi")
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusCancelled, got.Status)

			assert.Equal(t, 13, productStock(t, r, bouquet.ID))
			assert.Equal(t, 7, productStock(t, r, vase.ID))
		})
	}
}

func TestOrderService_Cancel_RejectsShippedAndTerminalOrders(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "lotus", "user")
	product := seedProduct(t, r, "lotus-pot", 90_000, 0, 4)

	for _, status := range []models.OrderStatus{
		models.OrderStatusShipped, models.OrderStatusCompleted, models.OrderStatusCancelled,
	} {
		order := seedOrder(t, r, user.ID, status, []models.OrderDetail{
			{ProductID: product.ID, Quantity: 2, Price: 90_000},
		})

		_, err := svc.Cancel(ctx, order.ID, user.ID, "en")
		require.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)

		reloaded, err := svc.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, status, reloaded.Status)
		assert.Equal(t, 4, productStock(t, r, product.ID), "stock must not change on rejected cancel")
	}
}

func TestOrderService_Cancel_AdminSkipsOwnershipCheck(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "camellia", "user")
	order := seedOrder(t, r, user.ID, models.OrderStatusPending, nil)

	got, err := svc.Cancel(ctx, order.ID, 0, "en")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestOrderService_Cancel_RejectsOtherUsersOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, "sunflower", "user")
	other := seedUser(t, r, "weed", "user")
	order := seedOrder(t, r, owner.ID, models.OrderStatusPending, nil)

	_, err := svc.Cancel(ctx, order.ID, other.ID, "en")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestOrderService_ListAllOrders_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}

	_, _, err := svc.ListAllOrders(context.Background(), models.OrderStatus("refunded"), 10, 0)
	require.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &OrderService{Repo: r}

	_, err := svc.GetOrder(context.Background(), 12345)
	require.ErrorIs(t, err, ErrNotFound)
}
