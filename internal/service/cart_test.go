package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanayashop/backend/internal/models"
)

func TestCartService_AddToCart_ChecksStock(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "buyer", "user")
	product := seedProduct(t, r, "roses", 120_000, 0, 2)

	item, err := svc.AddToCart(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = svc.AddToCart(ctx, user.ID, product.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartService_AddToCart_UnknownProduct(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}

	user := seedUser(t, r, "ghost", "user")

	_, err := svc.AddToCart(context.Background(), user.ID, 999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_Checkout_CreatesPendingOrder(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "hana", "user")
	bouquet := seedProduct(t, r, "spring-bouquet", 300_000, 20, 10)
	card := seedProduct(t, r, "greeting-card", 20_000, 0, 50)

	addr := &models.Address{UserID: user.ID, FullName: "Hana", Line: "12 Flower St"}
	require.NoError(t, r.DB.Create(addr).Error)

	_, err := svc.AddToCart(ctx, user.ID, bouquet.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user.ID, card.ID, 1)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, user.ID, CheckoutRequest{
		AddressID:     addr.ID,
		PaymentMethod: models.PaymentMethodCOD,
		Message:       "please deliver before noon",
	}, "vi")
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	// 300000 at 20 percent off is 240000 per unit.
	assert.InDelta(t, 240_000*2+20_000, order.TotalPrice, 1e-6)
	require.Len(t, order.Details, 2)

	byProduct := map[uint]models.OrderDetail{}
	for _, d := range order.Details {
		byProduct[d.ProductID] = d
	}
	assert.InDelta(t, 240_000, byProduct[bouquet.ID].Price, 1e-6)
	assert.InDelta(t, 20_000, byProduct[card.ID].Price, 1e-6)

	assert.Equal(t, 8, productStock(t, r, bouquet.ID))
	assert.Equal(t, 49, productStock(t, r, card.ID))

	items, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	var payment models.Payment
	require.NoError(t, r.DB.Where("order_id = ?", order.ID).First(&payment).Error)
	assert.Equal(t, models.PaymentMethodCOD, payment.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, payment.PaymentStatus)
	assert.NotEmpty(t, payment.TransactionID)
}

func TestCartService_Checkout_SnapshotsPriceAtOrderTime(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "mai", "user")
	product := seedProduct(t, r, "orchid-pot", 500_000, 10, 5)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, user.ID, CheckoutRequest{PaymentMethod: models.PaymentMethodVNPay}, "")
	require.NoError(t, err)

	// Later price changes must not affect the stored line.
	require.NoError(t, r.DB.Model(&models.Product{}).
		Where("id = ?", product.ID).Update("price", 900_000).Error)

	reloaded, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Details, 1)
	assert.InDelta(t, 450_000, reloaded.Details[0].Price, 1e-6)
}

func TestCartService_Checkout_EmptyCart(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}

	user := seedUser(t, r, "empty", "user")

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutRequest{PaymentMethod: models.PaymentMethodCOD}, "en")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCartService_Checkout_InvalidPaymentMethod(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}

	user := seedUser(t, r, "payer", "user")

	_, err := svc.Checkout(context.Background(), user.ID, CheckoutRequest{PaymentMethod: "barter"}, "en")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCartService_Checkout_InsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "greedy", "user")
	scarce := seedProduct(t, r, "rare-orchid", 800_000, 0, 3)
	common := seedProduct(t, r, "fern", 60_000, 0, 20)

	_, err := svc.AddToCart(ctx, user.ID, common.ID, 5)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, user.ID, scarce.ID, 3)
	require.NoError(t, err)

	// Stock drops under the cart quantity before checkout.
	require.NoError(t, r.DB.Model(&models.Product{}).
		Where("id = ?", scarce.ID).Update("stock_quantity", 1).Error)

	_, err = svc.Checkout(ctx, user.ID, CheckoutRequest{PaymentMethod: models.PaymentMethodCOD}, "en")
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The whole transaction rolled back, including the fern decrement.
	assert.Equal(t, 20, productStock(t, r, common.ID))
	assert.Equal(t, 1, productStock(t, r, scarce.ID))

	items, err := svc.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCartService_Checkout_UnknownAddress(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	svc := &CartService{Repo: r}
	ctx := context.Background()

	user := seedUser(t, r, "nomad", "user")
	product := seedProduct(t, r, "cactus", 45_000, 0, 9)

	_, err := svc.AddToCart(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, user.ID, CheckoutRequest{
		AddressID:     777,
		PaymentMethod: models.PaymentMethodCOD,
	}, "en")
	require.ErrorIs(t, err, ErrNotFound)
}
