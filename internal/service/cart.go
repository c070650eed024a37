package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/notify"
	"github.com/hanayashop/backend/internal/repo"
)

type CartService struct {
	Repo     *repo.GormRepo
	Notifier *notify.Notifier
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.GetCartItems(ctx, userID)
}

func (s *CartService) AddToCart(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("%w: only %d left of %q", ErrInsufficientStock, product.StockQuantity, product.Name)
	}

	return s.Repo.AddToCart(ctx, userID, productID, quantity)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	if err := s.Repo.RemoveCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
		}
		return err
	}
	return nil
}

type CheckoutRequest struct {
	AddressID     uint   `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
	Message       string `json:"message"`
}

// Checkout turns the user's cart into a pending order: snapshots the
// discounted unit price into each line, decrements stock, creates the
// payment row and clears the cart, all in one transaction.
func (s *CartService) Checkout(ctx context.Context, userID uint, req CheckoutRequest, locale string) (*models.Order, error) {
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}

	var order *models.Order

	txErr := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		items, err := tx.GetCartItems(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		if req.AddressID != 0 {
			if _, err := tx.GetAddress(ctx, userID, req.AddressID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: address %d", ErrNotFound, req.AddressID)
				}
				return err
			}
		}

		var total float64
		details := make([]models.OrderDetail, 0, len(items))
		for _, item := range items {
			product, err := tx.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d", ErrNotFound, item.ProductID)
				}
				return err
			}
			if product.StockQuantity < item.Quantity {
				return fmt.Errorf("%w: only %d left of %q", ErrInsufficientStock, product.StockQuantity, product.Name)
			}
			if err := tx.AdjustStock(ctx, product.ID, -item.Quantity); err != nil {
				return err
			}

			price := product.DiscountedPrice()
			total += price * float64(item.Quantity)
			details = append(details, models.OrderDetail{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     price,
			})
		}

		order = &models.Order{
			UserID:     userID,
			AddressID:  req.AddressID,
			Status:     models.OrderStatusPending,
			TotalPrice: total,
			Message:    req.Message,
			Details:    details,
		}
		if _, err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		if err := tx.CreatePayment(ctx, &models.Payment{
			OrderID:       order.ID,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: models.PaymentStatusPending,
			TransactionID: uuid.NewString(),
		}); err != nil {
			return err
		}

		return tx.ClearCart(ctx, userID)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.Notifier != nil {
		s.Notifier.OrderStatusChanged(ctx, order, locale)
	}
	return order, nil
}
