package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/notify"
	"github.com/hanayashop/backend/internal/repo"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier *notify.Notifier
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	return order, nil
}

// GetUserOrder fetches an order and checks ownership.
func (s *OrderService) GetUserOrder(ctx context.Context, id, userID uint) (*models.Order, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uint, limit, offset int) (int64, []models.Order, error) {
	return s.Repo.ListOrders(ctx, userID, limit, offset)
}

func (s *OrderService) ListAllOrders(ctx context.Context, status models.OrderStatus, limit, offset int) (int64, []models.Order, error) {
	if status != "" && !status.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListAllOrders(ctx, status, limit, offset)
}

// Confirm moves pending→processing. Confirming an order already in
// processing is an idempotent success; side effects are not re-fired.
func (s *OrderService) Confirm(ctx context.Context, orderID uint, locale string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusProcessing {
		return order, nil
	}

	return s.transition(ctx, order, models.OrderStatusProcessing, locale)
}

// Ship moves processing→shipped.
func (s *OrderService) Ship(ctx context.Context, orderID uint, locale string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, models.OrderStatusShipped, locale)
}

// Receive is the customer confirming delivery: shipped→completed.
// Only the order's owner may call it.
func (s *OrderService) Receive(ctx context.Context, orderID, userID uint, locale string) (*models.Order, error) {
	order, err := s.GetUserOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	order, err = s.transition(ctx, order, models.OrderStatusCompleted, locale)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel cancels a pending or processing order and restores each
// line's quantity to its product's stock inside the same transaction.
// A zero userID means an admin cancellation (no ownership check).
func (s *OrderService) Cancel(ctx context.Context, orderID, userID uint, locale string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && order.UserID != userID {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}

	if !order.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidTransition, order.Status)
	}

	txErr := s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		for _, detail := range order.Details {
			if detail.Quantity == 0 {
				continue
			}
			if err := tx.AdjustStock(ctx, detail.ProductID, detail.Quantity); err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusCancelled
		return tx.SaveOrder(ctx, order)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.notify(ctx, order, locale)
	return order, nil
}

// transition validates the move against the status table, persists it
// and dispatches notifications.
func (s *OrderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, locale string) (*models.Order, error) {
	if !order.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move %s order to %s", ErrInvalidTransition, order.Status, to)
	}

	order.Status = to
	if to == models.OrderStatusCompleted {
		now := time.Now().UTC()
		order.CompletedAt = &now
	}

	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.notify(ctx, order, locale)
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, order *models.Order, locale string) {
	if s.Notifier != nil {
		s.Notifier.OrderStatusChanged(ctx, order, locale)
	}
}
