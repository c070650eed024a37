package repo

import (
	"context"

	"github.com/hanayashop/backend/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.DB.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *GormRepo) GetProductReviews(ctx context.Context, productID uint, limit, offset int) (int64, []models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var reviews []models.Review
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reviews).Error; err != nil {
		return 0, nil, err
	}
	return total, reviews, nil
}
