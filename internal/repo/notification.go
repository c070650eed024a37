package repo

import (
	"context"
	"time"

	"github.com/hanayashop/backend/internal/models"
)

func (r *GormRepo) CreateNotifications(ctx context.Context, notes []models.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&notes).Error
}

func (r *GormRepo) GetNotifications(ctx context.Context, userID uint, limit, offset int) (int64, []models.Notification, error) {
	q := r.DB.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var notes []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notes).Error; err != nil {
		return 0, nil, err
	}
	return total, notes, nil
}

func (r *GormRepo) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read_at", &now).Error
}
