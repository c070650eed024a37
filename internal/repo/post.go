package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
)

func (r *GormRepo) GetPosts(ctx context.Context, publishedOnly bool, limit, offset int) (int64, []models.Post, error) {
	q := r.DB.WithContext(ctx).Model(&models.Post{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var posts []models.Post
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		return 0, nil, err
	}
	return total, posts, nil
}

func (r *GormRepo) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormRepo) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := r.DB.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *GormRepo) UpdatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := r.DB.WithContext(ctx).Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (r *GormRepo) DeletePost(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
