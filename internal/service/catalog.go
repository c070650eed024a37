package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/internal/search"
	"github.com/hanayashop/backend/pkg/logging"
)

type CatalogService struct {
	Repo *repo.GormRepo
	ES   *elasticsearch.Client
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, categoryID uint, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.GetProducts(ctx, categoryID, offset, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := validateProduct(prod.Price, prod.DiscountPercent, prod.StockQuantity); err != nil {
		return nil, err
	}
	if prod.Name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}

	created, err := s.Repo.CreateProduct(ctx, prod)
	if err != nil {
		return nil, err
	}
	s.index(ctx, created)
	return created, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, patch repo.ProductPatch) (*models.Product, error) {
	price := 0.0
	if patch.Price != nil {
		price = *patch.Price
	}
	discount := 0
	if patch.DiscountPercent != nil {
		discount = *patch.DiscountPercent
	}
	stock := 0
	if patch.StockQuantity != nil {
		stock = *patch.StockQuantity
	}
	if err := validateProduct(price, discount, stock); err != nil {
		return nil, err
	}

	updated, err := s.Repo.PatchProduct(ctx, id, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	s.index(ctx, updated)
	return updated, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if s.ES != nil {
		if err := search.DeleteProduct(ctx, s.ES, id); err != nil {
			logging.FromContext(ctx).Warn("es_delete_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// SearchProducts uses Elasticsearch when configured and falls back
// to a LIKE query otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	if q == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}

	if s.ES != nil {
		total, items, err := search.Search(ctx, s.ES, q, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("es_search_failed, falling back to db", "error", err)
	}

	return s.Repo.SearchProductsLike(ctx, q, offset, limit)
}

func (s *CatalogService) GetReviews(ctx context.Context, productID uint, offset, limit int) (int64, []models.Review, error) {
	return s.Repo.GetProductReviews(ctx, productID, limit, offset)
}

func (s *CatalogService) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, review.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, review.ProductID)
		}
		return nil, err
	}
	return s.Repo.CreateReview(ctx, review)
}

func (s *CatalogService) index(ctx context.Context, prod *models.Product) {
	if s.ES == nil {
		return
	}
	if err := search.IndexProduct(ctx, s.ES, prod); err != nil {
		logging.FromContext(ctx).Warn("es_index_failed", "product_id", prod.ID, "error", err)
	}
}

func validateProduct(price float64, discount, stock int) error {
	if price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if discount < 0 || discount > 100 {
		return fmt.Errorf("%w: discount_percent must be between 0 and 100", ErrValidation)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock_quantity must be >= 0", ErrValidation)
	}
	return nil
}
