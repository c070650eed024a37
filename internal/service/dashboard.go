package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hanayashop/backend/internal/cache"
	"github.com/hanayashop/backend/internal/repo"
	"github.com/hanayashop/backend/pkg/logging"
)

const dashboardCachePrefix = "dashboard:"

// DashboardService wraps the aggregate queries with an optional
// remember/forget redis cache. A nil cache disables caching.
type DashboardService struct {
	Repo     *repo.GormRepo
	Cache    *cache.Cache
	CacheTTL time.Duration
}

func (s *DashboardService) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return 5 * time.Minute
}

// remember serves the value from cache unless noCache is set, and
// stores fresh results best-effort.
func remember[T any](ctx context.Context, s *DashboardService, key string, noCache bool, fn func() (T, error)) (T, error) {
	var zero T
	fullKey := dashboardCachePrefix + key

	if !noCache {
		var cached T
		if ok, err := s.Cache.GetJSON(ctx, fullKey, &cached); err != nil {
			logging.FromContext(ctx).Warn("dashboard_cache_read_failed", "key", fullKey, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	v, err := fn()
	if err != nil {
		return zero, err
	}

	if err := s.Cache.SetJSON(ctx, fullKey, v, s.ttl()); err != nil {
		logging.FromContext(ctx).Warn("dashboard_cache_write_failed", "key", fullKey, "error", err)
	}
	return v, nil
}

func rangeKey(name string, rng repo.DateRange, extra string) string {
	key := fmt.Sprintf("%s:%s:%s", name, rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
	if extra != "" {
		key += ":" + extra
	}
	return key
}

type Summary struct {
	TotalRevenue        float64                   `json:"total_revenue"`
	OrdersByStatus      []repo.StatusCount        `json:"orders_by_status"`
	AvgFulfillmentHours float64                   `json:"avg_fulfillment_hours"`
	Cancellations       *repo.CancellationSummary `json:"cancellations"`
}

func (s *DashboardService) Summary(ctx context.Context, rng repo.DateRange, noCache bool) (*Summary, error) {
	return remember(ctx, s, rangeKey("summary", rng, ""), noCache, func() (*Summary, error) {
		revenue, err := s.Repo.TotalRevenue(ctx, rng)
		if err != nil {
			return nil, err
		}
		counts, err := s.Repo.OrderCountsByStatus(ctx, rng)
		if err != nil {
			return nil, err
		}
		fulfillment, err := s.Repo.AverageFulfillmentHours(ctx, rng)
		if err != nil {
			return nil, err
		}
		cancellations, err := s.Repo.Cancellations(ctx, rng)
		if err != nil {
			return nil, err
		}
		return &Summary{
			TotalRevenue:        revenue,
			OrdersByStatus:      counts,
			AvgFulfillmentHours: fulfillment,
			Cancellations:       cancellations,
		}, nil
	})
}

func (s *DashboardService) RevenueByDate(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.RevenuePoint, error) {
	return remember(ctx, s, rangeKey("revenue_by_date", rng, ""), noCache, func() ([]repo.RevenuePoint, error) {
		return s.Repo.RevenueByDate(ctx, rng)
	})
}

func (s *DashboardService) RevenueByCategory(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.CategoryRevenue, error) {
	return remember(ctx, s, rangeKey("revenue_by_category", rng, ""), noCache, func() ([]repo.CategoryRevenue, error) {
		return s.Repo.RevenueByCategory(ctx, rng)
	})
}

func (s *DashboardService) RevenueByPaymentMethod(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.PaymentMethodRevenue, error) {
	return remember(ctx, s, rangeKey("revenue_by_payment_method", rng, ""), noCache, func() ([]repo.PaymentMethodRevenue, error) {
		return s.Repo.RevenueByPaymentMethod(ctx, rng)
	})
}

func (s *DashboardService) OrderCountsByStatus(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.StatusCount, error) {
	return remember(ctx, s, rangeKey("orders_by_status", rng, ""), noCache, func() ([]repo.StatusCount, error) {
		return s.Repo.OrderCountsByStatus(ctx, rng)
	})
}

func (s *DashboardService) TopProducts(ctx context.Context, rng repo.DateRange, by string, limit int, noCache bool) ([]repo.TopProduct, error) {
	if by != "quantity" && by != "revenue" {
		return nil, fmt.Errorf("%w: top products sort must be quantity or revenue", ErrValidation)
	}
	key := rangeKey("top_products", rng, fmt.Sprintf("%s:%d", by, limit))
	return remember(ctx, s, key, noCache, func() ([]repo.TopProduct, error) {
		return s.Repo.TopProducts(ctx, rng, by, limit)
	})
}

func (s *DashboardService) StockLevels(ctx context.Context, threshold int, noCache bool) (*repo.StockReport, error) {
	key := fmt.Sprintf("stock_levels:%d", threshold)
	return remember(ctx, s, key, noCache, func() (*repo.StockReport, error) {
		return s.Repo.StockLevels(ctx, threshold)
	})
}

func (s *DashboardService) CustomerStats(ctx context.Context, rng repo.DateRange, noCache bool) (*repo.CustomerStats, error) {
	return remember(ctx, s, rangeKey("customers", rng, ""), noCache, func() (*repo.CustomerStats, error) {
		return s.Repo.CustomerStats(ctx, rng)
	})
}

func (s *DashboardService) Retention(ctx context.Context, rng repo.DateRange, noCache bool) (*repo.RetentionStats, error) {
	return remember(ctx, s, rangeKey("retention", rng, ""), noCache, func() (*repo.RetentionStats, error) {
		return s.Repo.Retention(ctx, rng)
	})
}

func (s *DashboardService) CategoryPerformance(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.CategoryPerformance, error) {
	return remember(ctx, s, rangeKey("category_performance", rng, ""), noCache, func() ([]repo.CategoryPerformance, error) {
		return s.Repo.CategoryPerformance(ctx, rng)
	})
}

func (s *DashboardService) ReviewRatings(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.RatingCount, error) {
	return remember(ctx, s, rangeKey("review_ratings", rng, ""), noCache, func() ([]repo.RatingCount, error) {
		return s.Repo.ReviewRatingDistribution(ctx, rng)
	})
}

func (s *DashboardService) OrderValueHistogram(ctx context.Context, rng repo.DateRange, noCache bool) ([]repo.HistogramBucket, error) {
	return remember(ctx, s, rangeKey("order_histogram", rng, ""), noCache, func() ([]repo.HistogramBucket, error) {
		return s.Repo.OrderValueHistogram(ctx, rng)
	})
}

func (s *DashboardService) Cancellations(ctx context.Context, rng repo.DateRange, noCache bool) (*repo.CancellationSummary, error) {
	return remember(ctx, s, rangeKey("cancellations", rng, ""), noCache, func() (*repo.CancellationSummary, error) {
		return s.Repo.Cancellations(ctx, rng)
	})
}

// ClearCache drops every cached dashboard entry.
func (s *DashboardService) ClearCache(ctx context.Context) (int64, error) {
	return s.Cache.DeleteByPrefix(ctx, dashboardCachePrefix)
}
