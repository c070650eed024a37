package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hanayashop/backend/internal/models"
	"github.com/hanayashop/backend/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// The in-memory database lives per connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return &repo.GormRepo{DB: db}
}

func seedUser(t *testing.T, r *repo.GormRepo, username, role string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, r.DB.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, price float64, discount, stock int) *models.Product {
	t.Helper()

	cat := &models.Category{Name: "flowers-" + name}
	require.NoError(t, r.DB.Create(cat).Error)

	product := &models.Product{
		Name:            name,
		Price:           price,
		DiscountPercent: discount,
		StockQuantity:   stock,
		CategoryID:      cat.ID,
	}
	require.NoError(t, r.DB.Create(product).Error)
	return product
}

func productStock(t *testing.T, r *repo.GormRepo, id uint) int {
	t.Helper()

	var product models.Product
	require.NoError(t, r.DB.First(&product, id).Error)
	return product.StockQuantity
}
