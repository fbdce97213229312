package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductReader using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, visible or not
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindVisible finds one page of catalog-visible products matching q
func (r *GormProductRepository) FindVisible(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, error) {
	page := q.Page.Normalized()
	query := matching(r.visible(ctx), q).
		Clauses(resolveOrdering(q.SortBy, q.SortDir, productSortColumns, "created_at").clause()).
		Offset(page.Offset()).
		Limit(page.Size)

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// CountVisible counts catalog-visible products matching q
func (r *GormProductRepository) CountVisible(ctx context.Context, q catalog.ProductQuery) (int64, error) {
	var count int64
	if err := matching(r.visible(ctx), q).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindVisibleByCategory finds catalog-visible products of a category, newest first
func (r *GormProductRepository) FindVisibleByCategory(ctx context.Context, category string, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.visible(ctx).
		Where("category = ?", category).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// ListCategories returns the category of every product, possibly repeated
func (r *GormProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Distinct().
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormProductRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("show_in_catalog = ?", true)
}

// matching applies the category filter and a case-insensitive name search
func matching(query *gorm.DB, q catalog.ProductQuery) *gorm.DB {
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}
