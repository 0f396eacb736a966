package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"catalog/internal/dto"
	"catalog/internal/models"
)

// sortColumns whitelists the sort keys accepted from the request and maps
// them to table columns. Unknown keys fall back to the name column.
var sortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"price":       "price",
	"stock":       "stock",
	"categoryId":  "category_id",
	"sku":         "sku",
	"active":      "active",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
// Opening the database with TranslateError enabled is required for the
// duplicate-sku detection in Save.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindAll retrieves one page of all products.
func (r *GORMProductRepository) FindAll(page dto.PageRequest) ([]models.Product, int64, error) {
	return r.paginate(r.db.Model(&models.Product{}), page)
}

// Search retrieves one page of products whose name or description contains
// the keyword, case-insensitively.
func (r *GORMProductRepository) Search(keyword string, page dto.PageRequest) ([]models.Product, int64, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	query := r.db.Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	return r.paginate(query, page)
}

// FindByCategory retrieves one page of products with an exact category match.
func (r *GORMProductRepository) FindByCategory(categoryID int64, page dto.PageRequest) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{}).Where("category_id = ?", categoryID)
	return r.paginate(query, page)
}

// FindByID retrieves a single product by its ID.
func (r *GORMProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w with id: %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}
	return &product, nil
}

// ExistsByID reports whether a product with the given ID exists.
func (r *GORMProductRepository) ExistsByID(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %d existence: %w", id, err)
	}
	return count > 0, nil
}

// Save inserts the product when its ID is zero and updates it otherwise.
// A unique-constraint violation on sku is reported as ErrDuplicateSKU.
func (r *GORMProductRepository) Save(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, product.SKU)
		}
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// DeleteByID removes a product by its ID. Callers are expected to have
// checked existence beforehand.
func (r *GORMProductRepository) DeleteByID(id uint) error {
	if err := r.db.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// paginate counts the query's total matches, then fetches the requested
// page. Count and Find run on separate sessions so the finishers do not
// pollute each other's statement.
func (r *GORMProductRepository) paginate(query *gorm.DB, page dto.PageRequest) ([]models.Product, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := query.Session(&gorm.Session{}).
		Order(orderClause(page.Sort)).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// orderClause translates a "field,direction" sort spec into a SQL order
// clause, defaulting to name ascending.
func orderClause(sort string) string {
	column := "name"
	direction := "asc"

	parts := strings.SplitN(sort, ",", 2)
	if mapped, ok := sortColumns[strings.TrimSpace(parts[0])]; ok {
		column = mapped
	}
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		direction = "desc"
	}
	return column + " " + direction
}
