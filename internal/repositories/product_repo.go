package repositories

import (
	"errors"

	"catalog/internal/dto"
	"catalog/internal/models"
)

var (
	// ErrNotFound signals that an id-based lookup missed.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateSKU signals a unique-constraint violation on the sku column.
	ErrDuplicateSKU = errors.New("duplicate product sku")
)

// ProductRepository defines the interface for product data access.
// Paginated methods return the matching slice plus the total element count.
type ProductRepository interface {
	FindAll(page dto.PageRequest) ([]models.Product, int64, error)
	Search(keyword string, page dto.PageRequest) ([]models.Product, int64, error)
	FindByCategory(categoryID int64, page dto.PageRequest) ([]models.Product, int64, error)
	FindByID(id uint) (*models.Product, error)
	ExistsByID(id uint) (bool, error)
	Save(product *models.Product) error
	DeleteByID(id uint) error
}
