package models

import (
	"time"

	"github.com/shopspring/decimal"

	"catalog/internal/validation"
)

var validate = validation.New()

// Product represents a single product row in the catalog.
// CreatedAt is set once by GORM on insert; UpdatedAt refreshes on every save.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null;index:idx_products_name" validate:"required"`
	Description string          `json:"description" gorm:"type:varchar(1000);not null" validate:"required,max=1000"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"required,gt=0"`
	Stock       int             `json:"stock" gorm:"not null" validate:"gte=0"`
	CategoryID  *int64          `json:"categoryId" gorm:"column:category_id;index:idx_products_category;index:idx_products_active_category,priority:2"`
	SKU         string          `json:"sku" gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku" validate:"required,max=50"`
	Active      bool            `json:"active" gorm:"not null;index:idx_products_active;index:idx_products_active_category,priority:1"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TableName overrides the default table name.
func (Product) TableName() string {
	return "products"
}

// Validate checks the record against the schema constraints. It is applied
// before every write, independent of the storage binding.
func (p *Product) Validate() error {
	return validate.Struct(p)
}
