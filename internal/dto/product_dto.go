package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCreateRequest is the request body for creating a product.
// Stock and Active are optional; the mapper fills their defaults (0, true)
// when they are absent from the body.
type ProductCreateRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required,max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	Stock       *int            `json:"stock" validate:"omitnil,gte=0"`
	CategoryID  *int64          `json:"categoryId"`
	SKU         string          `json:"sku" validate:"required,max=50"`
	Active      *bool           `json:"active"`
}

// ProductUpdateRequest is the request body for updating a product.
// Name, Description and Price always replace the stored values; Stock,
// CategoryID, SKU and Active are only applied when present in the body.
type ProductUpdateRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required,max=1000"`
	Price       decimal.Decimal `json:"price" validate:"required,gt=0"`
	Stock       *int            `json:"stock" validate:"omitnil,gte=0"`
	CategoryID  *int64          `json:"categoryId"`
	SKU         *string         `json:"sku" validate:"omitnil,required,max=50"`
	Active      *bool           `json:"active"`
}

// ProductResponse is the wire representation of a product, audit
// timestamps included.
type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *int64          `json:"categoryId"`
	SKU         string          `json:"sku"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
