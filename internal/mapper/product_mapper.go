package mapper

import (
	"catalog/internal/dto"
	"catalog/internal/models"
)

// ProductMapper converts between the wire-facing DTOs and the stored record.
// All methods are pure and nil-safe.
type ProductMapper struct{}

// NewProductMapper creates a new ProductMapper.
func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

// ToModel builds a new record from a create request. ID and the audit
// timestamps are left unset for the store to assign. Stock defaults to 0
// and Active to true when the request fields are absent.
func (m *ProductMapper) ToModel(req *dto.ProductCreateRequest) *models.Product {
	if req == nil {
		return nil
	}
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		SKU:         req.SKU,
		Active:      true,
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	return product
}

// ToResponse copies every field of a record, timestamps included.
func (m *ProductMapper) ToResponse(product *models.Product) *dto.ProductResponse {
	if product == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		CategoryID:  product.CategoryID,
		SKU:         product.SKU,
		Active:      product.Active,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// ApplyUpdate overwrites an existing record with data from an update
// request, preserving ID and CreatedAt. Name, Description and Price are
// always replaced; Stock, CategoryID, SKU and Active only when present in
// the request.
func (m *ProductMapper) ApplyUpdate(req *dto.ProductUpdateRequest, product *models.Product) {
	if req == nil || product == nil {
		return
	}
	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price

	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
}
