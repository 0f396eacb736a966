package services

import (
	"fmt"
	"log"

	"catalog/internal/dto"
	"catalog/internal/mapper"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// EventPublisher pushes product lifecycle events to the message broker.
type EventPublisher interface {
	PublishProductEvent(event string, payload interface{}) error
}

// ProductService handles business logic related to catalog products.
// Each method is one-shot: it performs at most one read-then-write pair
// against the repository and holds no state between calls.
type ProductService struct {
	repo   repositories.ProductRepository
	mapper *mapper.ProductMapper
	events EventPublisher // nil disables event publishing
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, productMapper *mapper.ProductMapper, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		mapper: productMapper,
		events: events,
	}
}

// ListProducts retrieves one page of all products.
func (s *ProductService) ListProducts(page dto.PageRequest) (*dto.ProductPage, error) {
	products, total, err := s.repo.FindAll(page)
	if err != nil {
		return nil, err
	}
	return s.toPage(products, page, total), nil
}

// SearchProducts retrieves one page of products matching the keyword on
// name or description. Blank keywords are the handler's responsibility to
// route to ListProducts instead.
func (s *ProductService) SearchProducts(keyword string, page dto.PageRequest) (*dto.ProductPage, error) {
	products, total, err := s.repo.Search(keyword, page)
	if err != nil {
		return nil, err
	}
	return s.toPage(products, page, total), nil
}

// ListProductsByCategory retrieves one page of products in the category.
func (s *ProductService) ListProductsByCategory(categoryID int64, page dto.PageRequest) (*dto.ProductPage, error) {
	products, total, err := s.repo.FindByCategory(categoryID, page)
	if err != nil {
		return nil, err
	}
	return s.toPage(products, page, total), nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id uint) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToResponse(product), nil
}

// CreateProduct creates a new product. A sku collision propagates as the
// repository's duplicate-key error, untranslated.
func (s *ProductService) CreateProduct(req *dto.ProductCreateRequest) (*dto.ProductResponse, error) {
	product := s.mapper.ToModel(req)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	response := s.mapper.ToResponse(product)
	s.publish("product.created", response)
	return response, nil
}

// UpdateProduct applies an update request to an existing product. Name,
// description and price always overwrite; stock, categoryId, sku and active
// only when present in the request.
func (s *ProductService) UpdateProduct(id uint, req *dto.ProductUpdateRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	s.mapper.ApplyUpdate(req, product)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(product); err != nil {
		return nil, err
	}
	response := s.mapper.ToResponse(product)
	s.publish("product.updated", response)
	return response, nil
}

// DeleteProduct removes a product by its ID. Existence is checked first so
// a miss surfaces as a plain not-found instead of an ambiguous store error.
func (s *ProductService) DeleteProduct(id uint) error {
	exists, err := s.repo.ExistsByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w with id: %d", repositories.ErrNotFound, id)
	}
	if err := s.repo.DeleteByID(id); err != nil {
		return err
	}
	s.publish("product.deleted", &dto.ProductResponse{ID: id})
	return nil
}

// publish sends a lifecycle event when a publisher is configured. Publish
// failures are logged and never fail the operation.
func (s *ProductService) publish(event string, product *dto.ProductResponse) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishProductEvent(event, product); err != nil {
		log.Printf("Failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}

// toPage maps each record to its response shape and wraps the slice in the
// page envelope.
func (s *ProductService) toPage(products []models.Product, page dto.PageRequest, total int64) *dto.ProductPage {
	content := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		content = append(content, *s.mapper.ToResponse(&products[i]))
	}
	return dto.NewProductPage(content, page, total)
}
