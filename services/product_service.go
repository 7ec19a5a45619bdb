package services

import (
	"context"
	"math"

	"shop-backend/models"
	"shop-backend/repositories"
)

// ProductService is the Catalog collaborator surface: product reads for
// everyone, CRUD for admins.
type ProductService struct {
	store    repositories.Store
	products repositories.ProductRepository
}

func NewProductService(store repositories.Store, products repositories.ProductRepository) *ProductService {
	return &ProductService{store: store, products: products}
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, engineError(err)
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, page, limit int) (*models.PaginationResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	products, total, err := s.products.List(ctx, s.store, page, limit)
	if err != nil {
		return nil, engineError(err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return &models.PaginationResponse{
		Success: true,
		Message: "Products retrieved successfully",
		Data:    products,
		Meta: models.MetaData{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *ProductService) CheckStock(ctx context.Context, productID, quantity int) (models.StockCheck, error) {
	if quantity < 1 {
		return models.StockCheck{}, models.NewValidationError("quantity must be a positive integer")
	}
	check, err := s.products.CheckAvailable(ctx, s.store, productID, quantity)
	if err != nil {
		return models.StockCheck{}, engineError(err)
	}
	return check, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if req.Price.IsNegative() {
		return nil, models.NewValidationError("price must not be negative")
	}
	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}
	if err := s.products.Create(ctx, s.store, product); err != nil {
		return nil, engineError(err)
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, s.store, id)
	if err != nil {
		return nil, engineError(err)
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, models.NewValidationError("price must not be negative")
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, models.NewValidationError("stock must not be negative")
		}
		product.Stock = *req.Stock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.products.Update(ctx, s.store, product); err != nil {
		return nil, engineError(err)
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.products.Deactivate(ctx, s.store, id); err != nil {
		return engineError(err)
	}
	return nil
}
