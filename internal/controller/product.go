// Package controller exposes product operations to transports. Every call is
// forwarded once to the ProductService, and results and errors are returned
// unchanged.
package controller

import (
	"context"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/service"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(ps service.ProductService) *ProductController {
	return &ProductController{productService: ps}
}

func (c *ProductController) List(ctx context.Context) ([]*domain.Product, error) {
	return c.productService.ListProducts(ctx)
}

func (c *ProductController) Create(ctx context.Context, dto domain.ProductDTO) (*domain.Product, error) {
	return c.productService.CreateProduct(ctx, domain.NewProduct(dto))
}

// Detail returns a *domain.ProductNotFoundError from the service as is.
func (c *ProductController) Detail(ctx context.Context, id int64) (*domain.Product, error) {
	return c.productService.DetailProduct(ctx, id)
}

func (c *ProductController) Update(ctx context.Context, id int64, dto domain.ProductDTO) (*domain.Product, error) {
	return c.productService.UpdateProduct(ctx, id, domain.NewProduct(dto))
}

func (c *ProductController) Delete(ctx context.Context, id int64) error {
	return c.productService.DeleteProduct(ctx, id)
}
