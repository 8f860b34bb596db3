package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

// ErrServiceClosed is returned by every operation once Close has been called.
var ErrServiceClosed = errors.New("product service is closed")

// ProductService is the collaborator the controller delegates to.
// Detail, update and delete return a *domain.ProductNotFoundError for unknown IDs.
type ProductService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DetailProduct(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	Close() error
}

type productService struct {
	repo     repository.ProductRepository
	eventBus *events.EventBus[any]
	logger   hclog.Logger
	closed   atomic.Bool
	once     sync.Once
}

func NewProductService(
	repo repository.ProductRepository,
	eventBus *events.EventBus[any],
	logger hclog.Logger) ProductService {
	return &productService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *productService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	s.logger.Debug("Listing products")
	if s.closed.Load() {
		return nil, ErrServiceClosed
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Unable to list products", "error", err)
		return nil, err
	}

	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	s.logger.Debug("Creating product", "name", product.Name)
	if s.closed.Load() {
		return nil, ErrServiceClosed
	}

	created := *product
	created.ID = 0
	if err := s.repo.Add(ctx, &created); err != nil {
		s.logger.Error("Unable to create product", "name", product.Name, "error", err)
		return nil, err
	}

	s.eventBus.Publish(events.ProductCreated{Product: created})
	return &created, nil
}

func (s *productService) DetailProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.logger.Debug("Getting product", "id", id)
	if s.closed.Load() {
		return nil, ErrServiceClosed
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Unable to get product", "id", id, "error", err)
		return nil, err
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, source *domain.Product) (*domain.Product, error) {
	s.logger.Debug("Updating product", "id", id)
	if s.closed.Load() {
		return nil, ErrServiceClosed
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Unable to find product to update", "id", id, "error", err)
		return nil, err
	}

	product.Apply(source)
	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Unable to update product", "id", id, "error", err)
		return nil, err
	}

	s.eventBus.Publish(events.ProductUpdated{Product: *product})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	s.logger.Debug("Deleting product", "id", id)
	if s.closed.Load() {
		return ErrServiceClosed
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Unable to delete product", "id", id, "error", err)
		return err
	}

	s.eventBus.Publish(events.ProductDeleted{ProductID: id})
	return nil
}

// Close stops the service from accepting further calls. It does not close the
// repository or the event bus, which are owned by the caller.
func (s *productService) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.logger.Info("ProductService shutdown complete.")
	})
	return nil
}
