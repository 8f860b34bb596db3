package repository

import (
	"context"
	"sync"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// ProductRepository stores products. Implementations assign IDs on Add and
// return a *domain.ProductNotFoundError when the requested ID does not exist.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Add(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type memoryProductRepository struct {
	products []*domain.Product
	lastID   int64
	mutex    sync.RWMutex
}

// NewMemoryProductRepository returns a repository kept in process memory,
// optionally seeded with products. Seeds without an ID are numbered after the
// highest explicit ID. A later seed reusing an ID replaces the earlier one.
func NewMemoryProductRepository(seed ...*domain.Product) ProductRepository {
	r := &memoryProductRepository{}
	for _, p := range seed {
		if p.ID > r.lastID {
			r.lastID = p.ID
		}
	}

	index := make(map[int64]int, len(seed))
	for _, p := range seed {
		stored := *p
		if stored.ID == 0 {
			r.lastID++
			stored.ID = r.lastID
		}
		if i, ok := index[stored.ID]; ok {
			r.products[i] = &stored
			continue
		}
		index[stored.ID] = len(r.products)
		r.products = append(r.products, &stored)
	}
	return r
}

func (r *memoryProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	products := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		product := *p
		products = append(products, &product)
	}
	return products, nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			product := *p
			return &product, nil
		}
	}

	return nil, domain.NewProductNotFoundError(id)
}

func (r *memoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, p := range r.products {
		if p.ID == product.ID {
			stored := *product
			r.products[i] = &stored
			return nil
		}
	}

	return domain.NewProductNotFoundError(product.ID)
}

func (r *memoryProductRepository) Add(ctx context.Context, product *domain.Product) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.lastID++
	product.ID = r.lastID

	stored := *product
	r.products = append(r.products, &stored)
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, product := range r.products {
		if product.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}

	return domain.NewProductNotFoundError(id)
}
