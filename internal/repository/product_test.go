package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// exerciseRepository runs the behaviour every ProductRepository must share.
func exerciseRepository(t *testing.T, repo ProductRepository) {
	ctx := context.Background()

	t.Run("empty store lists nothing", func(t *testing.T) {
		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	first := &domain.Product{Name: "Scratcher", Maker: "Codesoom", ImageURL: "/images/1/a.png", Price: 5000}
	second := &domain.Product{Name: "Tower", Maker: "Catland", Price: 12000}

	t.Run("add assigns increasing ids", func(t *testing.T) {
		require.NoError(t, repo.Add(ctx, first))
		require.NoError(t, repo.Add(ctx, second))

		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)

		products, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*domain.Product{first, second}, products)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		updated := &domain.Product{ID: first.ID, Name: "updatedScratcher", Maker: "updatedCodesoom", Price: 10000}
		require.NoError(t, repo.Update(ctx, updated))

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("delete removes product", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))

		_, err := repo.GetByID(ctx, second.ID)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("missing ids report not found", func(t *testing.T) {
		const missing = int64(1000)

		_, err := repo.GetByID(ctx, missing)
		assertNotFound(t, err, missing)

		err = repo.Update(ctx, &domain.Product{ID: missing, Name: "x", Maker: "y"})
		assertNotFound(t, err, missing)

		err = repo.Delete(ctx, missing)
		assertNotFound(t, err, missing)
	})
}

func assertNotFound(t *testing.T, err error, id int64) {
	t.Helper()

	var nf *domain.ProductNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, id, nf.ID)
}

func TestMemoryProductRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryProductRepository())
}

func TestMemoryProductRepositorySeed(t *testing.T) {
	repo := NewMemoryProductRepository(
		&domain.Product{Name: "Latte", Maker: "Cafe", Price: 245},
		&domain.Product{ID: 10, Name: "Espresso", Maker: "Cafe", Price: 199},
	)

	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(11), products[0].ID)
	assert.Equal(t, int64(10), products[1].ID)

	next := &domain.Product{Name: "Mocha", Maker: "Cafe", Price: 300}
	require.NoError(t, repo.Add(context.Background(), next))
	assert.Equal(t, int64(12), next.ID)
}

func TestMemoryProductRepositorySeedIDsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryProductRepository(
		&domain.Product{Name: "a"},
		&domain.Product{ID: 1, Name: "b"},
	)

	products, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(2), products[0].ID)
	assert.Equal(t, int64(1), products[1].ID)

	require.NoError(t, repo.Delete(ctx, 1))

	_, err = repo.GetByID(ctx, 1)
	assertNotFound(t, err, 1)

	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestMemoryProductRepositorySeedDuplicateIDReplaces(t *testing.T) {
	repo := NewMemoryProductRepository(
		&domain.Product{ID: 4, Name: "old"},
		&domain.Product{ID: 4, Name: "new"},
	)

	products, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "new", products[0].Name)
}

func TestMemoryProductRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryProductRepository()
	ctx := context.Background()

	p := &domain.Product{Name: "Latte", Maker: "Cafe", Price: 245}
	require.NoError(t, repo.Add(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Latte", again.Name)
}

func TestSQLProductRepositorySQLite(t *testing.T) {
	ctx := context.Background()

	db, err := OpenSQL(ctx, DriverSQLite, filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLProductRepository(ctx, db, DriverSQLite)
	require.NoError(t, err)

	exerciseRepository(t, repo)
}

func TestOpenSQLRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQL(context.Background(), "oracle", "")
	assert.EqualError(t, err, "unsupported database driver: oracle")
}
