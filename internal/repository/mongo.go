package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

const (
	productCollectionName = "products"
	counterCollectionName = "counters"
)

// productDocument is the stored shape of a product. Mongo has no
// auto-increment, so IDs come from a sequence kept in the counters collection.
type productDocument struct {
	ID       int64  `bson:"_id"`
	Name     string `bson:"name"`
	Maker    string `bson:"maker"`
	ImageURL string `bson:"image_url"`
	Price    int64  `bson:"price"`
}

func toDocument(p *domain.Product) productDocument {
	return productDocument{
		ID:       p.ID,
		Name:     p.Name,
		Maker:    p.Maker,
		ImageURL: p.ImageURL,
		Price:    p.Price,
	}
}

func (d productDocument) toDomain() *domain.Product {
	return &domain.Product{
		ID:       d.ID,
		Name:     d.Name,
		Maker:    d.Maker,
		ImageURL: d.ImageURL,
		Price:    d.Price,
	}
}

type mongoProductRepository struct {
	products *mongo.Collection
	counters *mongo.Collection
}

// ConnectMongo establishes a client connection and pings the primary.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		products: db.Collection(productCollectionName),
		counters: db.Collection(counterCollectionName),
	}
}

func (r *mongoProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	cursor, err := r.products.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toDomain())
	}
	return products, nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var doc productDocument
	err := r.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NewProductNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoProductRepository) Update(ctx context.Context, product *domain.Product) error {
	update := bson.M{
		"$set": bson.M{
			"name":      product.Name,
			"maker":     product.Maker,
			"image_url": product.ImageURL,
			"price":     product.Price,
		},
	}

	result, err := r.products.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.NewProductNotFoundError(product.ID)
	}
	return nil
}

func (r *mongoProductRepository) Add(ctx context.Context, product *domain.Product) error {
	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	product.ID = id

	if _, err := r.products.InsertOne(ctx, toDocument(product)); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.NewProductNotFoundError(id)
	}
	return nil
}

func (r *mongoProductRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productCollectionName},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate product id: %w", err)
	}

	return counter.Seq, nil
}
