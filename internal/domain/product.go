package domain

// Product represents the product model
//
// swagger:model
type Product struct {
	// The ID of the product, assigned by the store
	//
	// required: true
	// min: 1
	// example: 1
	ID int64 `json:"id"`

	// The name of the product
	//
	// required: true
	// example: Scratcher
	Name string `json:"name"`

	// The maker of the product
	//
	// required: true
	// example: Codesoom
	Maker string `json:"maker"`

	// Where the product image can be fetched from
	//
	// required: false
	// example: /images/1/scratcher.png
	ImageURL string `json:"imageUrl"`

	// The price of the product
	//
	// required: true
	// min: 0
	// example: 5000
	Price int64 `json:"price"`
}

// ProductDTO is the payload accepted when creating or updating a product
//
// swagger:model
type ProductDTO struct {
	// required: true
	// example: Scratcher
	Name string `json:"name" validate:"required"`

	// required: true
	// example: Codesoom
	Maker string `json:"maker" validate:"required"`

	// required: false
	// example: /images/1/scratcher.png
	ImageURL string `json:"imageUrl" validate:"omitempty,imageurl"`

	// required: true
	// min: 0
	// example: 5000
	Price int64 `json:"price" validate:"gte=0"`
}

// NewProduct builds a Product without identity from the given payload.
func NewProduct(dto ProductDTO) *Product {
	return &Product{
		Name:     dto.Name,
		Maker:    dto.Maker,
		ImageURL: dto.ImageURL,
		Price:    dto.Price,
	}
}

// Apply copies every mutable field of source onto p. The ID is left untouched.
func (p *Product) Apply(source *Product) {
	p.Name = source.Name
	p.Maker = source.Maker
	p.ImageURL = source.ImageURL
	p.Price = source.Price
}
