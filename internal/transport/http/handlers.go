package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/controller"
	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type ProductHandler struct {
	controller *controller.ProductController
	logger     hclog.Logger
}

func NewProductHandler(pc *controller.ProductController, log hclog.Logger) *ProductHandler {
	return &ProductHandler{
		controller: pc,
		logger:     log,
	}
}

// ListProducts handles GET /products
//
// swagger:route GET /products products listProducts
//
// Returns a list of products.
//
// Responses:
//
//	200: productsResponse
//	500: errorResponse
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.controller.List(r.Context())
	if err != nil {
		h.logger.Error("Error listing products", "error", err)
		writeError(w, http.StatusInternalServerError, "Error listing products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// CreateProduct handles POST /products
//
// swagger:route POST /products products createProduct
//
// Creates a new product.
//
// Responses:
//
//	201: productResponse
//	400: errorResponse
//	422: validationErrorResponse
//	500: errorResponse
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	dto, ok := productFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	product, err := h.controller.Create(r.Context(), dto)
	if err != nil {
		h.logger.Error("Error creating product", "error", err)
		writeError(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// GetProductByID handles GET /products/{id}
//
// swagger:route GET /products/{id} products getProductByID
//
// Returns a product by ID.
//
// Responses:
//
//	200: productResponse
//	400: errorResponse
//	404: errorResponse
func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.controller.Detail(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Error getting product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct handles PUT and PATCH /products/{id}
//
// swagger:route PUT /products/{id} products updateProduct
//
// Updates an existing product.
//
// Responses:
//
//	200: productResponse
//	400: errorResponse
//	404: errorResponse
//	422: validationErrorResponse
//	500: errorResponse
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	dto, ok := productFromContext(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	product, err := h.controller.Update(r.Context(), id, dto)
	if err != nil {
		h.writeServiceError(w, err, "Error updating product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
//
// swagger:route DELETE /products/{id} products deleteProduct
//
// Deletes a product.
//
// Responses:
//
//	204: noContentResponse
//	404: errorResponse
//	500: errorResponse
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.controller.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "Error deleting product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError maps NotFound to 404 and everything else to 500
func (h *ProductHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	var notFound *domain.ProductNotFoundError
	if errors.As(err, &notFound) {
		writeError(w, http.StatusNotFound, notFound.Error())
		return
	}

	h.logger.Error(message, "error", err)
	writeError(w, http.StatusInternalServerError, message)
}

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}
