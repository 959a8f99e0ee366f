package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/orderflow/internal/http/response"
	"github.com/storefront/orderflow/internal/services"
)

type ProductHandler struct {
	catalog services.CatalogService
}

func NewProductHandler(catalog services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// GET /products/:product_id
func (ph *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}

	product, err := ph.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	response.RespondOK(c, product)
}

// GET /products?category=drinks
func (ph *ProductHandler) ListByCategory(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		response.RespondError(c, http.StatusBadRequest, "category_required", nil)
		return
	}

	products, err := ph.catalog.ListByCategory(c.Request.Context(), category)
	if err != nil {
		response.RespondMapped(c, err)
		return
	}
	response.RespondOK(c, products)
}
