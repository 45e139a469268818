package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/internal/service"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// ListProducts serves GET /products?category=&featured=&cursor=&page_size=
func (h *handler) ListProducts(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}

	var filter models.ProductFilter
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, global.FieldErrorResponse("Invalid query parameter", "featured", "must be true or false", "invalid_format"))
			return
		}
		filter.Featured = &featured
	}

	result, err := h.Catalog.ListProducts(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err, "Failed to get products")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(result))
}

func (h *handler) ListFeaturedProducts(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	products, err := h.Catalog.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to get featured products")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

// GetProduct retrieves a product by id, reporting the cache outcome in X-Cache
func (h *handler) GetProduct(c *gin.Context) {
	product, status, err := h.Catalog.LookupProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	if status != service.CacheDisabled {
		c.Header("X-Cache", string(status))
	}

	if product == nil {
		c.JSON(http.StatusNotFound, global.FieldErrorResponse("Product not found", "id", "No product exists with this id", "not_found"))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *handler) GetCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get categories")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(categories))
}
