package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

// SeedProducts inserts the sample catalog. Repeated calls add duplicates.
func (h *handler) SeedProducts(c *gin.Context) {
	inserted, err := h.Catalog.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to seed products")
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"inserted": inserted}))
}

func (h *handler) UpdateProduct(c *gin.Context) {
	var update models.ProductUpdate
	if !bindJSON(c, &update) {
		return
	}

	product, err := h.Catalog.UpdateProduct(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (h *handler) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	orderID := c.Param("id")
	if err := h.Orders.UpdateOrderStatus(c.Request.Context(), orderID, req.Status); err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": orderID, "status": req.Status}))
}

func (h *handler) ListContacts(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	contacts, err := h.Engagement.ListContacts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to get contacts")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(contacts))
}

func (h *handler) GetOrderStats(c *gin.Context) {
	stats, err := h.Orders.OrderStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get order analytics")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(stats))
}

func (h *handler) GetTopProducts(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	top, err := h.Orders.TopProducts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to get top products")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(top))
}

// GenerateAISalesReport combines order analytics with LLM insights
func (h *handler) GenerateAISalesReport(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.Orders.OrderStats(ctx)
	if err != nil {
		respondError(c, err, "Failed to fetch sales data")
		return
	}
	top, err := h.Orders.TopProducts(ctx, 0)
	if err != nil {
		respondError(c, err, "Failed to fetch sales data")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(h.Reporter.SalesReport(ctx, stats.ByStatus, top)))
}

func (h *handler) GenerateAIContactDigest(c *gin.Context) {
	ctx := c.Request.Context()

	contacts, err := h.Engagement.ListContacts(ctx, 0)
	if err != nil {
		respondError(c, err, "Failed to fetch contact data")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(h.Reporter.ContactDigest(ctx, contacts)))
}
