package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *handler) GetCart(c *gin.Context) {
	view, err := h.Cart.GetCart(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err, "Failed to get cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(view))
}

func (h *handler) GetCartItems(c *gin.Context) {
	lines, err := h.Cart.GetCartItems(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err, "Failed to get cart items")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(lines))
}

func (h *handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.Cart.AddToCart(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"id": id}))
}

// UpdateCartItem sets the quantity of a line; zero or less removes it
func (h *handler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	itemID := c.Param("id")
	if err := h.Cart.UpdateCartItemQuantity(c.Request.Context(), identityFrom(c), itemID, *req.Quantity); err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": itemID}))
}

func (h *handler) RemoveFromCart(c *gin.Context) {
	itemID := c.Param("id")
	if err := h.Cart.RemoveFromCart(c.Request.Context(), identityFrom(c), itemID); err != nil {
		respondError(c, err, "Failed to remove cart item")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": itemID}))
}

func (h *handler) ClearCart(c *gin.Context) {
	deleted, err := h.Cart.ClearCart(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Cart cleared", "deleted": deleted}))
}
