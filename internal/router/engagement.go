package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *handler) SubmitContact(c *gin.Context) {
	var input models.ContactInput
	if !bindJSON(c, &input) {
		return
	}

	id, err := h.Engagement.SubmitContact(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to submit contact form")
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"id": id}))
}

func (h *handler) SubscribeNewsletter(c *gin.Context) {
	var req models.NewsletterRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.Engagement.SubscribeNewsletter(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to subscribe")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": id}))
}

// UnsubscribeNewsletter serves DELETE /newsletter?email=
func (h *handler) UnsubscribeNewsletter(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, global.FieldErrorResponse("email query parameter required", "email", "email query parameter is required", "required"))
		return
	}

	id, err := h.Engagement.UnsubscribeNewsletter(c.Request.Context(), email)
	if err != nil {
		respondError(c, err, "Failed to unsubscribe")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": id}))
}
