package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *handler) GetCurrentUser(c *gin.Context) {
	user, err := h.Account.GetCurrentUser(c.Request.Context(), identityFrom(c))
	if err != nil {
		respondError(c, err, "Failed to get user")
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("User profile not found", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user))
}

func (h *handler) CreateOrUpdateUser(c *gin.Context) {
	var input models.UserInput
	if !bindJSON(c, &input) {
		return
	}

	id, err := h.Account.CreateOrUpdateUser(c.Request.Context(), identityFrom(c), input)
	if err != nil {
		respondError(c, err, "Failed to save user")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": id}))
}

func (h *handler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}

	id, err := h.Account.UpdateProfile(c.Request.Context(), identityFrom(c), update)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"id": id}))
}
