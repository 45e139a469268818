package router

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

func (h *handler) HealthCheck(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		log.Printf("Health check failed: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

// respondError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a 500 with message.
func respondError(c *gin.Context, err error, message string) {
	var failure *global.ValidationFailure
	var unavailable *global.ProductUnavailableError

	switch {
	case errors.As(err, &failure):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Validation failed", failure.Errors))
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, global.FieldErrorResponse("Product unavailable", "product_id", unavailable.Error(), "product_unavailable"))
	case errors.Is(err, global.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Authentication required", nil))
	case errors.Is(err, global.ErrNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Resource not found", nil))
	default:
		log.Printf("Error: %s: %v", message, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse(message, nil))
	}
}

// bindJSON decodes the body into obj and writes a 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		if verr := global.Validate(obj); verr != nil {
			respondError(c, verr, "Invalid request")
			return false
		}
	}
	c.JSON(http.StatusBadRequest, global.FieldErrorResponse("Invalid JSON format", "body", err.Error(), "json_parse_error"))
	return false
}

// queryInt reads an optional integer query parameter. It writes a 400 and
// returns ok=false when the value is not a number.
func queryInt(c *gin.Context, key string) (value int, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.FieldErrorResponse("Invalid query parameter", key, "must be an integer", "invalid_format"))
		return 0, false
	}
	return value, true
}

// pageRequest reads the cursor and page_size query parameters.
func pageRequest(c *gin.Context) (models.PageRequest, bool) {
	size, ok := queryInt(c, "page_size")
	if !ok {
		return models.PageRequest{}, false
	}
	return models.PageRequest{Cursor: c.Query("cursor"), PageSize: size}, true
}
