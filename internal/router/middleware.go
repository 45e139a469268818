package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
)

const (
	identityKey    = "identity"
	adminKeyHeader = "X-Admin-Key"
)

// IdentityMiddleware resolves the caller once per request. Requests without
// credentials continue as anonymous; a bad token is rejected.
func IdentityMiddleware(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := provider.Resolve(c.Request)
		if err != nil {
			code := "invalid_token"
			if errors.Is(err, auth.ErrMalformedHeader) {
				code = "invalid_format"
			}
			c.JSON(http.StatusUnauthorized, global.FieldErrorResponse("Invalid credentials", "Authorization", err.Error(), code))
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(auth.Identity); ok {
			return identity
		}
	}
	return auth.Anonymous
}

// AdminMiddleware checks X-Admin-Key against a bcrypt hash. With no hash
// configured every admin route is forbidden.
func AdminMiddleware(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusForbidden, global.ErrorResponse("Admin access is not configured", nil))
			c.Abort()
			return
		}

		key := c.GetHeader(adminKeyHeader)
		if key == "" {
			c.JSON(http.StatusUnauthorized, global.FieldErrorResponse("Admin key required", adminKeyHeader, "header is required", "required"))
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			c.JSON(http.StatusForbidden, global.ErrorResponse("Invalid admin key", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
