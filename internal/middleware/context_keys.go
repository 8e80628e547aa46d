package middleware

import "github.com/gin-gonic/gin"

// ownerIDKey is the key used to store the owner a request acts for.
const ownerIDKey = contextKey("ownerID")

// OwnerContext resolves the owner ID from the route parameter or the query
// string and stores it for later middleware. Handlers reading the owner from
// a JSON body call SetOwnerID themselves.
func OwnerContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID := c.Param("ownerId")
		if ownerID == "" {
			ownerID = c.Query("ownerId")
		}
		if ownerID != "" {
			SetOwnerID(c, ownerID)
		}
		c.Next()
	}
}

// SetOwnerID records the owner a request acts for.
func SetOwnerID(c *gin.Context, ownerID string) {
	c.Set(string(ownerIDKey), ownerID)
}

// GetOwnerIDFromContext retrieves the owner ID from the Gin context.
// It returns the owner ID and a boolean indicating if it was found.
func GetOwnerIDFromContext(c *gin.Context) (string, bool) {
	ownerIDVal, exists := c.Get(string(ownerIDKey))
	if !exists {
		return "", false
	}

	ownerID, ok := ownerIDVal.(string)
	if !ok || ownerID == "" {
		return "", false
	}

	return ownerID, true
}
