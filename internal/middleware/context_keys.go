package middleware

import "github.com/gin-gonic/gin"

// operatorIDKey is the key used to store the acting operator's ID in the Gin context.
// Using a custom type prevents collisions.
const operatorIDKey = contextKey("operatorID")

// GetOperatorIDFromContext retrieves the acting operator ID from the Gin context.
// It returns the operator ID and a boolean indicating if it was found.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	operatorIDVal, exists := c.Get(string(operatorIDKey))
	if !exists {
		// check in the request context as well
		if v := c.Request.Context().Value(operatorIDKey); v != nil {
			return v.(string), true
		}
		return "", false
	}

	operatorID, ok := operatorIDVal.(string)
	if !ok {
		return "", false
	}

	return operatorID, true
}
