package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/althafr/cinetick/internal/helpers"
	"github.com/althafr/cinetick/internal/models"
)

// JWTAuthMiddleware resolves the caller's identity from the token cookie or,
// failing that, the Authorization header. A missing token is a 401, a token
// that does not verify is a 403; the two cases carry distinct reason codes.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("token")
		if err != nil || token == "" {
			auth := c.GetHeader("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if token == "" {
			helpers.AbortWithDenial(c, http.StatusUnauthorized, "Authentication required", helpers.ReasonNoToken)
			return
		}

		claims, err := helpers.ParseToken(token)
		if err != nil {
			helpers.AbortWithDenial(c, http.StatusForbidden, "Invalid or expired token", helpers.ReasonBadToken)
			return
		}

		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the given set. The denial
// names both the required roles and the caller's role for diagnostics.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			helpers.AbortWithDenial(c, http.StatusUnauthorized, "Authentication required", helpers.ReasonNoToken)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		required := make([]string, len(roles))
		for i, role := range roles {
			required[i] = string(role)
		}
		message := "Insufficient permissions. Required roles: " +
			strings.Join(required, ", ") + ". Your role: " + string(claims.Role)
		helpers.AbortWithDenial(c, http.StatusForbidden, message, helpers.ReasonForbiddenRole)
	}
}

// RequireResourceOwner rejects callers addressing another user's resource
// unless they hold an elevated role. The owner id is taken from the userId
// path parameter, or id when userId is absent.
func RequireResourceOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			helpers.AbortWithDenial(c, http.StatusUnauthorized, "Authentication required", helpers.ReasonNoToken)
			return
		}

		ownerParam := c.Param("userId")
		if ownerParam == "" {
			ownerParam = c.Param("id")
		}

		isOwner := claims.UserID.String() == ownerParam
		if !isOwner && !claims.Role.Elevated() {
			helpers.AbortWithDenial(c, http.StatusForbidden, "Access denied. You can only access your own resources.", helpers.ReasonForbiddenOwner)
			return
		}

		c.Next()
	}
}

func CurrentClaims(c *gin.Context) (*helpers.TokenClaims, bool) {
	value, exists := c.Get("claims")
	if !exists {
		return nil, false
	}
	claims, ok := value.(*helpers.TokenClaims)
	return claims, ok
}

func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := CurrentClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
