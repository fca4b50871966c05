package middleware

import (
	"makazi/errors"
	"makazi/response"
	"makazi/services"
	"makazi/types"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClaims   = "claims"
)

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return h
	}
	return c.Query("token")
}

// AuthMiddleware requires a valid access token and, when roles are given, one of them.
func AuthMiddleware(tokens *services.TokenService, roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(c.Request.Context(), tokenString)
		if err != nil {
			_ = c.Error(err)
			response.AppError(c, err)
			c.Abort()
			return
		}

		if !hasRole(claims.UserInfo.Role, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets everyone through.
func OptionalAuth(tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := tokens.ParseToken(c.Request.Context(), tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *services.Claims) {
	c.Set(ContextUserID, claims.UserInfo.UserId)
	c.Set(ContextUserRole, claims.UserInfo.Role)
	c.Set(ContextClaims, claims)
}

// RoleMiddleware checks the role stored by AuthMiddleware.
func RoleMiddleware(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextUserRole)
		if !exists {
			response.Unauthorized(c)
			c.Abort()
			return
		}

		role, _ := userRole.(types.Role)
		if !hasRole(role, roles) {
			response.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func hasRole(role types.Role, roles []types.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentActor returns the authenticated caller, or nil.
func CurrentActor(c *gin.Context) *services.Actor {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return nil
	}
	role, _ := c.Get(ContextUserRole)
	userID, _ := id.(uint)
	userRole, _ := role.(types.Role)
	return &services.Actor{ID: userID, Role: userRole}
}

func CurrentClaims(c *gin.Context) *services.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}

// ErrorHandler renders errors attached with c.Error when the handler wrote nothing.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		if errors.IsAppError(err) {
			response.AppError(c, err)
			return
		}
		response.ServerError(c)
	}
}
