package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classward/test-delivery-service/internal/config"
	"github.com/classward/test-delivery-service/internal/models"
)

const authContextKey = "auth_context"

// CasdoorAuthMiddleware validates Casdoor-issued tokens and resolves them to
// the tenant-scoped identity every service operation requires.
type CasdoorAuthMiddleware struct {
	client *casdoorsdk.Client
	config config.CasdoorConfig
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuthMiddleware{
		client: client,
		config: cfg,
	}
}

// AuthMiddleware authenticates the request and stores the resolved
// AuthContext and role in the gin context.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "authorization header missing",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		scope, role, err := cam.scopeFromClaims(claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: err.Error(),
			})
			c.Abort()
			return
		}

		c.Set(authContextKey, scope)
		c.Set("user_id", scope.UserID)
		c.Set("user_role", role)

		c.Next()
	}
}

// RequireRoleMiddleware gates a route group on role. Admin passes every gate.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "user role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "invalid user role format",
			})
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if role == required || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("insufficient permissions, required role: %v", requiredRoles),
		})
		c.Abort()
	}
}

// scopeFromClaims maps token claims to the tenant-scoped identity. Tenant and
// organisation ride in the Casdoor user properties.
func (cam *CasdoorAuthMiddleware) scopeFromClaims(claims *casdoorsdk.Claims) (models.AuthContext, models.UserRole, error) {
	userID := claims.Id
	if userID == "" {
		return models.AuthContext{}, "", fmt.Errorf("invalid user ID in token")
	}

	tenantID, err := uuid.Parse(claims.User.Properties["tenant_id"])
	if err != nil {
		return models.AuthContext{}, "", fmt.Errorf("invalid tenant_id in token")
	}
	organisationID, err := uuid.Parse(claims.User.Properties["organisation_id"])
	if err != nil {
		return models.AuthContext{}, "", fmt.Errorf("invalid organisation_id in token")
	}

	scope := models.AuthContext{
		TenantID:       tenantID,
		OrganisationID: organisationID,
		UserID:         userID,
	}
	return scope, mapCasdoorRole(claims.User.Type), nil
}

func mapCasdoorRole(casdoorType string) models.UserRole {
	switch strings.ToLower(casdoorType) {
	case "admin", "administrator":
		return models.RoleAdmin
	case "teacher", "instructor", "educator":
		return models.RoleTeacher
	case "reviewer", "grader", "proctor":
		return models.RoleReviewer
	default:
		return models.RoleStudent
	}
}

// GetAuthContext extracts the resolved identity from the gin context.
func GetAuthContext(c *gin.Context) (models.AuthContext, bool) {
	value, exists := c.Get(authContextKey)
	if !exists {
		return models.AuthContext{}, false
	}
	scope, ok := value.(models.AuthContext)
	return scope, ok
}
