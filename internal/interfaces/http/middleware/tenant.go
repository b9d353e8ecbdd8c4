package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/retail/internal/infrastructure/auth"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/erp/retail/internal/infrastructure/persistence/tenant"
	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context keys and headers used for tenant resolution
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
	bearerPrefix    = "Bearer "
)

// TokenVerifier resolves a bearer token to its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// Verifier checks bearer tokens. Nil disables token resolution.
	Verifier TokenVerifier
	// HeaderEnabled accepts X-Tenant-ID when no bearer token is sent
	HeaderEnabled bool
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig(verifier TokenVerifier) TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		Verifier:  verifier,
		SkipPaths: []string{"/health", "/healthz", "/ready", "/api/v1/health"},
	}
}

// TenantMiddleware resolves the acting tenant for every request.
// Extraction order: bearer token claims > X-Tenant-ID header (when enabled).
// A request without a resolvable tenant is answered with 401.
func TenantMiddleware(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var (
			tenantID uuid.UUID
			method   string
		)

		header := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(header, bearerPrefix) && cfg.Verifier != nil:
			claims, err := cfg.Verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				logger.L(c.Request.Context()).Warn("Rejected bearer token", zap.Error(err))
				respondTokenError(c, err)
				return
			}
			tenantID = claims.TenantID
			method = "token"
		case cfg.HeaderEnabled && c.GetHeader(TenantHeaderKey) != "":
			id, err := uuid.Parse(c.GetHeader(TenantHeaderKey))
			if err != nil || id == uuid.Nil {
				respondUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid tenant ID format")
				return
			}
			tenantID = id
			method = "header"
		default:
			respondUnauthorized(c, dto.ErrCodeUnauthorized, "Tenant identification required")
			return
		}

		c.Set(TenantIDKey, tenantID)
		ctx := logger.WithTenantID(c.Request.Context(), tenantID)
		ctx = tenant.NewContext(ctx, tenantID)
		c.Request = c.Request.WithContext(ctx)

		logger.L(ctx).Debug("Tenant resolved", zap.String("method", method))
		c.Next()
	}
}

// GetTenantID returns the tenant resolved for this request, uuid.Nil when absent
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func respondTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		respondUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
	case errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrInvalidTenantID):
		respondUnauthorized(c, dto.ErrCodeTokenInvalid, "Token carries no valid tenant")
	default:
		respondUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
	}
}

func respondUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
		code, "", message, logger.GetRequestID(c.Request.Context()),
	))
}
