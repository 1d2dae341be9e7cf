package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tracktok/internal/biz"
	"tracktok/internal/domain"
	"tracktok/pkg/monitoring"
)

const tenantContextKey = "tenant_context"

// RequestIDMiddleware assigns every request an id for log and audit
// correlation.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// LoggingMiddleware logs one structured line per request.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// MetricsMiddleware counts requests by route and status.
func MetricsMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		monitoring.RequestsTotal.WithLabelValues(
			serviceName,
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

// TenantMiddleware resolves the active tenant for the request and aborts when
// none can be found. Resolution precedence: the request host (custom domain
// or platform subdomain), then the X-Tenant-ID header, then the session
// cookie. Identity headers are trusted because the upstream gateway
// authenticates them.
func TenantMiddleware(resolver *biz.TenantResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionTenant, _ := c.Cookie("tenant_id")

		tenant, err := resolver.Resolve(c.Request.Context(), biz.ResolveInput{
			Host:            c.Request.Host,
			HeaderTenantID:  c.GetHeader("X-Tenant-ID"),
			SessionTenantID: sessionTenant,
		})
		if err != nil {
			status := http.StatusBadRequest
			message := "tenant could not be resolved"
			if errors.Is(err, domain.ErrTenantSuspended) {
				status = http.StatusForbidden
				message = "tenant is suspended"
			} else if !errors.Is(err, domain.ErrTenantRequired) {
				logger.Error("tenant resolution failed", zap.Error(err))
				status = http.StatusInternalServerError
				message = "internal error"
			}
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(tenantContextKey, domain.TenantContext{
			TenantID:  tenant.ID,
			UserID:    c.GetHeader("X-User-ID"),
			UserEmail: c.GetHeader("X-User-Email"),
			RequestID: c.GetString("request_id"),
		})
		c.Next()
	}
}

// tenantContext returns the TenantContext resolved by TenantMiddleware.
func tenantContext(c *gin.Context) domain.TenantContext {
	if v, ok := c.Get(tenantContextKey); ok {
		if tc, ok := v.(domain.TenantContext); ok {
			return tc
		}
	}
	return domain.TenantContext{}
}
