package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tracktok/internal/biz"
	"tracktok/internal/conf"
	"tracktok/internal/domain"
	"tracktok/internal/service"
	"tracktok/pkg/health"
)

// HTTPServer serves the ledger and alert API.
type HTTPServer struct {
	engine  *gin.Engine
	server  *http.Server
	service *service.LedgerService
	logger  *zap.Logger
}

// NewHTTPServer creates the HTTP server with all middleware and routes
// registered.
func NewHTTPServer(cfg *conf.ServerConfig, svc *service.LedgerService, resolver *biz.TenantResolver, healthReg *health.Registry, logger *zap.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &HTTPServer{
		engine:  engine,
		service: svc,
		logger:  logger,
	}

	engine.Use(gin.Recovery())
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggingMiddleware(logger))
	engine.Use(MetricsMiddleware("ledger-service"))

	checkHealth := func(c *gin.Context) {
		status, checks := healthReg.Check(c.Request.Context())
		code := http.StatusOK
		if status != health.StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "checks": checks})
	}
	engine.GET("/health", checkHealth)
	engine.GET("/ready", checkHealth)

	v1 := engine.Group("/api/v1")
	v1.Use(TenantMiddleware(resolver, logger))
	{
		v1.POST("/expenses", s.createExpense)
		v1.GET("/expenses", s.listExpenses)
		v1.GET("/expenses/:id", s.getExpense)
		v1.PATCH("/expenses/:id", s.updateExpense)
		v1.DELETE("/expenses/:id", s.deleteExpense)

		v1.GET("/accounts/:id", s.getAccount)
		v1.POST("/accounts/:id/adjust", s.adjustBalance)

		v1.POST("/alerts/evaluate", s.evaluateAlerts)
		v1.GET("/alerts", s.listAlerts)
		v1.GET("/alerts/unread", s.listUnreadAlerts)
		v1.GET("/alerts/unread/count", s.unreadAlertCount)
		v1.POST("/alerts/:id/read", s.markAlertRead)
		v1.POST("/alerts/:id/dismiss", s.dismissAlert)

		v1.GET("/audit/:resource_type/:resource_id", s.auditHistory)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) createExpense(c *gin.Context) {
	var req service.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expense, err := s.service.CreateExpense(c.Request.Context(), tenantContext(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (s *HTTPServer) listExpenses(c *gin.Context) {
	limit, offset := paging(c)
	expenses, err := s.service.ListExpenses(c.Request.Context(), tenantContext(c), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

func (s *HTTPServer) getExpense(c *gin.Context) {
	expense, err := s.service.GetExpense(c.Request.Context(), tenantContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *HTTPServer) updateExpense(c *gin.Context) {
	var req service.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	expense, err := s.service.UpdateExpense(c.Request.Context(), tenantContext(c), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (s *HTTPServer) deleteExpense(c *gin.Context) {
	if err := s.service.DeleteExpense(c.Request.Context(), tenantContext(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) getAccount(c *gin.Context) {
	account, err := s.service.GetAccount(c.Request.Context(), tenantContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *HTTPServer) adjustBalance(c *gin.Context) {
	var req service.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, err := s.service.AdjustBalance(c.Request.Context(), tenantContext(c), c.Param("id"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

func (s *HTTPServer) evaluateAlerts(c *gin.Context) {
	if err := s.service.EvaluateAlerts(c.Request.Context(), tenantContext(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *HTTPServer) listAlerts(c *gin.Context) {
	limit, offset := paging(c)
	alerts, err := s.service.ListAlerts(c.Request.Context(), tenantContext(c), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *HTTPServer) listUnreadAlerts(c *gin.Context) {
	limit, _ := paging(c)
	alerts, err := s.service.ListUnreadAlerts(c.Request.Context(), tenantContext(c), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (s *HTTPServer) unreadAlertCount(c *gin.Context) {
	count, err := s.service.UnreadAlertCount(c.Request.Context(), tenantContext(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *HTTPServer) markAlertRead(c *gin.Context) {
	alert, err := s.service.MarkAlertRead(c.Request.Context(), tenantContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *HTTPServer) dismissAlert(c *gin.Context) {
	alert, err := s.service.DismissAlert(c.Request.Context(), tenantContext(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (s *HTTPServer) auditHistory(c *gin.Context) {
	limit, _ := paging(c)
	entries, err := s.service.AuditHistory(c.Request.Context(), tenantContext(c),
		c.Param("resource_type"), c.Param("resource_id"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// respondError maps domain errors onto HTTP statuses. Cross-tenant access
// deliberately renders as not found so the API never confirms another
// tenant's data exists.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrTenantRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant required"})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTenantSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": "tenant is suspended"})
	case errors.Is(err, domain.ErrPlanLimitExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": "plan limit exceeded"})
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrAlertNotFound),
		errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrCrossTenantViolation):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrLockTimeout):
		c.JSON(http.StatusConflict, gin.H{"error": "resource busy, retry"})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func paging(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
