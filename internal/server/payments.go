package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/nutridesk/nutridesk/internal/payment/domain"
	reconciliationdomain "github.com/nutridesk/nutridesk/internal/reconciliation/domain"
)

func (s *Server) CreatePayment(c *gin.Context) {
	var req paymentdomain.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPayments(c *gin.Context) {
	var req paymentdomain.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRecentPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	resp, err := s.paymentSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentStats(c *gin.Context) {
	resp, err := s.paymentSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// SimulateRateLimit throttles simulation requests per client IP. The
// limiter fails open when redis is unreachable.
func (s *Server) SimulateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.simulateLimiter.Enabled() {
			c.Next()
			return
		}

		allowed, err := s.simulateLimiter.AllowClient(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), c.FullPath())
			AbortWithError(c, ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

func (s *Server) SimulatePayment(c *gin.Context) {
	var req reconciliationdomain.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()

	// One reconciliation per account at a time.
	token, locked, err := s.simulateLimiter.TryLockAccount(ctx, req.AccountID)
	if err == nil && !locked {
		AbortWithError(c, ErrConflict)
		return
	}
	if err == nil && token != "" {
		defer func() {
			_ = s.simulateLimiter.ReleaseAccount(ctx, req.AccountID, token)
		}()
	}

	resp, err := s.reconcileSvc.Reconcile(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
