package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	dailymetricdomain "github.com/nutridesk/nutridesk/internal/dailymetric/domain"
)

func (s *Server) ListDailyMetrics(c *gin.Context) {
	var req dailymetricdomain.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dailyMetricSvc.Range(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTodayMetric(c *gin.Context) {
	resp, err := s.dailyMetricSvc.Today(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
