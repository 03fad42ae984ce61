package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSubscriptions(c *gin.Context) {
	resp, err := s.subscriptionSvc.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
