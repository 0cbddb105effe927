package server

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) DashboardOverview(c *gin.Context) {
	resp, err := s.dashboardSvc.Overview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "")
}

func (s *Server) CashierDashboard(c *gin.Context) {
	resp, err := s.dashboardSvc.CashierSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "")
}
