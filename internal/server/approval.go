package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	"github.com/pharmadesk/pharmadesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type createApprovalRequest struct {
	ApprovedBy     string          `json:"approved_by"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
}

func (s *Server) CreatePaymentApproval(c *gin.Context) {
	var req createApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.approvalSvc.Create(c.Request.Context(), approvaldomain.CreateApprovalRequest{
		ApprovedBy:     strings.TrimSpace(req.ApprovedBy),
		CreatedBy:      actingUser(c),
		ApprovedAmount: req.ApprovedAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, resp, "payment approval created")
}

func (s *Server) ListPaymentApprovals(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.approvalSvc.List(c.Request.Context(), approvaldomain.ListApprovalsRequest{
		Page:   query.Pagination,
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "")
}

// GetPaymentApproval looks up an approval by its dispense identifier.
func (s *Server) GetPaymentApproval(c *gin.Context) {
	resp, err := s.approvalSvc.GetByDispenseID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "")
}

func (s *Server) ApprovePayment(c *gin.Context) {
	resp, err := s.approvalSvc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "payment approved")
}

func (s *Server) RejectPayment(c *gin.Context) {
	resp, err := s.approvalSvc.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, resp, "payment rejected")
}
