package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /commission-bids
func (s *Server) submitCommission(c *gin.Context) {
	var req commissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	cb, err := s.svc.Commissions.Submit(c.Request.Context(), identity(c), req.LotID, req.ClientID, *req.BidAmount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cb)
}

// GET /commission-bids/client/:clientId
func (s *Server) commissionsByClient(c *gin.Context) {
	bids, err := s.svc.Commissions.ListByClient(c.Request.Context(), identity(c), c.Param("clientId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

// GET /commission-bids/lot/:lotId
func (s *Server) commissionsByLot(c *gin.Context) {
	bids, err := s.svc.Commissions.ListByLot(c.Request.Context(), identity(c), c.Param("lotId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}
