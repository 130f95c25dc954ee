package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rijon63/fothebys-auction-system/internal/lot"
)

func (s *Server) bindLot(c *gin.Context) (lotRequest, bool) {
	var req lotRequest
	if err := c.ShouldBind(&req); err != nil {
		s.badRequest(c, err)
		return req, false
	}
	if req.Image == nil && c.ContentType() == gin.MIMEMultipartPOSTForm {
		if fh, err := c.FormFile("image"); err == nil {
			name := fh.Filename
			req.Image = &name
		}
	}
	return req, true
}

// POST /lots
func (s *Server) createLot(c *gin.Context) {
	req, ok := s.bindLot(c)
	if !ok {
		return
	}
	in, err := req.input()
	if err != nil {
		s.fail(c, err)
		return
	}
	l, err := s.svc.Lots.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// GET /lots
func (s *Server) listLots(c *gin.Context) {
	lots, err := s.svc.Lots.List(c.Request.Context(), identity(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// GET /lots/:id
func (s *Server) getLot(c *gin.Context) {
	l, err := s.svc.Lots.Get(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /lots/auction/:auctionId
func (s *Server) lotsByAuction(c *gin.Context) {
	lots, err := s.svc.Lots.ListByAuction(c.Request.Context(), identity(c), c.Param("auctionId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// GET /lots/bought/:clientId
func (s *Server) boughtLots(c *gin.Context) {
	lots, err := s.svc.Lots.Bought(c.Request.Context(), identity(c), c.Param("clientId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// PUT /lots/:id
func (s *Server) updateLot(c *gin.Context) {
	req, ok := s.bindLot(c)
	if !ok {
		return
	}
	in, err := req.input()
	if err != nil {
		s.fail(c, err)
		return
	}
	l, err := s.svc.Lots.Update(c.Request.Context(), identity(c), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// DELETE /lots/:id
func (s *Server) deleteLot(c *gin.Context) {
	if err := s.svc.Lots.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "lot deleted"})
}

// PUT /lots/buy/:lotId
func (s *Server) buyLot(c *gin.Context) {
	var req buyLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	l, err := s.svc.Bidding.BuyLot(c.Request.Context(), identity(c), c.Param("lotId"), *req.SalePrice)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// GET /search/advanced
func (s *Server) advancedSearch(c *gin.Context) {
	p := lot.SearchParams{
		Category:              c.Query("category"),
		SubjectClassification: c.Query("subjectClassification"),
		MinPrice:              c.Query("minPrice"),
		MaxPrice:              c.Query("maxPrice"),
		StartAuctionDate:      c.Query("startAuctionDate"),
		EndAuctionDate:        c.Query("endAuctionDate"),
		AuctionTitle:          c.Query("auctionTitle"),
	}
	lots, err := s.svc.Lots.AdvancedSearch(c.Request.Context(), identity(c), p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

// GET /search/simple?keyword=
func (s *Server) simpleSearch(c *gin.Context) {
	lots, err := s.svc.Lots.SimpleSearch(c.Request.Context(), identity(c), c.Query("keyword"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}
