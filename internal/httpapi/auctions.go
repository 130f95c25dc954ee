package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/store"
)

// bindAuction accepts JSON or a multipart form. An uploaded image file is
// recorded by name; storing the bytes is outside this service.
func (s *Server) bindAuction(c *gin.Context) (auctionRequest, bool) {
	var req auctionRequest
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

// POST /auctions
func (s *Server) createAuction(c *gin.Context) {
	req, ok := s.bindAuction(c)
	if !ok {
		return
	}
	in, err := req.createInput()
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.svc.Auctions.Create(c.Request.Context(), identity(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GET /auctions?category=
func (s *Server) listAuctions(c *gin.Context) {
	auctions, err := s.svc.Auctions.List(c.Request.Context(), store.AuctionCategory(c.Query("category")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}

func queryTime(c *gin.Context, v *apperr.ValidationError, key string) *time.Time {
	raw := c.Query(key)
	return parseTime(v, key, &raw)
}

// GET /auctions/search?title=&category=&startDate=&endDate=
func (s *Server) searchAuctions(c *gin.Context) {
	var v apperr.ValidationError
	f := store.AuctionFilter{
		TitleContains: strings.TrimSpace(c.Query("title")),
		Category:      store.AuctionCategory(c.Query("category")),
		StartsFrom:    queryTime(c, &v, "startDate"),
		EndsBy:        queryTime(c, &v, "endDate"),
	}
	if err := v.Err(); err != nil {
		s.fail(c, err)
		return
	}
	auctions, err := s.svc.Auctions.Search(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}

// GET /auctions/:id
func (s *Server) getAuction(c *gin.Context) {
	a, err := s.svc.Auctions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// PUT /auctions/:id
func (s *Server) updateAuction(c *gin.Context) {
	req, ok := s.bindAuction(c)
	if !ok {
		return
	}
	in, err := req.updateInput()
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.svc.Auctions.Update(c.Request.Context(), identity(c), c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DELETE /auctions/:id
func (s *Server) deleteAuction(c *gin.Context) {
	if err := s.svc.Auctions.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "auction deleted"})
}

// GET /auctions/bought/:clientId
func (s *Server) boughtAuctions(c *gin.Context) {
	auctions, err := s.svc.Auctions.Bought(c.Request.Context(), identity(c), c.Param("clientId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}

// POST /auctions/:id/bid
func (s *Server) placeBid(c *gin.Context) {
	var req bidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	res, err := s.svc.Bidding.PlaceBid(c.Request.Context(), identity(c), c.Param("id"), *req.Amount)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "bid placed",
		"highestBid": res.HighestBid,
		"bid":        res.Bid,
	})
}

// GET /auctions/:id/bids
func (s *Server) listBids(c *gin.Context) {
	bids, err := s.svc.Bidding.ListBids(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

// PUT /auctions/buy/:id
func (s *Server) buyAuction(c *gin.Context) {
	var req buyAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	a, err := s.svc.Bidding.BuyAuction(c.Request.Context(), identity(c), c.Param("id"), *req.SalePrice, req.BuyerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// POST /auctions/:id/favorite
func (s *Server) addFavorite(c *gin.Context) {
	fav, err := s.svc.Favorites.Add(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "added to favorites", "favorite": fav})
}

// DELETE /auctions/:id/favorite
func (s *Server) removeFavorite(c *gin.Context) {
	if err := s.svc.Favorites.Remove(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "removed from favorites"})
}

// PUT /auctions/:id/favorite
func (s *Server) toggleFavorite(c *gin.Context) {
	added, err := s.svc.Favorites.Toggle(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": added})
}

// GET /auctions/favorites/:clientId
func (s *Server) listFavorites(c *gin.Context) {
	auctions, err := s.svc.Favorites.List(c.Request.Context(), identity(c), c.Param("clientId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}
