package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /clients
func (s *Server) createClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	cl, err := s.svc.Clients.Create(c.Request.Context(), identity(c), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

// GET /clients
func (s *Server) listClients(c *gin.Context) {
	clients, err := s.svc.Clients.List(c.Request.Context(), identity(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GET /clients/me
func (s *Server) me(c *gin.Context) {
	cl, err := s.svc.Clients.Me(c.Request.Context(), identity(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// GET /clients/user/:userId
func (s *Server) clientByUser(c *gin.Context) {
	cl, err := s.svc.Clients.GetByUser(c.Request.Context(), identity(c), c.Param("userId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// GET /clients/:id
func (s *Server) getClient(c *gin.Context) {
	cl, err := s.svc.Clients.Get(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// PUT /clients/:id
func (s *Server) updateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	cl, err := s.svc.Clients.Update(c.Request.Context(), identity(c), c.Param("id"), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

// DELETE /clients/:id
func (s *Server) deleteClient(c *gin.Context) {
	if err := s.svc.Clients.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "client deleted"})
}
