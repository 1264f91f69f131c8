// Package api exposes the lead store over HTTP: CRUD, filtered listing with
// pagination, CSV export, and an email deliverability proxy. Every /leads
// endpoint requires the X-API-Key header; /healthz is open.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"npileads/internal/emailcheck"
	"npileads/internal/store"
)

// Server bundles the handlers' dependencies.
type Server struct {
	repo   store.Repository
	email  *emailcheck.Client
	apiKey string
}

// New constructs a Server over the given repository and email client.
func New(repo store.Repository, email *emailcheck.Client, apiKey string) *Server {
	return &Server{repo: repo, email: email, apiKey: apiKey}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	leads := r.Group("/api/v1/leads", RequireAPIKey(s.apiKey))
	{
		leads.POST("", s.createLead)
		leads.GET("", s.listLeads)
		leads.GET("/export", s.exportLeads)
		leads.GET("/npi/:npi", s.getLeadByNPI)
		leads.GET("/:id", s.getLead)
		leads.PUT("/:id", s.updateLead)
		leads.DELETE("/:id", s.deleteLead)
		leads.POST("/validate-email", s.validateEmail)
	}
	return r
}
