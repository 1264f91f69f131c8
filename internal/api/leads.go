package api

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"npileads/internal/emailcheck"
	"npileads/internal/lead"
	"npileads/internal/store"
)

// Listing page size bounds.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// createLeadRequest is the POST /leads body.
type createLeadRequest struct {
	NPI       string `json:"npi" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	State     string `json:"state"`
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Total int         `json:"total"`
	Items []lead.Lead `json:"items"`
}

func (s *Server) createLead(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.NPI) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "npi must not be blank"})
		return
	}
	created, err := s.repo.CreateLead(c.Request.Context(), lead.Candidate{
		NPI:       req.NPI,
		Name:      req.Name,
		Phone:     req.Phone,
		Specialty: req.Specialty,
		State:     req.State,
	})
	if errors.Is(err, store.ErrDuplicateNPI) {
		c.JSON(http.StatusConflict, gin.H{"error": "a lead with this npi already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create lead"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// listFilter pulls the shared listing/export query parameters.
func listFilter(c *gin.Context) store.ListFilter {
	return store.ListFilter{
		State:     c.Query("state"),
		Specialty: c.Query("specialty"),
		Search:    c.Query("search"),
	}
}

func (s *Server) listLeads(c *gin.Context) {
	f := listFilter(c)

	f.Limit = defaultListLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		f.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must not be negative"})
			return
		}
		f.Offset = n
	}

	total, items, err := s.repo.ListLeads(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list leads"})
		return
	}
	if items == nil {
		items = []lead.Lead{}
	}
	c.JSON(http.StatusOK, listResponse{Total: total, Items: items})
}

// exportLeads streams the filtered set as a CSV download; pagination does
// not apply to exports.
func (s *Server) exportLeads(c *gin.Context) {
	f := listFilter(c)
	_, items, err := s.repo.ListLeads(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export leads"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "npi", "name", "phone", "specialty", "state", "created_at"})
	for _, l := range items {
		_ = w.Write([]string{
			l.ID.String(), l.NPI, l.Name, l.Phone, l.Specialty, l.State,
			l.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
}

// leadID parses the :id path parameter, answering 400 itself on bad input.
func leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lead id"})
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) getLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	l, err := s.repo.GetLead(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch lead"})
		return
	}
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) getLeadByNPI(c *gin.Context) {
	npi := strings.TrimSpace(c.Param("npi"))
	l, err := s.repo.GetLeadByNPI(c.Request.Context(), npi)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch lead"})
		return
	}
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) updateLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	var upd store.LeadUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l, err := s.repo.UpdateLead(c.Request.Context(), id, upd)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update lead"})
		return
	}
	if l == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) deleteLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}
	deleted, err := s.repo.DeleteLead(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete lead"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// validateEmailRequest is the POST /leads/validate-email body.
type validateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *Server) validateEmail(c *gin.Context) {
	var req validateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.email.Validate(c.Request.Context(), req.Email)
	if errors.Is(err, emailcheck.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email validation is not configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "email validation failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
