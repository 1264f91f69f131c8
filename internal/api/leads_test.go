package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npileads/internal/emailcheck"
	"npileads/internal/lead"
	"npileads/internal/store"
	"npileads/internal/store/sqlite"
)

const testKey = "test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, opts ...func(*Server)) (*gin.Engine, store.Repository) {
	t.Helper()
	ctx := context.Background()
	repo, err := sqlite.New(ctx, sqlite.Config{DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.EnsureSchema(ctx))

	srv := New(repo, emailcheck.New(""), testKey)
	for _, opt := range opts {
		opt(srv)
	}
	return srv.Router(), repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, key string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(apiKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedLeads(t *testing.T, repo store.Repository, cands ...lead.Candidate) {
	t.Helper()
	_, err := store.InsertLeads(context.Background(), repo, cands, 0)
	require.NoError(t, err)
}

func TestHealthzIsOpen(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyRequired(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/leads", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/leads", nil, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIKeyUnconfiguredIs500(t *testing.T) {
	r, _ := newTestRouter(t, func(s *Server) { s.apiKey = "" })
	w := doJSON(t, r, http.MethodGet, "/api/v1/leads", nil, "anything")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateLead(t *testing.T) {
	r, _ := newTestRouter(t)

	body := map[string]string{"npi": "111", "name": "Ann Lee", "phone": "555-0001", "state": "TX"}
	w := doJSON(t, r, http.MethodPost, "/api/v1/leads", body, testKey)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created lead.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "111", created.NPI)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	// Duplicate npi conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/v1/leads", body, testKey)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Missing required fields.
	w = doJSON(t, r, http.MethodPost, "/api/v1/leads", map[string]string{"name": "No NPI"}, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLeads(t *testing.T) {
	r, repo := newTestRouter(t)
	seedLeads(t, repo,
		lead.Candidate{NPI: "1", Name: "Ann Smith", Phone: "555-0001", State: "TX"},
		lead.Candidate{NPI: "2", Name: "Bob Smith", Phone: "555-0002", State: "TX"},
		lead.Candidate{NPI: "3", Name: "Cara Jones", Phone: "555-0003", State: "CA"},
	)

	w := doJSON(t, r, http.MethodGet, "/api/v1/leads?state=TX&limit=1", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	var got listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Len(t, got.Items, 1)

	w = doJSON(t, r, http.MethodGet, "/api/v1/leads?search=SMITH", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)

	w = doJSON(t, r, http.MethodGet, "/api/v1/leads?limit=9999", nil, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUpdateDeleteLead(t *testing.T) {
	r, repo := newTestRouter(t)
	seedLeads(t, repo, lead.Candidate{NPI: "0001234567", Name: "Ann Lee", Phone: "555-0001"})

	byNPI := doJSON(t, r, http.MethodGet, "/api/v1/leads/npi/0001234567", nil, testKey)
	require.Equal(t, http.StatusOK, byNPI.Code)
	var l lead.Lead
	require.NoError(t, json.Unmarshal(byNPI.Body.Bytes(), &l))
	assert.Equal(t, "0001234567", l.NPI)

	w := doJSON(t, r, http.MethodGet, "/api/v1/leads/"+l.ID.String(), nil, testKey)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/leads/not-a-uuid", nil, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v1/leads/"+l.ID.String(),
		map[string]string{"phone": "555-9999"}, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &l))
	assert.Equal(t, "555-9999", l.Phone)
	assert.Equal(t, "Ann Lee", l.Name)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/leads/"+l.ID.String(), nil, testKey)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/api/v1/leads/"+l.ID.String(), nil, testKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportLeadsCSV(t *testing.T) {
	r, repo := newTestRouter(t)
	seedLeads(t, repo,
		lead.Candidate{NPI: "1", Name: "Ann Smith", Phone: "555-0001", State: "TX"},
		lead.Candidate{NPI: "2", Name: "Cara Jones", Phone: "555-0003", State: "CA"},
	)

	w := doJSON(t, r, http.MethodGet, "/api/v1/leads/export?state=TX", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "leads.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2) // header + the one TX lead
	assert.Equal(t, "id,npi,name,phone,specialty,state,created_at", lines[0])
	assert.Contains(t, lines[1], "Ann Smith")
}

func TestValidateEmail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"ann@example.com","deliverability":"DELIVERABLE"}`))
	}))
	defer upstream.Close()

	r, _ := newTestRouter(t, func(s *Server) {
		s.email = emailcheck.New("secret", emailcheck.WithEndpoint(upstream.URL))
	})

	w := doJSON(t, r, http.MethodPost, "/api/v1/leads/validate-email",
		map[string]string{"email": "ann@example.com"}, testKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "DELIVERABLE")

	w = doJSON(t, r, http.MethodPost, "/api/v1/leads/validate-email",
		map[string]string{"email": "not-an-email"}, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateEmailUnconfigured(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/leads/validate-email",
		map[string]string{"email": "ann@example.com"}, testKey)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
