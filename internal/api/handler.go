// Package api implements the hosted AEOScope REST API.
// It provides audit submission and read endpoints backed by Postgres and blob
// storage, scoped per tenant by API key.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aeoscope/aeoscope/internal/audit"
	"github.com/aeoscope/aeoscope/internal/tenant"
	"github.com/aeoscope/aeoscope/pkg/scoring"
)

// TenantDirectory is the slice of tenant.Service the API needs.
type TenantDirectory interface {
	GetTenantByAPIKey(ctx context.Context, apiKey string) (*tenant.Tenant, error)
	UpsertSite(ctx context.Context, tenantID, domain string) (*tenant.Site, error)
	GetSite(ctx context.Context, tenantID, siteID string) (*tenant.Site, error)
	ListSites(ctx context.Context, tenantID string) ([]tenant.Site, error)
	DeleteSite(ctx context.Context, tenantID, siteID string) error
}

// AuditRunner is the slice of audit.Service the API needs.
type AuditRunner interface {
	Start(ctx context.Context, req audit.AuditRequest) (string, error)
	GetAudit(ctx context.Context, tenantID, auditID string) (*audit.AuditRow, error)
	ListAuditsBySite(ctx context.Context, tenantID, siteID string, limit int) ([]audit.AuditRow, error)
	GetReport(ctx context.Context, tenantID, auditID string) (*scoring.ScoreResult, error)
}

// Handler is the top-level API handler for the hosted AEOScope service.
type Handler struct {
	tenants  TenantDirectory
	audits   AuditRunner
	validate *validator.Validate
}

// NewHandler creates a new API handler.
func NewHandler(tenants TenantDirectory, audits AuditRunner) *Handler {
	return &Handler{
		tenants:  tenants,
		audits:   audits,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
// All routes require tenant authentication.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /api/v1/audits", h.authenticated(h.handleCreateAudit))
	mux.Handle("GET /api/v1/audits/{auditID}", h.authenticated(h.handleGetAudit))
	mux.Handle("GET /api/v1/audits/{auditID}/report", h.authenticated(h.handleGetReport))

	mux.Handle("POST /api/v1/sites", h.authenticated(h.handleCreateSite))
	mux.Handle("GET /api/v1/sites", h.authenticated(h.handleListSites))
	mux.Handle("DELETE /api/v1/sites/{siteID}", h.authenticated(h.handleDeleteSite))
	mux.Handle("GET /api/v1/sites/{siteID}/audits", h.authenticated(h.handleListAudits))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
