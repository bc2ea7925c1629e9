package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/aeoscope/aeoscope/internal/audit"
	"github.com/aeoscope/aeoscope/internal/fetch"
)

// createAuditRequest is the JSON body for POST /api/v1/audits.
type createAuditRequest struct {
	SiteID string `json:"site_id" validate:"required,uuid"`
	URL    string `json:"url" validate:"required,max=2048"`
}

type auditResponse struct {
	ID           string          `json:"id"`
	SiteID       string          `json:"site_id"`
	URL          string          `json:"url"`
	Status       string          `json:"status"`
	Score        *float64        `json:"score,omitempty"`
	RawScore     *float64        `json:"raw_score,omitempty"`
	Grade        *string         `json:"grade,omitempty"`
	Band         *string         `json:"band,omitempty"`
	ChecksPassed *int            `json:"checks_passed,omitempty"`
	ChecksFailed *int            `json:"checks_failed,omitempty"`
	Issues       json.RawMessage `json:"issues,omitempty"`
	ExecutionMs  *int64          `json:"execution_time,omitempty"`
	Error        *string         `json:"error,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func auditRowToResponse(a *audit.AuditRow) auditResponse {
	return auditResponse{
		ID:           a.ID,
		SiteID:       a.SiteID,
		URL:          a.URL,
		Status:       a.Status,
		Score:        a.Score,
		RawScore:     a.RawScore,
		Grade:        a.Grade,
		Band:         a.Band,
		ChecksPassed: a.ChecksPassed,
		ChecksFailed: a.ChecksFailed,
		Issues:       a.Issues,
		ExecutionMs:  a.ExecutionMs,
		Error:        a.ErrorMessage,
		CreatedAt:    a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    a.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *Handler) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())

	var req createAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	target, err := fetch.NormalizeURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The site must belong to the calling tenant.
	if _, err := h.tenants.GetSite(r.Context(), t.ID, req.SiteID); err != nil {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}

	auditID, err := h.audits.Start(r.Context(), audit.AuditRequest{
		TenantID: t.ID,
		SiteID:   req.SiteID,
		URL:      target,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start audit: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     auditID,
		"status": audit.StatusQueued,
	})
}

func (h *Handler) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())
	auditID := r.PathValue("auditID")

	a, err := h.audits.GetAudit(r.Context(), t.ID, auditID)
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}

	writeJSON(w, http.StatusOK, auditRowToResponse(a))
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())
	auditID := r.PathValue("auditID")

	a, err := h.audits.GetAudit(r.Context(), t.ID, auditID)
	if err != nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	if a.Status != audit.StatusCompleted {
		writeError(w, http.StatusConflict, "audit is "+strings.ToLower(a.Status)+"; report available once completed")
		return
	}

	result, err := h.audits.GetReport(r.Context(), t.ID, auditID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListAudits(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())
	siteID := r.PathValue("siteID")

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	if _, err := h.tenants.GetSite(r.Context(), t.ID, siteID); err != nil {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}

	audits, err := h.audits.ListAuditsBySite(r.Context(), t.ID, siteID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audits")
		return
	}

	result := make([]auditResponse, 0, len(audits))
	for i := range audits {
		result = append(result, auditRowToResponse(&audits[i]))
	}
	writeJSON(w, http.StatusOK, result)
}
