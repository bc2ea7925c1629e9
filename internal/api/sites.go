package api

import (
	"encoding/json"
	"net/http"

	"github.com/aeoscope/aeoscope/internal/tenant"
)

// createSiteRequest is the JSON body for POST /api/v1/sites.
type createSiteRequest struct {
	Domain string `json:"domain" validate:"required,max=255"`
}

type siteResponse struct {
	ID        string `json:"id"`
	Domain    string `json:"domain"`
	CreatedAt string `json:"created_at"`
}

func siteToResponse(s *tenant.Site) siteResponse {
	return siteResponse{
		ID:        s.ID,
		Domain:    s.Domain,
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (h *Handler) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())

	var req createSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	site, err := h.tenants.UpsertSite(r.Context(), t.ID, req.Domain)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, siteToResponse(site))
}

func (h *Handler) handleListSites(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())

	sites, err := h.tenants.ListSites(r.Context(), t.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sites")
		return
	}

	result := make([]siteResponse, 0, len(sites))
	for i := range sites {
		result = append(result, siteToResponse(&sites[i]))
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	t := tenantFrom(r.Context())
	siteID := r.PathValue("siteID")

	if err := h.tenants.DeleteSite(r.Context(), t.ID, siteID); err != nil {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
