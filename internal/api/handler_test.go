package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeoscope/aeoscope/internal/audit"
	"github.com/aeoscope/aeoscope/internal/tenant"
	"github.com/aeoscope/aeoscope/pkg/scoring"
)

const (
	testAPIKey = "aeo_testkey"
	testSiteID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"
)

type fakeDirectory struct {
	tenant *tenant.Tenant
	sites  map[string]*tenant.Site
}

func (f *fakeDirectory) GetTenantByAPIKey(ctx context.Context, apiKey string) (*tenant.Tenant, error) {
	if f.tenant != nil && apiKey == f.tenant.APIKey {
		return f.tenant, nil
	}
	return nil, fmt.Errorf("get tenant by api key: no rows")
}

func (f *fakeDirectory) UpsertSite(ctx context.Context, tenantID, domain string) (*tenant.Site, error) {
	normalized, err := tenant.NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}
	site := &tenant.Site{ID: testSiteID, TenantID: tenantID, Domain: normalized, CreatedAt: time.Now()}
	f.sites[site.ID] = site
	return site, nil
}

func (f *fakeDirectory) GetSite(ctx context.Context, tenantID, siteID string) (*tenant.Site, error) {
	site, ok := f.sites[siteID]
	if !ok || site.TenantID != tenantID {
		return nil, fmt.Errorf("get site %s: no rows", siteID)
	}
	return site, nil
}

func (f *fakeDirectory) ListSites(ctx context.Context, tenantID string) ([]tenant.Site, error) {
	var sites []tenant.Site
	for _, s := range f.sites {
		if s.TenantID == tenantID {
			sites = append(sites, *s)
		}
	}
	return sites, nil
}

func (f *fakeDirectory) DeleteSite(ctx context.Context, tenantID, siteID string) error {
	if _, ok := f.sites[siteID]; !ok {
		return fmt.Errorf("delete site: site %s not found", siteID)
	}
	delete(f.sites, siteID)
	return nil
}

type fakeRunner struct {
	audits  map[string]*audit.AuditRow
	reports map[string]*scoring.ScoreResult
	started []audit.AuditRequest
}

func (f *fakeRunner) Start(ctx context.Context, req audit.AuditRequest) (string, error) {
	f.started = append(f.started, req)
	return "audit-1", nil
}

func (f *fakeRunner) GetAudit(ctx context.Context, tenantID, auditID string) (*audit.AuditRow, error) {
	a, ok := f.audits[auditID]
	if !ok || a.TenantID != tenantID {
		return nil, fmt.Errorf("get audit %s: no rows", auditID)
	}
	return a, nil
}

func (f *fakeRunner) ListAuditsBySite(ctx context.Context, tenantID, siteID string, limit int) ([]audit.AuditRow, error) {
	var rows []audit.AuditRow
	for _, a := range f.audits {
		if a.TenantID == tenantID && a.SiteID == siteID {
			rows = append(rows, *a)
		}
	}
	return rows, nil
}

func (f *fakeRunner) GetReport(ctx context.Context, tenantID, auditID string) (*scoring.ScoreResult, error) {
	r, ok := f.reports[auditID]
	if !ok {
		return nil, fmt.Errorf("load report: not found")
	}
	return r, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeDirectory, *fakeRunner) {
	t.Helper()
	dir := &fakeDirectory{
		tenant: &tenant.Tenant{ID: "tenant-1", DisplayName: "acme", APIKey: testAPIKey},
		sites: map[string]*tenant.Site{
			testSiteID: {ID: testSiteID, TenantID: "tenant-1", Domain: "example.com"},
		},
	}
	runner := &fakeRunner{
		audits:  map[string]*audit.AuditRow{},
		reports: map[string]*scoring.ScoreResult{},
	}

	mux := http.NewServeMux()
	NewHandler(dir, runner).RegisterRoutes(mux)
	srv := httptest.NewServer(CORS(mux))
	t.Cleanup(srv.Close)
	return srv, dir, runner
}

func doRequest(t *testing.T, method, url, apiKey, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAuthRequired(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, "GET", srv.URL+"/api/v1/sites", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, "GET", srv.URL+"/api/v1/sites", "wrong-key", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateAudit(t *testing.T) {
	srv, _, runner := newTestServer(t)

	body := fmt.Sprintf(`{"site_id":%q,"url":"example.com/pricing"}`, testSiteID)
	resp := doRequest(t, "POST", srv.URL+"/api/v1/audits", testAPIKey, body)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out map[string]string
	decodeBody(t, resp, &out)
	assert.Equal(t, "audit-1", out["id"])
	assert.Equal(t, audit.StatusQueued, out["status"])

	require.Len(t, runner.started, 1)
	assert.Equal(t, "tenant-1", runner.started[0].TenantID)
	assert.Equal(t, "https://example.com/pricing", runner.started[0].URL, "scheme filled in before queueing")
}

func TestCreateAuditValidation(t *testing.T) {
	srv, _, runner := newTestServer(t)

	cases := []string{
		`{"site_id":"` + testSiteID + `"}`,          // missing url
		`{"site_id":"not-a-uuid","url":"a.com"}`,    // bad site id
		`{"url":"example.com"}`,                     // missing site id
		`{"site_id":"` + testSiteID + `","url":""}`, // empty url
	}
	for _, body := range cases {
		resp := doRequest(t, "POST", srv.URL+"/api/v1/audits", testAPIKey, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		resp.Body.Close()
	}
	assert.Empty(t, runner.started)
}

func TestCreateAuditForeignSite(t *testing.T) {
	srv, _, runner := newTestServer(t)

	body := `{"site_id":"11111111-2222-3333-4444-555555555555","url":"example.com"}`
	resp := doRequest(t, "POST", srv.URL+"/api/v1/audits", testAPIKey, body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, runner.started)
}

func TestGetAudit(t *testing.T) {
	srv, _, runner := newTestServer(t)

	score := 87.0
	grade := "A"
	band := "Excellent"
	passed := 27
	runner.audits["audit-1"] = &audit.AuditRow{
		ID:           "audit-1",
		TenantID:     "tenant-1",
		SiteID:       testSiteID,
		URL:          "https://example.com/",
		Status:       audit.StatusCompleted,
		Score:        &score,
		Grade:        &grade,
		Band:         &band,
		ChecksPassed: &passed,
		Issues:       json.RawMessage(`[]`),
	}

	resp := doRequest(t, "GET", srv.URL+"/api/v1/audits/audit-1", testAPIKey, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out auditResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "audit-1", out.ID)
	assert.Equal(t, audit.StatusCompleted, out.Status)
	require.NotNil(t, out.Score)
	assert.Equal(t, 87.0, *out.Score)
	assert.Equal(t, "A", *out.Grade)
}

func TestGetAuditNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, "GET", srv.URL+"/api/v1/audits/nope", testAPIKey, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetReportWhileRunning(t *testing.T) {
	srv, _, runner := newTestServer(t)

	runner.audits["audit-1"] = &audit.AuditRow{
		ID: "audit-1", TenantID: "tenant-1", SiteID: testSiteID, Status: audit.StatusRunning,
	}

	resp := doRequest(t, "GET", srv.URL+"/api/v1/audits/audit-1/report", testAPIKey, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestGetReport(t *testing.T) {
	srv, _, runner := newTestServer(t)

	runner.audits["audit-1"] = &audit.AuditRow{
		ID: "audit-1", TenantID: "tenant-1", SiteID: testSiteID, Status: audit.StatusCompleted,
	}
	runner.reports["audit-1"] = &scoring.ScoreResult{
		GatedScore: 45, MaxScore: 100, Grade: "C", Band: "Moderate",
	}

	resp := doRequest(t, "GET", srv.URL+"/api/v1/audits/audit-1/report", testAPIKey, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]any
	decodeBody(t, resp, &out)
	assert.Equal(t, 45.0, out["score"])
	assert.Equal(t, 100.0, out["max_score"])
	assert.Equal(t, "C", out["grade"])
	assert.Equal(t, "Moderate", out["band"])
}

func TestCreateSiteNormalizesDomain(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, "POST", srv.URL+"/api/v1/sites", testAPIKey, `{"domain":"https://WWW.Example.com/path"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out siteResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "example.com", out.Domain)
}

func TestCreateSiteInvalidDomain(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, "POST", srv.URL+"/api/v1/sites", testAPIKey, `{"domain":"localhost"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListSites(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, "GET", srv.URL+"/api/v1/sites", testAPIKey, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out []siteResponse
	decodeBody(t, resp, &out)
	require.Len(t, out, 1)
	assert.Equal(t, "example.com", out[0].Domain)
}

func TestDeleteSite(t *testing.T) {
	srv, dir, _ := newTestServer(t)

	resp := doRequest(t, "DELETE", srv.URL+"/api/v1/sites/"+testSiteID, testAPIKey, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, dir.sites)
}

func TestListAuditsLimitValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := doRequest(t, "GET", srv.URL+"/api/v1/sites/"+testSiteID+"/audits?limit=9999", testAPIKey, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListAudits(t *testing.T) {
	srv, _, runner := newTestServer(t)

	runner.audits["audit-1"] = &audit.AuditRow{
		ID: "audit-1", TenantID: "tenant-1", SiteID: testSiteID,
		URL: "https://example.com/", Status: audit.StatusFailed,
	}

	resp := doRequest(t, "GET", srv.URL+"/api/v1/sites/"+testSiteID+"/audits", testAPIKey, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out []auditResponse
	decodeBody(t, resp, &out)
	require.Len(t, out, 1)
	assert.Equal(t, audit.StatusFailed, out[0].Status)
}
