// Package tenant manages multi-tenant state: tenants (API customers) and the
// sites they audit.
package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service provides tenant and site management backed by Postgres.
type Service struct {
	db *sql.DB
}

// Tenant represents one API customer.
type Tenant struct {
	ID          string
	DisplayName string
	APIKey      string
	CreatedAt   time.Time
}

// Site represents a website registered for auditing under a tenant.
type Site struct {
	ID        string
	TenantID  string
	Domain    string
	CreatedAt time.Time
}

// NewService creates a new tenant Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// NewAPIKey generates a fresh tenant API key.
func NewAPIKey() string {
	return "aeo_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CreateTenant creates a new tenant with a freshly generated API key.
func (s *Service) CreateTenant(ctx context.Context, displayName string) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tenants (display_name, api_key)
		 VALUES ($1, $2)
		 RETURNING id, display_name, api_key, created_at`,
		displayName, NewAPIKey(),
	).Scan(&t.ID, &t.DisplayName, &t.APIKey, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

// GetTenantByAPIKey looks up the tenant that owns an API key. Used by the
// request authentication middleware.
func (s *Service) GetTenantByAPIKey(ctx context.Context, apiKey string) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, api_key, created_at
		 FROM tenants WHERE api_key = $1`,
		apiKey,
	).Scan(&t.ID, &t.DisplayName, &t.APIKey, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tenant by api key: %w", err)
	}
	return t, nil
}

// GetTenantByName looks up a tenant by display name.
func (s *Service) GetTenantByName(ctx context.Context, name string) (*Tenant, error) {
	t := &Tenant{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, api_key, created_at
		 FROM tenants WHERE display_name = $1`,
		name,
	).Scan(&t.ID, &t.DisplayName, &t.APIKey, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tenant by name %s: %w", name, err)
	}
	return t, nil
}

// RotateAPIKey replaces a tenant's API key and returns the new one.
func (s *Service) RotateAPIKey(ctx context.Context, tenantID string) (string, error) {
	key := NewAPIKey()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tenants SET api_key = $1 WHERE id = $2`,
		key, tenantID,
	)
	if err != nil {
		return "", fmt.Errorf("rotate api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", fmt.Errorf("rotate api key: tenant %s not found", tenantID)
	}
	return key, nil
}

// NormalizeDomain reduces a user-supplied site identifier to a bare lowercase
// host: scheme, path, port, and a leading "www." are stripped.
func NormalizeDomain(raw string) (string, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return "", fmt.Errorf("empty domain")
	}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("invalid domain %q: %w", raw, err)
		}
		raw = u.Host
	} else if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimPrefix(raw, "www.")
	if raw == "" || !strings.Contains(raw, ".") {
		return "", fmt.Errorf("invalid domain %q", raw)
	}
	return raw, nil
}

// UpsertSite creates or returns the site record for a tenant's domain.
func (s *Service) UpsertSite(ctx context.Context, tenantID, domain string) (*Site, error) {
	normalized, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	site := &Site{}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO sites (tenant_id, domain)
		 VALUES ($1, $2)
		 ON CONFLICT (tenant_id, domain) DO UPDATE SET domain = EXCLUDED.domain
		 RETURNING id, tenant_id, domain, created_at`,
		tenantID, normalized,
	).Scan(&site.ID, &site.TenantID, &site.Domain, &site.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert site %s: %w", normalized, err)
	}
	return site, nil
}

// GetSite retrieves a site by tenant ID and site ID.
func (s *Service) GetSite(ctx context.Context, tenantID, siteID string) (*Site, error) {
	site := &Site{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, domain, created_at
		 FROM sites WHERE tenant_id = $1 AND id = $2`,
		tenantID, siteID,
	).Scan(&site.ID, &site.TenantID, &site.Domain, &site.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get site %s: %w", siteID, err)
	}
	return site, nil
}

// GetSiteByDomain retrieves a site by tenant ID and normalized domain.
func (s *Service) GetSiteByDomain(ctx context.Context, tenantID, domain string) (*Site, error) {
	normalized, err := NormalizeDomain(domain)
	if err != nil {
		return nil, err
	}

	site := &Site{}
	err = s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, domain, created_at
		 FROM sites WHERE tenant_id = $1 AND domain = $2`,
		tenantID, normalized,
	).Scan(&site.ID, &site.TenantID, &site.Domain, &site.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get site %s: %w", normalized, err)
	}
	return site, nil
}

// ListSites returns all sites for a tenant.
func (s *Service) ListSites(ctx context.Context, tenantID string) ([]Site, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tenant_id, domain, created_at
		 FROM sites WHERE tenant_id = $1 ORDER BY domain`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var site Site
		if err := rows.Scan(&site.ID, &site.TenantID, &site.Domain, &site.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// DeleteSite removes a site. Its audit history stays behind for the tenant.
func (s *Service) DeleteSite(ctx context.Context, tenantID, siteID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sites WHERE tenant_id = $1 AND id = $2`,
		tenantID, siteID,
	)
	if err != nil {
		return fmt.Errorf("delete site %s: %w", siteID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete site: site %s not found", siteID)
	}
	return nil
}

// EnsureTenantAndSite gets or creates a tenant (by display name) and site.
// Returns tenantID, siteID, and any error.
func (s *Service) EnsureTenantAndSite(ctx context.Context, tenantName, domain string) (string, string, error) {
	t, err := s.GetTenantByName(ctx, tenantName)
	if err != nil {
		t, err = s.CreateTenant(ctx, tenantName)
		if err != nil {
			// Could be a race condition; try getting again
			if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
				t, err = s.GetTenantByName(ctx, tenantName)
				if err != nil {
					return "", "", fmt.Errorf("ensure tenant: %w", err)
				}
			} else {
				return "", "", fmt.Errorf("ensure tenant: %w", err)
			}
		}
	}

	site, err := s.UpsertSite(ctx, t.ID, domain)
	if err != nil {
		return "", "", fmt.Errorf("ensure site: %w", err)
	}

	return t.ID, site.ID, nil
}
