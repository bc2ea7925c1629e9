package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aeoscope/aeoscope/internal/fetch"
	"github.com/aeoscope/aeoscope/pkg/evidence"
	"github.com/aeoscope/aeoscope/pkg/scoring"
)

// AuditStatus represents the lifecycle of an audit.
const (
	StatusQueued    = "QUEUED"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// AuditRequest describes what to audit.
type AuditRequest struct {
	TenantID string
	SiteID   string
	URL      string
}

// PageFetcher abstracts acquisition so the audit package does not depend on a
// concrete fetcher (tests substitute a canned one).
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Evaluator abstracts the scoring engine.
type Evaluator interface {
	Evaluate(ev *evidence.Evidence) (*scoring.ScoreResult, error)
}

// Service orchestrates the audit pipeline.
type Service struct {
	db      *sql.DB
	storage StorageClient
	fetcher PageFetcher
	engine  Evaluator
}

// NewService creates a new audit Service.
func NewService(db *sql.DB, storage StorageClient, fetcher PageFetcher, engine Evaluator) *Service {
	return &Service{
		db:      db,
		storage: storage,
		fetcher: fetcher,
		engine:  engine,
	}
}

// CreateAudit creates a new audit record and returns its ID.
// The idempotency key is site_id + URL + UTC day, so re-submitting the same
// page on the same day returns the existing audit instead of queueing another.
func (s *Service) CreateAudit(ctx context.Context, req AuditRequest) (string, error) {
	idempotencyKey := fmt.Sprintf("%s:%s:%s", req.SiteID, req.URL, time.Now().UTC().Format("2006-01-02"))

	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO audits (tenant_id, site_id, url, idempotency_key)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (idempotency_key) DO UPDATE SET updated_at = now()
		 RETURNING id`,
		req.TenantID, req.SiteID, req.URL, idempotencyKey,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create audit: %w", err)
	}
	return id, nil
}

// UpdateAuditStatus updates the status and optional error message.
func (s *Service) UpdateAuditStatus(ctx context.Context, id, status string, errMsg *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE audits SET status = $1, error_message = $2, updated_at = now() WHERE id = $3`,
		status, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("update audit status: %w", err)
	}
	return nil
}

// runTimeout bounds one background audit run, rendering included.
const runTimeout = 2 * time.Minute

// Start creates the audit record and runs the pipeline in the background,
// returning the audit ID immediately. The caller polls for completion.
func (s *Service) Start(ctx context.Context, req AuditRequest) (string, error) {
	auditID, err := s.CreateAudit(ctx, req)
	if err != nil {
		return "", err
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		// Run re-resolves the same record through the idempotency key.
		if _, err := s.Run(runCtx, req); err != nil {
			log.Printf("audit %s failed: %v", auditID, err)
		}
	}()

	return auditID, nil
}

// Run executes the full audit pipeline for a request and returns the audit ID.
func (s *Service) Run(ctx context.Context, req AuditRequest) (auditID string, err error) {
	// 1. Create or retrieve audit record
	auditID, err = s.CreateAudit(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create audit: %w", err)
	}

	if err = s.UpdateAuditStatus(ctx, auditID, StatusRunning, nil); err != nil {
		return auditID, fmt.Errorf("update status to running: %w", err)
	}

	// On failure, mark audit as failed
	defer func() {
		if err != nil {
			errMsg := err.Error()
			if updateErr := s.UpdateAuditStatus(ctx, auditID, StatusFailed, &errMsg); updateErr != nil {
				log.Printf("failed to update audit status: %v", updateErr)
			}
		}
	}()

	// 2. Acquire the page and site probes
	fetched, err := s.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return auditID, fmt.Errorf("fetch %s: %w", req.URL, err)
	}

	// 3. Store raw evidence input before scoring, so a scoring failure still
	// leaves the acquisition on record.
	input := fetched.EvidenceInput()
	evidenceData, err := json.Marshal(input)
	if err != nil {
		return auditID, fmt.Errorf("marshal evidence: %w", err)
	}
	evidenceRef := fmt.Sprintf("evidence/%s/%s.json", req.TenantID, auditID)
	if err = s.storage.PutEvidence(ctx, req.TenantID, auditID, evidenceData); err != nil {
		return auditID, fmt.Errorf("put evidence blob: %w", err)
	}

	// 4. Score
	ev := evidence.Build(input)
	result, err := s.engine.Evaluate(ev)
	if err != nil {
		return auditID, fmt.Errorf("evaluate: %w", err)
	}
	result.URL = fetched.URL

	// 5. Store the full report blob
	reportData, err := json.Marshal(result)
	if err != nil {
		return auditID, fmt.Errorf("marshal report: %w", err)
	}
	reportRef := fmt.Sprintf("reports/%s/%s.json", req.TenantID, auditID)
	if err = s.storage.PutReport(ctx, req.TenantID, auditID, reportData); err != nil {
		return auditID, fmt.Errorf("put report blob: %w", err)
	}

	// 6. Finalize the audit row with the headline numbers
	issuesJSON, err := json.Marshal(result.Issues)
	if err != nil {
		return auditID, fmt.Errorf("marshal issues: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE audits
		 SET status = $1, score = $2, raw_score = $3, grade = $4, band = $5,
		     checks_passed = $6, checks_failed = $7, issues = $8,
		     evidence_ref = $9, report_ref = $10, execution_ms = $11, updated_at = now()
		 WHERE id = $12`,
		StatusCompleted, result.GatedScore, result.RawScore, result.Grade, result.Band,
		result.ChecksPassed, result.ChecksFailed, issuesJSON,
		evidenceRef, reportRef, result.ExecutionTimeMs, auditID,
	)
	if err != nil {
		return auditID, fmt.Errorf("finalize audit: %w", err)
	}

	log.Printf("audit %s completed: url=%s score=%.0f grade=%s", auditID, fetched.URL, result.GatedScore, result.Grade)
	return auditID, nil
}

// AuditRow represents an audit record from the database.
type AuditRow struct {
	ID           string
	TenantID     string
	SiteID       string
	URL          string
	Status       string
	Score        *float64
	RawScore     *float64
	Grade        *string
	Band         *string
	ChecksPassed *int
	ChecksFailed *int
	Issues       json.RawMessage
	EvidenceRef  *string
	ReportRef    *string
	ExecutionMs  *int64
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const auditColumns = `id, tenant_id, site_id, url, status, score, raw_score, grade, band,
	checks_passed, checks_failed, issues, evidence_ref, report_ref, execution_ms,
	error_message, created_at, updated_at`

func scanAudit(row interface{ Scan(...any) error }) (*AuditRow, error) {
	a := &AuditRow{}
	err := row.Scan(
		&a.ID, &a.TenantID, &a.SiteID, &a.URL, &a.Status, &a.Score, &a.RawScore, &a.Grade, &a.Band,
		&a.ChecksPassed, &a.ChecksFailed, &a.Issues, &a.EvidenceRef, &a.ReportRef, &a.ExecutionMs,
		&a.ErrorMessage, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAudit returns a single audit scoped to a tenant.
func (s *Service) GetAudit(ctx context.Context, tenantID, auditID string) (*AuditRow, error) {
	a, err := scanAudit(s.db.QueryRowContext(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE tenant_id = $1 AND id = $2`,
		tenantID, auditID,
	))
	if err != nil {
		return nil, fmt.Errorf("get audit %s: %w", auditID, err)
	}
	return a, nil
}

// ListAuditsBySite returns a site's audits, newest first.
func (s *Service) ListAuditsBySite(ctx context.Context, tenantID, siteID string, limit int) ([]AuditRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audits
		 WHERE tenant_id = $1 AND site_id = $2
		 ORDER BY created_at DESC LIMIT $3`,
		tenantID, siteID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	var audits []AuditRow
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, *a)
	}
	return audits, rows.Err()
}

// GetReport loads the full stored report for a completed audit.
func (s *Service) GetReport(ctx context.Context, tenantID, auditID string) (*scoring.ScoreResult, error) {
	data, err := s.storage.GetReport(ctx, tenantID, auditID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	var result scoring.ScoreResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &result, nil
}
