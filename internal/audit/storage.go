// Package audit orchestrates the hosted audit pipeline: acquisition, evidence
// assembly, scoring, and result storage.
package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// StorageClient abstracts blob storage for raw evidence and full reports.
type StorageClient interface {
	PutEvidence(ctx context.Context, tenantID, auditID string, data []byte) error
	GetEvidence(ctx context.Context, tenantID, auditID string) ([]byte, error)
	PutReport(ctx context.Context, tenantID, auditID string, data []byte) error
	GetReport(ctx context.Context, tenantID, auditID string) ([]byte, error)
}

// LocalStorage implements StorageClient using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(tenantID, kind, id string) string {
	return filepath.Join(s.BaseDir, tenantID, kind, id+".json")
}

func (s *LocalStorage) put(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PutEvidence stores a raw evidence blob.
func (s *LocalStorage) PutEvidence(ctx context.Context, tenantID, auditID string, data []byte) error {
	return s.put(s.path(tenantID, "evidence", auditID), data)
}

// GetEvidence retrieves a raw evidence blob.
func (s *LocalStorage) GetEvidence(ctx context.Context, tenantID, auditID string) ([]byte, error) {
	return os.ReadFile(s.path(tenantID, "evidence", auditID))
}

// PutReport stores a full report blob.
func (s *LocalStorage) PutReport(ctx context.Context, tenantID, auditID string, data []byte) error {
	return s.put(s.path(tenantID, "reports", auditID), data)
}

// GetReport retrieves a full report blob.
func (s *LocalStorage) GetReport(ctx context.Context, tenantID, auditID string) ([]byte, error) {
	return os.ReadFile(s.path(tenantID, "reports", auditID))
}
