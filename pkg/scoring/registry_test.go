package scoring_test

import (
	"strings"
	"testing"

	"github.com/aeoscope/aeoscope/pkg/scoring"
)

func TestDefaultRegistryValid(t *testing.T) {
	reg, err := scoring.DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry() error: %v", err)
	}

	checks := reg.Checks()
	if len(checks) != scoring.NumChecks {
		t.Fatalf("expected %d checks, got %d", scoring.NumChecks, len(checks))
	}

	var sum float64
	perCategory := make(map[scoring.Category]float64)
	for _, c := range checks {
		sum += c.MaxPoints
		perCategory[c.Category] += c.MaxPoints
	}
	if sum != scoring.TotalPoints {
		t.Errorf("weights sum to %v, want %v", sum, scoring.TotalPoints)
	}

	wantCategory := map[scoring.Category]float64{
		scoring.CategoryTechnical:      50,
		scoring.CategoryStructuredData: 24,
		scoring.CategoryCrawlerAccess:  16,
		scoring.CategoryAuthority:      10,
	}
	for cat, want := range wantCategory {
		if perCategory[cat] != want {
			t.Errorf("category %s carries %v points, want %v", cat, perCategory[cat], want)
		}
	}
}

func TestNewRegistryRejectsDuplicateID(t *testing.T) {
	checks := scoring.DefaultChecks()
	checks[1].ID = checks[0].ID
	if _, err := scoring.NewRegistry(checks, scoring.DefaultSignals()); err == nil {
		t.Fatal("expected error for duplicate check id")
	}
}

func TestNewRegistryRejectsBadWeightSum(t *testing.T) {
	checks := scoring.DefaultChecks()
	checks[0].MaxPoints++
	_, err := scoring.NewRegistry(checks, scoring.DefaultSignals())
	if err == nil {
		t.Fatal("expected error for weights not summing to 100")
	}
	if !strings.Contains(err.Error(), "sum") {
		t.Errorf("error does not mention the sum: %v", err)
	}
}

func TestNewRegistryRejectsWrongCount(t *testing.T) {
	checks := scoring.DefaultChecks()[:20]
	if _, err := scoring.NewRegistry(checks, scoring.DefaultSignals()); err == nil {
		t.Fatal("expected error for short check table")
	}
}

func TestNewRegistryRejectsUnknownSignalTarget(t *testing.T) {
	signals := []scoring.GateSignal{
		{Name: "ghost", CheckID: "no_such_check", Verdict: scoring.VerdictFail},
	}
	if _, err := scoring.NewRegistry(scoring.DefaultChecks(), signals); err == nil {
		t.Fatal("expected error for signal referencing unknown check")
	}
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	reg, err := scoring.DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry() error: %v", err)
	}
	cfg := scoring.Defaults()
	cfg.Tier0Cap = 50 // above tier 1
	if _, err := scoring.NewEngine(reg, cfg); err == nil {
		t.Fatal("expected error for inverted tier caps")
	}
}
