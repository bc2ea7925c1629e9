package main

import (
	"testing"
)

func TestAuditCmdFlags(t *testing.T) {
	cmd := newAuditCmd()
	f := cmd.Flags()

	// Test default output format
	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}

	staticOnly, _ := f.GetBool("static-only")
	if staticOnly {
		t.Error("static-only should default to false")
	}

	for _, flag := range []string{"static-only", "timeout", "output", "config", "verbose"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestAuditCmdRequiresURL(t *testing.T) {
	cmd := newAuditCmd()
	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("expected error for missing URL argument")
	}
	if err := cmd.Args(cmd, []string{"example.com"}); err != nil {
		t.Errorf("one URL argument should be accepted: %v", err)
	}
	if err := cmd.Args(cmd, []string{"a.com", "b.com"}); err == nil {
		t.Error("expected error for extra arguments")
	}
}
