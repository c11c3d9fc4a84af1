// Package testutil holds helpers for gating slow or environment-dependent
// tests.
package testutil

import (
	"os"
	"testing"
)

// SkipIfShort skips the test when -short is set.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
}

// RequireIntegration skips the test unless integration tests are enabled.
// Integration tests need Docker and are opted into with INTEGRATION_TESTS=1.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("skipping integration test (set INTEGRATION_TESTS=1 to run)")
	}
}
