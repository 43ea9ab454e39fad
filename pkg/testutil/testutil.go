// Package testutil provides testing utilities for uniunit
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/uniunit/pkg/uniunit"
	"github.com/ajitpratap0/uniunit/pkg/units"
)

// TestLogger creates a test logger that writes to the test output.
// Only use it for code that stops logging before the test returns.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a context with a 30-second timeout that is cancelled
// when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// NewRegistry returns a quiet registry with the default units and the
// Chinese aliases.
func NewRegistry(t *testing.T) *units.Registry {
	t.Helper()
	reg, err := units.NewRegistry(units.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("failed to build unit registry: %v", err)
	}
	if _, err := reg.RegisterAliases(units.ChineseUnits); err != nil {
		t.Fatalf("failed to register aliases: %v", err)
	}
	return reg
}

// NewPresets returns the built-in presets over a registry from NewRegistry.
func NewPresets(t *testing.T) *uniunit.Presets {
	t.Helper()
	return uniunit.NewDefaultPresets(NewRegistry(t))
}

// MustParse parses expr or fails the test.
func MustParse(t *testing.T, reg *units.Registry, expr string) units.Quantity {
	t.Helper()
	q, err := reg.Parse(expr)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", expr, err)
	}
	return q
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}
