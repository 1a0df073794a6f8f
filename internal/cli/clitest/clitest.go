// Package clitest builds command contexts for tests.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/julianstephens/studyplan/internal/cli"
	"github.com/julianstephens/studyplan/internal/scheduler"
	"github.com/julianstephens/studyplan/internal/storage/sqlite"
)

// NewContext returns a Context over a freshly initialized SQLite store
// in a temp dir, with output captured in the returned buffer.
func NewContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "studyplan.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	return &cli.Context{
		Store:     store,
		Scheduler: scheduler.New(),
		Out:       &out,
	}, &out
}
