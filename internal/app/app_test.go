package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"toolcrib/internal/config"
	"toolcrib/internal/journal"
	"toolcrib/internal/store"
	"toolcrib/pkg/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		DataDir:   dir,
		ToolsFile: filepath.Join(dir, store.DefaultToolsFile),
		UsersFile: filepath.Join(dir, store.DefaultUsersFile),
		LogLevel:  "debug",
		Metrics:   "prometheus",
		Machines:  []string{"Hermle40"},
		Archive:   config.ArchiveConfig{Driver: "memory", Keep: 2},
		Journal:   config.JournalConfig{Driver: "sqlite", SQLitePath: filepath.Join(dir, "journal.db")},
	}
}

func TestOpenWiresComponents(t *testing.T) {
	cfg := testConfig(t)
	var terminal bytes.Buffer
	a, err := Open(context.Background(), cfg, WithTerminal(&terminal))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = a.Close() }()

	ctx := journal.WithActor(context.Background(), "admin")
	if ok, err := a.Service.AddTool(ctx, domain.Tool{ID: "101", Name: "Fräser D10", Status: domain.StatusFixtureSet, StoragePosition: "1"}); err != nil || !ok {
		t.Fatalf("add tool: %v %v", ok, err)
	}
	if err := a.Service.MoveToMachine(ctx, 1, "Hermle40", "101"); err != nil {
		t.Fatalf("move: %v", err)
	}

	snaps, err := a.Archive.List(ctx, store.DefaultToolsFile)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected two tools snapshots, got %d", len(snaps))
	}
	entries, err := a.Journal.List(ctx, journal.Filter{ToolID: "101"})
	if err != nil || len(entries) != 2 || entries[1].Actor != "admin" {
		t.Fatalf("unexpected journal %v %+v", err, entries)
	}
	if n := testutil.CollectAndCount(a.Registry, "toolcrib_store_operations_total"); n == 0 {
		t.Fatalf("expected store operations to be counted")
	}
	if !strings.Contains(terminal.String(), "toolcrib opened") {
		t.Fatalf("expected startup log line, got %q", terminal.String())
	}
}

func TestOpenGateUsesUsersFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics = "none"
	cfg.Archive.Driver = ""
	cfg.Journal.Driver = "none"
	a, err := Open(context.Background(), cfg, WithTerminal(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = a.Close() }()
	if a.Archive != nil || a.Registry != nil {
		t.Fatalf("archive and registry should be disabled")
	}
	ctx := context.Background()
	if ok, err := a.Store.AddUser(ctx, "meister", "geheim", domain.RoleAdmin); err != nil || !ok {
		t.Fatalf("add user: %v %v", ok, err)
	}
	if !a.Gate.Login(ctx, "meister", "geheim") || !a.Gate.IsAdmin() {
		t.Fatalf("expected admin login")
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal = config.JournalConfig{Driver: "postgres"}
	if _, err := Open(context.Background(), cfg, WithTerminal(&bytes.Buffer{})); err == nil {
		t.Fatalf("expected validation error")
	}
	cfg = testConfig(t)
	cfg.LogLevel = "chatty"
	if _, err := Open(context.Background(), cfg, WithTerminal(&bytes.Buffer{})); err == nil {
		t.Fatalf("expected log level error")
	}
}

func TestOpenExpvarMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics = "expvar"
	cfg.Journal.Driver = "memory"
	a, err := Open(context.Background(), cfg, WithTerminal(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = a.Close() }()
	_ = a.Store.LoadTools(context.Background(), true)
	if a.Registry != nil {
		t.Fatalf("registry must be nil for expvar metrics")
	}
	if _, ok := a.Journal.(*journal.Memory); !ok {
		t.Fatalf("expected memory journal, got %T", a.Journal)
	}
}
