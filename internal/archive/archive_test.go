package archive

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"toolcrib/internal/blob"
)

func newTestArchive(t *testing.T, keep int) *Archive {
	t.Helper()
	store, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverMemory})
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	a := New(store, keep)
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var n int
	a.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return a
}

func TestSnapshotAndRestore(t *testing.T) {
	a := newTestArchive(t, 5)
	ctx := context.Background()
	if err := a.Snapshot(ctx, "werkzeuge.csv", []byte("WZ.Nr.;Name\r\n")); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	infos, err := a.List(ctx, "werkzeuge.csv")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(infos))
	}
	if !strings.HasPrefix(infos[0].Key, "werkzeuge.csv/20240301T080001") {
		t.Fatalf("unexpected key %s", infos[0].Key)
	}
	if infos[0].ContentType != "text/csv" {
		t.Fatalf("unexpected content type %q", infos[0].ContentType)
	}
	data, err := a.Restore(ctx, infos[0].Key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if string(data) != "WZ.Nr.;Name\r\n" {
		t.Fatalf("unexpected payload %q", data)
	}
	if _, err := a.Restore(ctx, "werkzeuge.csv/missing"); err == nil {
		t.Fatalf("expected restore error for missing key")
	}
}

func TestSnapshotPrunesOldest(t *testing.T) {
	a := newTestArchive(t, 2)
	ctx := context.Background()
	for i := range 4 {
		if err := a.Snapshot(ctx, "users.csv", []byte(fmt.Sprintf("v%d", i))); err != nil {
			t.Fatalf("snapshot %d: %v", i, err)
		}
	}
	if err := a.Snapshot(ctx, "drawer_config.json", []byte("{}")); err != nil {
		t.Fatalf("snapshot drawer config: %v", err)
	}
	infos, err := a.List(ctx, "users.csv")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 snapshots after pruning, got %d", len(infos))
	}
	newest, err := a.Restore(ctx, infos[1].Key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if string(newest) != "v3" {
		t.Fatalf("expected newest payload v3, got %q", newest)
	}
	if other, _ := a.List(ctx, "drawer_config.json"); len(other) != 1 || other[0].ContentType != "application/json" {
		t.Fatalf("pruning must be per file: %+v", other)
	}
}

func TestSnapshotRejectsInvalidNames(t *testing.T) {
	a := newTestArchive(t, 1)
	for _, name := range []string{"", "  ", "a/b.csv"} {
		if err := a.Snapshot(context.Background(), name, nil); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	store, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := New(store, 0)
	if a.Keep() != DefaultKeep || a.Driver() != blob.DriverMemory {
		t.Fatalf("unexpected archive defaults keep=%d driver=%s", a.Keep(), a.Driver())
	}
}

func TestArchiveOnFilesystem(t *testing.T) {
	store, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverFilesystem, FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := New(store, 1)
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	ctx := context.Background()
	if err := a.Snapshot(ctx, "ruestwerkzeuge.csv", []byte("a")); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := a.Snapshot(ctx, "ruestwerkzeuge.csv", []byte("b")); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	infos, err := a.List(ctx, "ruestwerkzeuge.csv")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %+v", err, infos)
	}
	data, err := a.Restore(ctx, infos[0].Key)
	if err != nil || string(data) != "b" {
		t.Fatalf("restore: %v %q", err, data)
	}
}

func TestSnapshotKeysStayUniqueWithinClockResolution(t *testing.T) {
	store, err := blob.Open(context.Background(), blob.Config{Driver: blob.DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := New(store, 5)
	frozen := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return frozen }
	ctx := context.Background()
	for range 3 {
		if err := a.Snapshot(ctx, "werkzeuge.csv", []byte("x")); err != nil {
			t.Fatalf("snapshot: %v", err)
		}
	}
	if infos, _ := a.List(ctx, "werkzeuge.csv"); len(infos) != 3 {
		t.Fatalf("expected 3 distinct snapshots, got %d", len(infos))
	}
}
