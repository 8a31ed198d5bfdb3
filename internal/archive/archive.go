// Package archive keeps timestamped copies of every flat file the record
// store writes, pruned to a fixed number of versions per file.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"toolcrib/internal/blob"
)

// DefaultKeep is the retention used when New receives a non-positive keep.
const DefaultKeep = 20

// timestampLayout sorts lexically in time order.
const timestampLayout = "20060102T150405.000000000Z"

// Archive stores snapshots in a blob store under "<file name>/<timestamp>".
type Archive struct {
	store blob.Store
	keep  int
	now   func() time.Time

	mu   sync.Mutex
	last time.Time
}

// New returns an archive over store keeping the newest keep snapshots per
// file.
func New(store blob.Store, keep int) *Archive {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Archive{store: store, keep: keep, now: time.Now}
}

// Keep returns the per-file retention.
func (a *Archive) Keep() int { return a.keep }

// Driver reports the backing blob driver.
func (a *Archive) Driver() blob.Driver { return a.store.Driver() }

// Snapshot stores payload as the newest version of name, then prunes older
// versions beyond the retention.
func (a *Archive) Snapshot(ctx context.Context, name string, payload []byte) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("invalid snapshot name %q", name)
	}
	key := name + "/" + a.stamp().Format(timestampLayout)
	opts := blob.PutOptions{ContentType: contentType(name), Metadata: map[string]string{"file": name}}
	if _, err := a.store.Put(ctx, key, bytes.NewReader(payload), opts); err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	return a.prune(ctx, name)
}

// List returns the snapshots of name, oldest first.
func (a *Archive) List(ctx context.Context, name string) ([]blob.Info, error) {
	infos, err := a.store.List(ctx, name+"/")
	if err != nil {
		return nil, fmt.Errorf("list snapshots of %s: %w", name, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// Restore returns the bytes of the snapshot stored under key.
func (a *Archive) Restore(ctx context.Context, key string) ([]byte, error) {
	_, rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", key, err)
	}
	return data, nil
}

// stamp returns a UTC time strictly after the previous one so snapshots
// taken within the clock resolution get distinct keys.
func (a *Archive) stamp() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	t := a.now().UTC()
	if !t.After(a.last) {
		t = a.last.Add(time.Nanosecond)
	}
	a.last = t
	return t
}

func (a *Archive) prune(ctx context.Context, name string) error {
	infos, err := a.List(ctx, name)
	if err != nil {
		return err
	}
	if len(infos) <= a.keep {
		return nil
	}
	for _, info := range infos[:len(infos)-a.keep] {
		if _, err := a.store.Delete(ctx, info.Key); err != nil {
			return fmt.Errorf("prune %s: %w", info.Key, err)
		}
	}
	return nil
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
