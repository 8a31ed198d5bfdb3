package blob

import (
	"bytes"
	"context"
	"testing"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		cfg  Config
		want Driver
	}{
		{name: "default", cfg: Config{FSRoot: t.TempDir()}, want: DriverFilesystem},
		{name: "fs", cfg: Config{Driver: DriverFilesystem, FSRoot: t.TempDir()}, want: DriverFilesystem},
		{name: "memory", cfg: Config{Driver: DriverMemory}, want: DriverMemory},
		{name: "s3", cfg: Config{Driver: DriverS3, S3: S3Config{Bucket: "snapshots", AccessKeyID: "AKIA", SecretAccessKey: "SECRET"}}, want: DriverS3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if store.Driver() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, store.Driver())
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, Config{Driver: "ftp"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestOpenedStoreIsCreateOnly(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Put(context.Background(), "k", bytes.NewReader(nil), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(context.Background(), "k", bytes.NewReader(nil), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put error")
	}
}
