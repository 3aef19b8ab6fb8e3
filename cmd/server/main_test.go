package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/config"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func validConfig() config.Config {
	return config.Config{
		AuthSecret:    strongSecret,
		StorageDriver: "memory",
		RemoteDriver:  "none",
		AdminUsername: "admin",
	}
}

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cfg := validConfig()
	cfg.AuthSecret = "short"
	if err := validateSecurityConfig(cfg); err == nil {
		t.Fatalf("expected short AUTH_SECRET to be rejected")
	}

	for _, pw := range []string{"admin123", "short", "aaaaaaaaaa", "Admin"} {
		cfg := validConfig()
		cfg.AdminPassword = pw
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("expected ADMIN_PASSWORD %q to be rejected", pw)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	cfg := validConfig()
	if err := validateSecurityConfig(cfg); err != nil {
		t.Fatalf("expected config without ADMIN_PASSWORD to pass, got %v", err)
	}

	cfg.AdminPassword = "frames-and-lenses-24"
	if err := validateSecurityConfig(cfg); err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenLocalFileBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageDriver = "file"
	cfg.StorageDir = filepath.Join(t.TempDir(), "data")

	backend, closeFn, err := openLocal(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}
	if closeFn != nil {
		t.Fatalf("file backend needs no closer")
	}
	if _, ok := backend.(*localstore.FileBackend); !ok {
		t.Fatalf("expected *localstore.FileBackend, got %T", backend)
	}
}

func TestOpenRemoteFallsBackToUnavailable(t *testing.T) {
	logger.Discard()
	cfg := validConfig()

	rs, closeFn := openRemote(context.Background(), cfg)
	if closeFn != nil {
		t.Fatalf("expected no closer for the none driver")
	}
	if rs.Available(context.Background()) {
		t.Fatalf("expected no remote to be available")
	}

	cfg.RemoteDriver = "memory"
	rs, _ = openRemote(context.Background(), cfg)
	if _, ok := rs.(*remote.Memory); !ok {
		t.Fatalf("expected *remote.Memory, got %T", rs)
	}
}

type pingStub struct {
	*remote.Memory
	pingErr error
	closed  bool
}

func (p *pingStub) Ping(context.Context) error { return p.pingErr }

func (p *pingStub) Close() error {
	p.closed = true
	return nil
}

func TestCheckRemoteDropsUnreachableRemote(t *testing.T) {
	logger.Discard()
	ctx := context.Background()

	down := &pingStub{Memory: remote.NewMemory(), pingErr: errors.New("permission denied")}
	rs, closeFn := checkRemote(ctx, "firestore", down)
	if closeFn != nil {
		t.Fatalf("expected no closer for an unreachable remote")
	}
	if rs.Available(ctx) {
		t.Fatalf("expected unreachable remote to be replaced")
	}
	if !down.closed {
		t.Fatalf("expected unreachable client to be closed")
	}

	up := &pingStub{Memory: remote.NewMemory()}
	rs, closeFn = checkRemote(ctx, "firestore", up)
	if closeFn == nil || rs != remote.Store(up) {
		t.Fatalf("expected reachable remote to be kept, got %T", rs)
	}
}
