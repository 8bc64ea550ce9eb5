package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"camhub/internal/domain"
	"camhub/internal/service"
	"camhub/internal/store"
)

func newConfigService(t *testing.T) *service.DeviceConfigService {
	t.Helper()
	return service.NewDeviceConfigService(store.NewMemoryStore(), "devices")
}

func TestPutThenGet(t *testing.T) {
	svc := newConfigService(t)
	ctx := context.Background()
	before := time.Now().UnixMilli()

	echo, err := svc.Put(ctx, "cam-1", map[string]any{
		"device_name":    "porch",
		"notify_enabled": "true",
		"device_id":      "spoofed", // must be stripped
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if echo.DeviceID() != "cam-1" {
		t.Fatalf("echo device_id: got %q", echo.DeviceID())
	}
	if _, ok := echo["updated_at"]; ok {
		t.Fatalf("unexpected updated_at in echo: %v", echo)
	}

	cfg, err := svc.Get(ctx, "cam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.StringAttr("device_name") != "porch" || cfg.StringAttr("notify_enabled") != "true" {
		t.Fatalf("unexpected attrs: %v", cfg)
	}
	if cfg.DeviceID() != "cam-1" {
		t.Fatalf("stored device_id: got %q", cfg.DeviceID())
	}
	updatedAt, ok := cfg["updated_at"].(int64)
	if !ok || updatedAt < before {
		t.Fatalf("expected fresh updated_at >= %d, got %v", before, cfg["updated_at"])
	}
}

func TestGetMissingDevice(t *testing.T) {
	svc := newConfigService(t)

	_, err := svc.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

func TestPutIsIdempotentModuloTimestamp(t *testing.T) {
	svc := newConfigService(t)
	ctx := context.Background()
	attrs := map[string]any{"device_name": "porch", "feishu_webhook": "https://feishu.example/hook"}

	if _, err := svc.Put(ctx, "cam-1", attrs); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := svc.Put(ctx, "cam-1", attrs); err != nil {
		t.Fatalf("second put: %v", err)
	}

	cfg, err := svc.Get(ctx, "cam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for k, v := range attrs {
		if cfg[k] != v {
			t.Fatalf("attribute %s: expected %v, got %v", k, v, cfg[k])
		}
	}
	// device_id + updated_at on top of the written attributes, nothing else.
	if len(cfg) != len(attrs)+2 {
		t.Fatalf("unexpected attribute set: %v", cfg)
	}
}

func TestPatchMergesOverCurrent(t *testing.T) {
	svc := newConfigService(t)
	ctx := context.Background()

	if _, err := svc.Put(ctx, "cam-1", map[string]any{
		"device_name":    "porch",
		"notify_enabled": "true",
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := svc.Patch(ctx, "cam-1", map[string]any{
		"notify_enabled": "false", // collision: update wins
		"feishu_webhook": "https://feishu.example/hook",
	}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	cfg, err := svc.Get(ctx, "cam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.StringAttr("device_name") != "porch" {
		t.Fatalf("expected untouched key preserved, got %v", cfg)
	}
	if cfg.StringAttr("notify_enabled") != "false" {
		t.Fatalf("expected update to win on collision, got %v", cfg)
	}
	if cfg.StringAttr("feishu_webhook") != "https://feishu.example/hook" {
		t.Fatalf("expected new key merged in, got %v", cfg)
	}
}

func TestPatchMissingDevice(t *testing.T) {
	svc := newConfigService(t)

	_, err := svc.Patch(context.Background(), "nope", map[string]any{"a": "b"})
	if !errors.Is(err, domain.ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}

// Patch is read-modify-write with no conditional put: when two patches
// interleave, the second write wins wholesale and the first patch's keys are
// lost unless the second one happened to read them first. This documents the
// accepted last-write-wins behavior; sequential patches here stand in for the
// interleaving since the memory store serializes writes.
func TestPatchLastWriterWins(t *testing.T) {
	svc := newConfigService(t)
	ctx := context.Background()

	if _, err := svc.Put(ctx, "cam-1", map[string]any{"base": "v"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := svc.Patch(ctx, "cam-1", map[string]any{"left": "1"}); err != nil {
		t.Fatalf("patch left: %v", err)
	}
	if _, err := svc.Patch(ctx, "cam-1", map[string]any{"left": "2"}); err != nil {
		t.Fatalf("patch right: %v", err)
	}

	cfg, err := svc.Get(ctx, "cam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.StringAttr("left") != "2" {
		t.Fatalf("expected last write to win, got %v", cfg["left"])
	}
}

func TestRegisterNewAndExisting(t *testing.T) {
	svc := newConfigService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "cam-1", "porch", "owner-9"); err != nil {
		t.Fatalf("register new: %v", err)
	}
	cfg, err := svc.Get(ctx, "cam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.StringAttr("device_name") != "porch" || cfg.StringAttr("owner_id") != "owner-9" {
		t.Fatalf("unexpected registration attrs: %v", cfg)
	}

	// Re-registering must not wipe independently written config.
	if _, err := svc.Patch(ctx, "cam-1", map[string]any{"feishu_webhook": "https://feishu.example/hook"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if _, err := svc.Register(ctx, "cam-1", "porch-2", "owner-9"); err != nil {
		t.Fatalf("register existing: %v", err)
	}
	cfg, err = svc.Get(ctx, "cam-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.StringAttr("device_name") != "porch-2" {
		t.Fatalf("expected name updated, got %v", cfg)
	}
	if cfg.StringAttr("feishu_webhook") != "https://feishu.example/hook" {
		t.Fatalf("expected webhook to survive re-registration, got %v", cfg)
	}
}
