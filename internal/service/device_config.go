package service

import (
	"context"
	"errors"
	"time"

	"camhub/internal/domain"
	"camhub/internal/store"
)

// DeviceConfigService reads and writes the open-schema config rows in the
// devices table. Writes are unconditional upserts; there is no optimistic
// concurrency, the last writer wins.
type DeviceConfigService struct {
	store store.RecordStore
	table store.TableSpec
	now   func() time.Time
}

func NewDeviceConfigService(st store.RecordStore, tableName string) *DeviceConfigService {
	return &DeviceConfigService{
		store: st,
		table: store.TableSpec{Name: tableName, PartitionAttr: domain.AttrDeviceID},
		now:   time.Now,
	}
}

// Get returns the stored config as a flat view including device_id, or
// domain.ErrDeviceNotFound when the row is absent.
func (s *DeviceConfigService) Get(ctx context.Context, deviceID string) (domain.DeviceConfig, error) {
	row, err := s.store.GetRow(ctx, s.table, store.Key{Partition: deviceID})
	if err != nil {
		if errors.Is(err, store.ErrRowNotFound) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, err
	}
	cfg := domain.DeviceConfig(row)
	cfg[domain.AttrDeviceID] = deviceID
	return cfg, nil
}

// Put replaces the device's attribute set. Any device_id key inside attrs is
// dropped (it lives in the primary key, never in the attribute columns) and
// updated_at is stamped with the write time. The returned view echoes the
// caller's attributes rather than re-reading what was durably stored.
func (s *DeviceConfigService) Put(ctx context.Context, deviceID string, attrs map[string]any) (domain.DeviceConfig, error) {
	cols := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		if k == domain.AttrDeviceID {
			continue
		}
		cols[k] = v
	}
	cols[domain.AttrUpdatedAt] = s.now().UnixMilli()

	if err := s.store.PutRow(ctx, s.table, store.Key{Partition: deviceID}, cols); err != nil {
		return nil, err
	}

	echo := domain.DeviceConfig{domain.AttrDeviceID: deviceID}
	for k, v := range attrs {
		if k != domain.AttrDeviceID {
			echo[k] = v
		}
	}
	return echo, nil
}

// Patch shallow-merges updates over the current attributes (updates win) and
// writes the merged set back via Put. A device with no config row cannot be
// patched; it must be created with Put first.
//
// The read-modify-write is not atomic: two concurrent patches on the same
// device race, and the later Put silently overwrites the earlier one. That
// matches the store's row-level last-write-wins semantics and is accepted
// behavior, not a bug.
func (s *DeviceConfigService) Patch(ctx context.Context, deviceID string, updates map[string]any) (domain.DeviceConfig, error) {
	current, err := s.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(current)+len(updates))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return s.Put(ctx, deviceID, merged)
}

// Register persists a device registration into the devices table: merged into
// the existing config when the device already has one (so webhooks and other
// attributes survive re-registration), created fresh otherwise.
func (s *DeviceConfigService) Register(ctx context.Context, deviceID, deviceName, ownerID string) (domain.DeviceConfig, error) {
	attrs := map[string]any{
		domain.AttrDeviceName:   deviceName,
		domain.AttrOwnerID:      ownerID,
		domain.AttrRegisteredAt: s.now().UnixMilli(),
	}
	cfg, err := s.Patch(ctx, deviceID, attrs)
	if errors.Is(err, domain.ErrDeviceNotFound) {
		return s.Put(ctx, deviceID, attrs)
	}
	return cfg, err
}
