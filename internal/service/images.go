package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"time"

	"camhub/internal/domain"
	"camhub/internal/store"
)

const (
	imagesPartitionAttr = "partition_key"
	imagesSortAttr      = "row_key"

	defaultListLimit = 50
	rowKeySuffixLen  = 9
)

// imageColumns is the attribute set a list query projects; the store adds the
// primary-key fields on top.
var imageColumns = []string{
	"device_id", "has_motion", "oss_path_original",
	"oss_path_thumbnail", "created_at", "image_size",
}

// ImageService appends snapshot metadata to the images table and pages
// through it newest-first. Rows are append-only; nothing here updates or
// deletes them.
type ImageService struct {
	store store.RecordStore
	table store.TableSpec
	now   func() time.Time
}

func NewImageService(st store.RecordStore, tableName string) *ImageService {
	return &ImageService{
		store: st,
		table: store.TableSpec{Name: tableName, PartitionAttr: imagesPartitionAttr, SortAttr: imagesSortAttr},
		now:   time.Now,
	}
}

type AppendParams struct {
	DeviceID         string
	HasMotion        bool
	OSSPathOriginal  string
	OSSPathThumbnail string
	ImageSize        int64
}

type AppendResult struct {
	RowKey    string
	CreatedAt int64
}

// Append writes one image event. The row key is the creation timestamp plus a
// random base36 suffix, so simultaneous uploads in the same millisecond get
// distinct keys; collisions are treated as negligible, not impossible, and
// the write is unconditional.
func (s *ImageService) Append(ctx context.Context, p AppendParams) (AppendResult, error) {
	if p.DeviceID == "" || p.OSSPathOriginal == "" {
		return AppendResult{}, fmt.Errorf("%w: device_id and oss_path_original are required", domain.ErrValidation)
	}

	createdAt := s.now().UnixMilli()
	rowKey := strconv.FormatInt(createdAt, 10) + "-" + randomSuffix(rowKeySuffixLen)

	attrs := map[string]any{
		"device_id":          p.DeviceID,
		"has_motion":         p.HasMotion,
		"oss_path_original":  p.OSSPathOriginal,
		"oss_path_thumbnail": p.OSSPathThumbnail,
		"created_at":         createdAt,
		"image_size":         p.ImageSize,
	}
	key := store.Key{Partition: p.DeviceID, Sort: rowKey}
	if err := s.store.PutRow(ctx, s.table, key, attrs); err != nil {
		return AppendResult{}, err
	}
	return AppendResult{RowKey: rowKey, CreatedAt: createdAt}, nil
}

type ListParams struct {
	DeviceID  string
	StartTime string
	EndTime   string
	Limit     int32
	NextToken string
}

// List scans the device's events backward: newest first, bounded by the
// optional [start_time, end_time] millisecond window, at most Limit rows.
// The returned token is the store's continuation key; callers pass it back
// verbatim to fetch the next page.
func (s *ImageService) List(ctx context.Context, p ListParams) ([]domain.ImageEvent, string, error) {
	if p.DeviceID == "" {
		return nil, "", fmt.Errorf("%w: device_id is required", domain.ErrValidation)
	}

	start := p.StartTime
	if start == "" {
		start = "0"
	}
	end := p.EndTime
	if end == "" {
		end = strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, next, err := s.store.GetRange(ctx, store.RangeQuery{
		Table:        s.table,
		PartitionKey: p.DeviceID,
		StartRowKey:  start,
		// "~" sorts after every digit and base36 letter, so this bound sits
		// above every row key minted at end's millisecond.
		EndRowKey:  end + "-~",
		Limit:      limit,
		Columns:    imageColumns,
		StartToken: p.NextToken,
	})
	if err != nil {
		if errors.Is(err, store.ErrBadToken) {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return nil, "", err
	}

	events := make([]domain.ImageEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, eventFromRow(row))
	}
	return events, next, nil
}

func eventFromRow(row store.Row) domain.ImageEvent {
	return domain.ImageEvent{
		PartitionKey:     stringField(row, imagesPartitionAttr),
		RowKey:           stringField(row, imagesSortAttr),
		DeviceID:         stringField(row, "device_id"),
		HasMotion:        boolField(row, "has_motion"),
		OSSPathOriginal:  stringField(row, "oss_path_original"),
		OSSPathThumbnail: stringField(row, "oss_path_thumbnail"),
		CreatedAt:        int64Field(row, "created_at"),
		ImageSize:        int64Field(row, "image_size"),
	}
}

func stringField(row store.Row, name string) string {
	if v, ok := row[name].(string); ok {
		return v
	}
	return ""
}

func boolField(row store.Row, name string) bool {
	if v, ok := row[name].(bool); ok {
		return v
	}
	return false
}

func int64Field(row store.Row, name string) int64 {
	switch v := row[name].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case int:
		return int64(v)
	}
	return 0
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomSuffix disambiguates row keys minted within the same millisecond.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand does not fail on supported platforms; keep the key
		// usable anyway.
		return strconv.FormatInt(time.Now().UnixNano(), 36)[:n]
	}
	for i, b := range buf {
		buf[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(buf)
}
