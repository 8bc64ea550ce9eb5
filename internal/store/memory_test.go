package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"camhub/internal/store"
)

var (
	devicesTable = store.TableSpec{Name: "devices", PartitionAttr: "device_id"}
	imagesTable  = store.TableSpec{Name: "images", PartitionAttr: "partition_key", SortAttr: "row_key"}
)

func TestGetRowNotFound(t *testing.T) {
	s := store.NewMemoryStore()

	_, err := s.GetRow(context.Background(), devicesTable, store.Key{Partition: "cam-1"})
	if !errors.Is(err, store.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
}

func TestPutRowReplacesWholeRow(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	key := store.Key{Partition: "cam-1"}

	if err := s.PutRow(ctx, devicesTable, key, map[string]any{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutRow(ctx, devicesTable, key, map[string]any{"c": "3"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	row, err := s.GetRow(ctx, devicesTable, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := row["a"]; ok {
		t.Fatalf("expected old attribute gone after full replace, got %v", row)
	}
	if row["c"] != "3" {
		t.Fatalf("expected c=3, got %v", row["c"])
	}
	if row["device_id"] != "cam-1" {
		t.Fatalf("expected key attribute in row, got %v", row["device_id"])
	}
}

func seedRange(t *testing.T, s *store.MemoryStore, device string, n int) []string {
	t.Helper()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rowKey := fmt.Sprintf("%d-abcdefghi", 1000+i)
		err := s.PutRow(context.Background(), imagesTable,
			store.Key{Partition: device, Sort: rowKey},
			map[string]any{"created_at": int64(1000 + i)})
		if err != nil {
			t.Fatalf("put row %d: %v", i, err)
		}
		keys = append(keys, rowKey)
	}
	return keys
}

func TestGetRangeBackwardOrderAndBounds(t *testing.T) {
	s := store.NewMemoryStore()
	seedRange(t, s, "cam-1", 5) // row keys at 1000..1004
	seedRange(t, s, "cam-2", 3) // other partition must not leak

	rows, next, err := s.GetRange(context.Background(), store.RangeQuery{
		Table:        imagesTable,
		PartitionKey: "cam-1",
		StartRowKey:  "1001", // excludes 1000..1001's bare bound, includes 1001's row (suffix sorts above)
		EndRowKey:    "1003-~",
		Limit:        50,
	})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if next != "" {
		t.Fatalf("expected no continuation token, got %q", next)
	}
	// "1001-abcdefghi" > "1001" so the row at the start bound is included.
	want := []string{"1003-abcdefghi", "1002-abcdefghi", "1001-abcdefghi"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, w := range want {
		if rows[i]["row_key"] != w {
			t.Fatalf("row %d: expected %s, got %v", i, w, rows[i]["row_key"])
		}
	}
}

func TestGetRangePagination(t *testing.T) {
	s := store.NewMemoryStore()
	seedRange(t, s, "cam-1", 5)

	q := store.RangeQuery{
		Table:        imagesTable,
		PartitionKey: "cam-1",
		StartRowKey:  "0",
		EndRowKey:    "9999-~",
		Limit:        2,
	}

	var got []string
	for page := 0; ; page++ {
		rows, next, err := s.GetRange(context.Background(), q)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		for _, row := range rows {
			got = append(got, row["row_key"].(string))
		}
		if next == "" {
			break
		}
		if page > 5 {
			t.Fatalf("pagination did not terminate")
		}
		q.StartToken = next
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 rows across pages, got %d: %v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] >= got[i-1] {
			t.Fatalf("rows not in descending order: %v", got)
		}
	}
}

func TestGetRangeBadToken(t *testing.T) {
	s := store.NewMemoryStore()

	_, _, err := s.GetRange(context.Background(), store.RangeQuery{
		Table:        imagesTable,
		PartitionKey: "cam-1",
		StartRowKey:  "0",
		EndRowKey:    "9-~",
		StartToken:   "not base64 json!",
	})
	if !errors.Is(err, store.ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

func TestGetRangeColumnProjection(t *testing.T) {
	s := store.NewMemoryStore()
	err := s.PutRow(context.Background(), imagesTable,
		store.Key{Partition: "cam-1", Sort: "1000-abcdefghi"},
		map[string]any{"created_at": int64(1000), "secret": "x"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	rows, _, err := s.GetRange(context.Background(), store.RangeQuery{
		Table:        imagesTable,
		PartitionKey: "cam-1",
		StartRowKey:  "0",
		EndRowKey:    "9999-~",
		Limit:        10,
		Columns:      []string{"created_at"},
	})
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if _, ok := rows[0]["secret"]; ok {
		t.Fatalf("expected unprojected column dropped, got %v", rows[0])
	}
	// Key attributes always come back even when not listed.
	if rows[0]["partition_key"] != "cam-1" || rows[0]["row_key"] != "1000-abcdefghi" {
		t.Fatalf("expected key attributes projected, got %v", rows[0])
	}
}
