package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process RecordStore used by tests and local runs.
// It mirrors the hosted store's observable behavior: full-row upserts,
// backward range scans in descending sort-key order, continuation tokens.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string]map[string]Row{}}
}

const keySep = "\x00"

func (s *MemoryStore) GetRow(_ context.Context, table TableSpec, key Key) (Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.tables[table.Name][key.Partition+keySep+key.Sort]
	if !ok {
		return nil, ErrRowNotFound
	}
	return cloneRow(row), nil
}

func (s *MemoryStore) PutRow(_ context.Context, table TableSpec, key Key, attrs map[string]any) error {
	row := make(Row, len(attrs)+2)
	for k, v := range attrs {
		row[k] = v
	}
	row[table.PartitionAttr] = key.Partition
	if table.SortAttr != "" {
		row[table.SortAttr] = key.Sort
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tables[table.Name]
	if !ok {
		rows = map[string]Row{}
		s.tables[table.Name] = rows
	}
	rows[key.Partition+keySep+key.Sort] = row
	return nil
}

func (s *MemoryStore) GetRange(_ context.Context, q RangeQuery) ([]Row, string, error) {
	resumeBelow := ""
	if q.StartToken != "" {
		tok, err := decodePageToken(q.StartToken)
		if err != nil {
			return nil, "", err
		}
		resumeBelow = tok.RowKey
	}

	s.mu.RLock()
	var sortKeys []string
	prefix := q.PartitionKey + keySep
	for composite := range s.tables[q.Table.Name] {
		if !strings.HasPrefix(composite, prefix) {
			continue
		}
		sk := strings.TrimPrefix(composite, prefix)
		if sk <= q.StartRowKey || sk > q.EndRowKey {
			continue
		}
		if resumeBelow != "" && sk >= resumeBelow {
			continue
		}
		sortKeys = append(sortKeys, sk)
	}
	s.mu.RUnlock()

	sort.Sort(sort.Reverse(sort.StringSlice(sortKeys)))

	limit := int(q.Limit)
	next := ""
	if limit > 0 && len(sortKeys) > limit {
		sortKeys = sortKeys[:limit]
		next = encodePageToken(pageToken{
			PartitionKey: q.PartitionKey,
			RowKey:       sortKeys[len(sortKeys)-1],
		})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]Row, 0, len(sortKeys))
	for _, sk := range sortKeys {
		rows = append(rows, project(q, s.tables[q.Table.Name][q.PartitionKey+keySep+sk]))
	}
	return rows, next, nil
}

func project(q RangeQuery, row Row) Row {
	if len(q.Columns) == 0 {
		return cloneRow(row)
	}
	out := make(Row, len(q.Columns)+2)
	for _, col := range q.Columns {
		if v, ok := row[col]; ok {
			out[col] = v
		}
	}
	if v, ok := row[q.Table.PartitionAttr]; ok {
		out[q.Table.PartitionAttr] = v
	}
	if q.Table.SortAttr != "" {
		if v, ok := row[q.Table.SortAttr]; ok {
			out[q.Table.SortAttr] = v
		}
	}
	return out
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
