// Package store adapts the hosted wide-column tables to a small record-store
// contract: point get/put by primary key, plus a backward range scan over a
// device's time-ordered rows. No business logic lives here; rows travel as
// flat attribute maps.
package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrRowNotFound is returned by GetRow when no row exists for the key.
	ErrRowNotFound = errors.New("row not found")
	// ErrUnavailable wraps transport or auth failures of the backing store.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrBadToken is returned when a continuation token cannot be decoded.
	ErrBadToken = errors.New("invalid continuation token")
)

// TableSpec names a table and its primary-key attribute names. SortAttr is
// empty for tables keyed by partition alone.
type TableSpec struct {
	Name          string
	PartitionAttr string
	SortAttr      string
}

// Key identifies one row. Sort is ignored for single-key tables.
type Key struct {
	Partition string
	Sort      string
}

// Row is the flat view of a stored row: primary-key fields plus attribute
// fields, values limited to scalars.
type Row map[string]any

// RangeQuery describes a backward scan over one partition. Rows whose sort
// key lies in (StartRowKey, EndRowKey] come back in descending key order, at
// most Limit of them, with an opaque continuation token when more remain.
type RangeQuery struct {
	Table        TableSpec
	PartitionKey string
	StartRowKey  string
	EndRowKey    string
	Limit        int32
	Columns      []string
	StartToken   string
}

// RecordStore is the adapter contract the repositories are built on.
type RecordStore interface {
	GetRow(ctx context.Context, table TableSpec, key Key) (Row, error)
	PutRow(ctx context.Context, table TableSpec, key Key, attrs map[string]any) error
	GetRange(ctx context.Context, q RangeQuery) ([]Row, string, error)
}

// pageToken is the continuation key serialized into the opaque token handed
// to clients. Callers pass it back verbatim; only this package looks inside.
type pageToken struct {
	PartitionKey string `json:"partition_key"`
	RowKey       string `json:"row_key"`
}

func encodePageToken(tok pageToken) string {
	data, err := json.Marshal(tok)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodePageToken(s string) (pageToken, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return pageToken{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	var tok pageToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return pageToken{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	return tok, nil
}
