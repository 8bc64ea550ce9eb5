package domain

// ImageEvent is one snapshot upload, keyed by (partition_key, row_key) in the
// images table. The row key is "<created_at millis>-<random suffix>", so a
// lexicographic scan over row keys doubles as a time-ordered scan. Events are
// written once and never mutated.
type ImageEvent struct {
	PartitionKey     string `json:"partition_key"`
	RowKey           string `json:"row_key"`
	DeviceID         string `json:"device_id"`
	HasMotion        bool   `json:"has_motion"`
	OSSPathOriginal  string `json:"oss_path_original"`
	OSSPathThumbnail string `json:"oss_path_thumbnail"`
	CreatedAt        int64  `json:"created_at"`
	ImageSize        int64  `json:"image_size"`
}
