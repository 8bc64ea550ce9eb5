package dto

// NotifyRequest is the internal trigger payload: the image event fields the
// upload path fans out to chat webhooks.
type NotifyRequest struct {
	DeviceID         string `json:"device_id"`
	RowKey           string `json:"row_key,omitempty"`
	HasMotion        bool   `json:"has_motion"`
	OSSPathOriginal  string `json:"oss_path_original"`
	OSSPathThumbnail string `json:"oss_path_thumbnail,omitempty"`
	CreatedAt        int64  `json:"created_at"`
	ImageSize        int64  `json:"image_size,omitempty"`
}

type NotifyResponse struct {
	Message string `json:"message"`
}
