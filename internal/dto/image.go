package dto

import "camhub/internal/domain"

type UploadImageRequest struct {
	DeviceID         string `json:"device_id"`
	OSSPathOriginal  string `json:"oss_path_original"`
	OSSPathThumbnail string `json:"oss_path_thumbnail"`
	HasMotion        bool   `json:"has_motion"`
	ImageSize        int64  `json:"image_size"`
}

type UploadImageResponse struct {
	Message   string `json:"message"`
	RowKey    string `json:"row_key"`
	CreatedAt int64  `json:"created_at"`
}

type ListImagesResponse struct {
	Images    []domain.ImageEvent `json:"images"`
	NextToken string              `json:"next_token,omitempty"`
}
