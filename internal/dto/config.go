package dto

import "camhub/internal/domain"

// ConfigEnvelope wraps config writes: a human message plus the echoed view.
type ConfigEnvelope struct {
	Message string              `json:"message"`
	Config  domain.DeviceConfig `json:"config"`
}
