package dto

type RegisterRequest struct {
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
	OwnerID    string `json:"owner_id"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	DeviceID string `json:"device_id"`
}
