package dto

type TokenRequest struct {
	DeviceID string `json:"device_id"`
}

// TokenResponse carries short-lived credentials a camera uses to upload
// snapshots directly to the object store.
type TokenResponse struct {
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	SecurityToken   string `json:"security_token"`
	Expiration      string `json:"expiration"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
}
