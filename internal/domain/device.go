package domain

// Well-known config attribute names. Everything else in a DeviceConfig is
// opaque to the service and round-trips untouched.
const (
	AttrDeviceID        = "device_id"
	AttrDeviceName      = "device_name"
	AttrOwnerID         = "owner_id"
	AttrUpdatedAt       = "updated_at"
	AttrRegisteredAt    = "registered_at"
	AttrNotifyEnabled   = "notify_enabled"
	AttrFeishuWebhook   = "feishu_webhook"
	AttrDingTalkWebhook = "dingtalk_webhook"
)

// DeviceConfig is the open-schema configuration of one camera: a flat mapping
// of attribute name to scalar value (string, number or bool), plus the
// device_id it is keyed by. There is no fixed column set; devices store
// whatever attributes their owners write.
type DeviceConfig map[string]any

// DeviceID returns the device identifier carried in the config view.
func (c DeviceConfig) DeviceID() string {
	return c.StringAttr(AttrDeviceID)
}

// StringAttr returns the named attribute when it is a string, "" otherwise.
func (c DeviceConfig) StringAttr(name string) string {
	if v, ok := c[name].(string); ok {
		return v
	}
	return ""
}

// NotifyEnabled reports whether notifications should fire for this device.
// Only the literal string "false" disables them; an unset attribute or any
// other value leaves them on.
func (c DeviceConfig) NotifyEnabled() bool {
	return c.StringAttr(AttrNotifyEnabled) != "false"
}
