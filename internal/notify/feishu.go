package notify

import (
	"fmt"

	"camhub/internal/domain"
)

// feishuCard builds the interactive card posted to a Feishu bot webhook:
// device name, id and timestamp up top, then buttons linking to the snapshot
// and the device's monitor page.
func feishuCard(cfg domain.DeviceConfig, ev Event, monitorURL string) map[string]any {
	body := fmt.Sprintf(
		"**Device**: %s\n**Device ID**: %s\n**Time**: %s\n**Action**: motion detected, snapshot saved to cloud storage",
		deviceDisplayName(cfg), ev.DeviceID, formatEventTime(ev.CreatedAt),
	)
	return map[string]any{
		"msg_type": "interactive",
		"card": map[string]any{
			"header": map[string]any{
				"title": map[string]any{
					"tag":     "plain_text",
					"content": "📸 Motion detected",
				},
				"template": "red",
			},
			"elements": []any{
				map[string]any{
					"tag": "div",
					"text": map[string]any{
						"tag":     "lark_md",
						"content": body,
					},
				},
				map[string]any{
					"tag": "action",
					"actions": []any{
						map[string]any{
							"tag":  "button",
							"text": map[string]any{"tag": "plain_text", "content": "View image"},
							"type": "primary",
							"url":  ev.OSSPathOriginal,
						},
						map[string]any{
							"tag":  "button",
							"text": map[string]any{"tag": "plain_text", "content": "Open monitor page"},
							"url":  monitorPageURL(monitorURL, ev.DeviceID),
						},
					},
				},
			},
		},
	}
}
