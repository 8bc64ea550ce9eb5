package notify

import (
	"fmt"

	"camhub/internal/domain"
)

// dingtalkCard builds the actionCard posted to a DingTalk bot webhook,
// mirroring the Feishu card's content and buttons.
func dingtalkCard(cfg domain.DeviceConfig, ev Event, monitorURL string) map[string]any {
	text := fmt.Sprintf(
		"### %s\n\n**Device ID**: %s\n**Time**: %s\n**Action**: motion detected, snapshot saved to cloud storage",
		deviceDisplayName(cfg), ev.DeviceID, formatEventTime(ev.CreatedAt),
	)
	return map[string]any{
		"msgtype": "actionCard",
		"actionCard": map[string]any{
			"title":          "📸 Motion detected",
			"text":           text,
			"btnOrientation": "1",
			"btns": []any{
				map[string]any{
					"title":     "View image",
					"actionURL": ev.OSSPathOriginal,
				},
				map[string]any{
					"title":     "Open monitor page",
					"actionURL": monitorPageURL(monitorURL, ev.DeviceID),
				},
			},
		},
	}
}
