// Package notify fans image events out to the chat webhooks configured on a
// device. Delivery is best effort: each target fails independently, failures
// are logged and counted but never travel back to the upload path, and there
// is no retry.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"camhub/internal/domain"
	"camhub/internal/observability/metrics"
)

const (
	webhookTimeout  = 5 * time.Second
	dispatchTimeout = 15 * time.Second
)

// ConfigSource is the slice of the device-config service the dispatcher needs
// to look up webhook targets.
type ConfigSource interface {
	Get(ctx context.Context, deviceID string) (domain.DeviceConfig, error)
}

// Event carries the image fields rendered into notification cards.
type Event struct {
	JobID           string
	DeviceID        string
	RowKey          string
	HasMotion       bool
	OSSPathOriginal string
	CreatedAt       int64
}

type Options struct {
	MonitorBaseURL string
	Workers        int
	QueueSize      int
}

type Dispatcher struct {
	configs    ConfigSource
	client     *http.Client
	monitorURL string
	log        *slog.Logger

	jobs chan Event
	wg   sync.WaitGroup
}

func NewDispatcher(configs ConfigSource, opts Options, log *slog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	d := &Dispatcher{
		configs:    configs,
		client:     &http.Client{Timeout: webhookTimeout},
		monitorURL: strings.TrimRight(opts.MonitorBaseURL, "/"),
		log:        log,
		jobs:       make(chan Event, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue hands the event to the background workers and returns immediately.
// The caller never observes delivery; when the queue is full the event is
// dropped with a log line rather than blocking the upload response.
func (d *Dispatcher) Enqueue(ev Event) {
	if ev.JobID == "" {
		ev.JobID = uuid.NewString()
	}
	select {
	case d.jobs <- ev:
	default:
		d.log.Warn("notification queue full, dropping event",
			"device_id", ev.DeviceID, "row_key", ev.RowKey)
	}
}

// Close stops accepting events and waits for in-flight deliveries.
func (d *Dispatcher) Close() {
	close(d.jobs)
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ev := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		if err := d.Dispatch(ctx, ev); err != nil {
			d.log.Warn("background notification dropped",
				"job_id", ev.JobID, "device_id", ev.DeviceID, "error", err)
		}
		cancel()
	}
}

// Dispatch looks up the device config and delivers the event to every
// configured webhook concurrently. A missing device or a store fault comes
// back as an error (the internal trigger route maps those to 404/500);
// per-target delivery failures are logged and swallowed, and one target's
// failure never keeps another from being attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if ev.DeviceID == "" {
		return fmt.Errorf("%w: device_id is required", domain.ErrValidation)
	}

	cfg, err := d.configs.Get(ctx, ev.DeviceID)
	if err != nil {
		return err
	}
	if !cfg.NotifyEnabled() {
		d.log.Info("notifications disabled", "device_id", ev.DeviceID)
		return nil
	}

	type target struct {
		platform string
		url      string
		payload  any
	}
	var targets []target
	if url := cfg.StringAttr(domain.AttrFeishuWebhook); url != "" {
		targets = append(targets, target{"feishu", url, feishuCard(cfg, ev, d.monitorURL)})
	}
	if url := cfg.StringAttr(domain.AttrDingTalkWebhook); url != "" {
		targets = append(targets, target{"dingtalk", url, dingtalkCard(cfg, ev, d.monitorURL)})
	}
	if len(targets) == 0 {
		d.log.Info("no webhook configured", "device_id", ev.DeviceID)
		return nil
	}

	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func(t target) {
			defer wg.Done()
			if err := d.post(ctx, t.url, t.payload); err != nil {
				metrics.NotificationsTotal.WithLabelValues(t.platform, "failure").Inc()
				d.log.Warn("webhook delivery failed",
					"platform", t.platform, "device_id", ev.DeviceID, "error", err)
				return
			}
			metrics.NotificationsTotal.WithLabelValues(t.platform, "success").Inc()
			d.log.Info("webhook delivered", "platform", t.platform, "device_id", ev.DeviceID)
		}(t)
	}
	wg.Wait()
	return nil
}

func (d *Dispatcher) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

func monitorPageURL(base, deviceID string) string {
	return base + "/device/" + deviceID
}

func formatEventTime(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05 UTC")
}

func deviceDisplayName(cfg domain.DeviceConfig) string {
	if name := cfg.StringAttr(domain.AttrDeviceName); name != "" {
		return name
	}
	return "unnamed"
}
