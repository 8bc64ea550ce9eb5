package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"camhub/internal/dto"
	"camhub/internal/notify"
	"camhub/internal/observability/metrics"
	"camhub/internal/service"
)

type handler struct {
	configs    *service.DeviceConfigService
	images     *service.ImageService
	tokens     *service.TokenService
	dispatcher *notify.Dispatcher
}

func (h *handler) getConfig(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	cfg, err := h.configs.Get(r.Context(), deviceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *handler) putConfig(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	var attrs map[string]any
	if !decodeJSON(w, r, &attrs) {
		return
	}
	cfg, err := h.configs.Put(r.Context(), deviceID, attrs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConfigEnvelope{Message: "Device config saved", Config: cfg})
}

func (h *handler) patchConfig(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	var updates map[string]any
	if !decodeJSON(w, r, &updates) {
		return
	}
	cfg, err := h.configs.Patch(r.Context(), deviceID, updates)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ConfigEnvelope{Message: "Device config updated", Config: cfg})
}

func (h *handler) issueToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.tokens.IssueUploadToken(r.Context(), req.DeviceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "device_id is required"})
		return
	}
	if _, err := h.configs.Register(r.Context(), req.DeviceID, req.DeviceName, req.OwnerID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RegisterResponse{Message: "Device registered", DeviceID: req.DeviceID})
}

func (h *handler) listImages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var limit int32
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		limit = int32(n)
	}

	events, next, err := h.images.List(r.Context(), service.ListParams{
		DeviceID:  q.Get("device_id"),
		StartTime: q.Get("start_time"),
		EndTime:   q.Get("end_time"),
		Limit:     limit,
		NextToken: q.Get("next_token"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListImagesResponse{Images: events, NextToken: next})
}

func (h *handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	var req dto.UploadImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.images.Append(r.Context(), service.AppendParams{
		DeviceID:         req.DeviceID,
		HasMotion:        req.HasMotion,
		OSSPathOriginal:  req.OSSPathOriginal,
		OSSPathThumbnail: req.OSSPathThumbnail,
		ImageSize:        req.ImageSize,
	})
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("failure").Inc()
		writeError(w, r, err)
		return
	}
	metrics.ImageUploadsTotal.WithLabelValues("success").Inc()

	// The response does not wait on notification delivery; the event is
	// durably written and the fan-out proceeds in the background.
	h.dispatcher.Enqueue(notify.Event{
		DeviceID:        req.DeviceID,
		RowKey:          res.RowKey,
		HasMotion:       req.HasMotion,
		OSSPathOriginal: req.OSSPathOriginal,
		CreatedAt:       res.CreatedAt,
	})

	writeJSON(w, http.StatusOK, dto.UploadImageResponse{
		Message:   "success",
		RowKey:    res.RowKey,
		CreatedAt: res.CreatedAt,
	})
}

func (h *handler) notifyDevice(w http.ResponseWriter, r *http.Request) {
	var req dto.NotifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.dispatcher.Dispatch(r.Context(), notify.Event{
		DeviceID:        req.DeviceID,
		RowKey:          req.RowKey,
		HasMotion:       req.HasMotion,
		OSSPathOriginal: req.OSSPathOriginal,
		CreatedAt:       req.CreatedAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NotifyResponse{Message: "Notifications sent"})
}
