package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"camhub/internal/notify"
	obsmw "camhub/internal/observability/middleware"
	"camhub/internal/service"
)

// Deps wires the router to the services it exposes.
type Deps struct {
	Configs    *service.DeviceConfigService
	Images     *service.ImageService
	Tokens     *service.TokenService
	Dispatcher *notify.Dispatcher

	// CORSOrigins is empty for the default allow-none policy.
	CORSOrigins []string
}

func NewRouter(deps Deps) *chi.Mux {
	h := &handler{
		configs:    deps.Configs,
		images:     deps.Images,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
	}

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(httprate.LimitByIP(100, 1*time.Minute))
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: deps.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(obsmw.WithMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/device/{id}/config", func(r chi.Router) {
		r.Get("/", h.getConfig)
		r.Post("/", h.putConfig)
		r.Patch("/", h.patchConfig)
	})

	r.Post("/token", h.issueToken)
	r.Post("/register", h.register)

	r.Get("/images/list", h.listImages)
	r.Post("/images/upload", h.uploadImage)

	// Internal trigger mirroring the fan-out the upload path enqueues; kept
	// addressable so operators can replay a notification.
	r.Post("/internal/notify", h.notifyDevice)

	return r
}
