package httpserver

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appcompliance "github.com/bryanwahyu/audit-compliance/internal/application/compliance"
	"github.com/bryanwahyu/audit-compliance/internal/middleware"
)

const maxBodyBytes = 1 << 20

//go:embed web/index.html
var webFS embed.FS

// Options carries the optional cross-cutting pieces of the router.
type Options struct {
	Logger         zerolog.Logger
	Metrics        *middleware.Metrics
	AllowedOrigins []string
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	svc *appcompliance.Service
	log zerolog.Logger
}

func NewRouter(svc *appcompliance.Service, opts Options) http.Handler {
	r := &Router{svc: svc, log: opts.Logger}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logging(opts.Logger))
	mux.Use(chimw.Recoverer)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/", r.handleIndex)
	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler)
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Route("/api", func(rt chi.Router) {
		rt.Get("/controls", r.wrap(r.handleControls))
		rt.Post("/assess", r.wrap(r.handleAssess))
		rt.Post("/chat", r.wrap(r.handleChat))
		rt.Post("/gap-analysis", r.wrap(r.handleGapAnalysis))
		rt.Get("/history", r.wrap(r.handleHistory))
		rt.Post("/history/archive", r.wrap(r.handleArchive))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap turns a returned error into the JSON error envelope.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var verr *appcompliance.ValidationError
			status := http.StatusInternalServerError
			if errors.As(err, &verr) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorResponse{Error: err.Error()})
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// decodeStrict decodes exactly one JSON object into v and rejects unknown fields.
func decodeStrict(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &appcompliance.ValidationError{Msg: "request body too large"}
		}
		if errors.Is(err, io.EOF) {
			return &appcompliance.ValidationError{Msg: "request body is required"}
		}
		return &appcompliance.ValidationError{Msg: fmt.Sprintf("invalid request body: %v", err)}
	}
	if dec.More() {
		return &appcompliance.ValidationError{Msg: "invalid request body: trailing data"}
	}
	return nil
}

func (r *Router) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "index not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
