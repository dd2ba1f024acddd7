package web

import (
	"net/http"

	uciface "fair-model-service/internal/domain/ports/usecase"
	"fair-model-service/internal/infra/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PredictPath is advertised by GET / as the place to send inputs.
const PredictPath = "/predict"

// maxBodyBytes bounds a predict payload.
const maxBodyBytes = 10 << 20

type Server struct {
	svc  uciface.InferenceService
	rate string
	log  *zerolog.Logger
}

// NewServer builds the HTTP layer over an inference service. rate uses the
// limiter format ("100-S", "1000-H"); empty disables rate limiting.
func NewServer(svc uciface.InferenceService, rate string, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{svc: svc, rate: rate, log: &l}
}

// Routes returns the router with every endpoint and middleware attached.
func (s *Server) Routes() (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), RequestLog(s.log), Metrics())
	if s.rate != "" {
		rl, err := RateLimit(s.rate)
		if err != nil {
			return nil, err
		}
		r.Use(rl)
	}

	r.Get("/", s.handleRoot)
	r.Post(PredictPath, s.handlePredict)
	r.Get("/status", s.handleStatus)
	r.Get("/result", s.handleResult)
	r.Get("/docs", s.handleDocs)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r, nil
}
