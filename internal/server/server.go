package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forkcast/forkcast/internal/config"
	"github.com/forkcast/forkcast/internal/model"
)

// Recommender is the service surface the HTTP layer depends on.
type Recommender interface {
	Recommend(ctx context.Context, req model.RecommendRequest) (*model.RecommendResponse, error)
	Random(ctx context.Context, req model.RecommendRequest, count int) (*model.RecommendResponse, error)
}

// Server exposes the recommendation pipeline over HTTP.
type Server struct {
	svc Recommender
	cfg config.Config
}

// New creates a Server around the given service.
func New(svc Recommender, cfg config.Config) *Server {
	return &Server{svc: svc, cfg: cfg}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/api/recommendations", s.handleRecommend)
	r.Post("/api/recommendations/random", s.handleRandom)

	return r
}

// requestLogger attaches a request id and logs each request with zap.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("X-Request-ID", reqID)

		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// recommendBody is the wire shape of a recommendation request. Coordinates
// are pointers so a missing field is distinguishable from zero.
type recommendBody struct {
	UserInput string   `json:"userInput"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    int      `json:"radius"`
	Count     int      `json:"count"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req, _, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := s.svc.Recommend(r.Context(), *req)
	if err != nil {
		zap.L().Error("recommendation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "restaurant search is temporarily unavailable")
		return
	}

	if resp.TotalFound == 0 {
		writeError(w, http.StatusNotFound, "no restaurants found near this location")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: resp})
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	req, count, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	if count == 0 {
		count = s.cfg.Recommend.FinalCount
	}
	if count < 1 || count > 10 {
		writeError(w, http.StatusBadRequest, "count must be between 1 and 10")
		return
	}

	resp, err := s.svc.Random(r.Context(), *req, count)
	if err != nil {
		zap.L().Error("random selection failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "restaurant search is temporarily unavailable")
		return
	}

	if resp.TotalFound == 0 {
		writeError(w, http.StatusNotFound, "no restaurants found near this location")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: resp})
}

// decodeRequest parses and validates the shared request fields, returning
// the validated request plus the raw count field (used only by the random
// endpoint). On failure it writes the error response and returns ok=false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*model.RecommendRequest, int, bool) {
	var body recommendBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, 0, false
	}
	if body.Latitude == nil || body.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return nil, 0, false
	}

	req := model.RecommendRequest{
		UserInput:    body.UserInput,
		Latitude:     *body.Latitude,
		Longitude:    *body.Longitude,
		RadiusMeters: body.Radius,
	}
	if err := req.ValidateCoords(); err != nil {
		writeError(w, http.StatusBadRequest, "coordinates out of range")
		return nil, 0, false
	}

	rc := s.cfg.Recommend
	if req.RadiusMeters == 0 {
		req.RadiusMeters = rc.RadiusDefaultMeters
	}
	if req.RadiusMeters < rc.RadiusMinMeters || req.RadiusMeters > rc.RadiusMaxMeters {
		writeError(w, http.StatusBadRequest, "radius out of range")
		return nil, 0, false
	}

	return &req, body.Count, true
}

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Success: false, Error: msg})
}
