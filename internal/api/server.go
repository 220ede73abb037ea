package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/dstepanov/hwpolicy/internal/document"
	"github.com/dstepanov/hwpolicy/internal/policy"
	"github.com/dstepanov/hwpolicy/internal/snapshot"
	"github.com/dstepanov/hwpolicy/internal/store"
	"github.com/dstepanov/hwpolicy/internal/telemetry"
)

// maxDocumentSize caps PUT /v1/policy request bodies.
const maxDocumentSize = 1 << 20

type Server struct {
	store       store.Store
	adminAPIKey string
	buildOpts   document.BuildOptions
	features    policy.FeatureSet
	rateLimit   int
	logger      zerolog.Logger
}

// Options configures a Server.
type Options struct {
	AdminAPIKey    string
	BuildOptions   document.BuildOptions
	Features       policy.FeatureSet // nil selects policy.DefaultFeatures
	RateLimitPerIP int               // <= 0 disables rate limiting
	Logger         zerolog.Logger
}

func NewServer(st store.Store, opts Options) *Server {
	features := opts.Features
	if features == nil {
		features = policy.DefaultFeatures
	}
	buildOpts := opts.BuildOptions
	if buildOpts.Logger == nil {
		buildOpts.Logger = &opts.Logger
	}
	return &Server{
		store:       st,
		adminAPIKey: opts.AdminAPIKey,
		buildOpts:   buildOpts,
		features:    features,
		rateLimit:   opts.RateLimitPerIP,
		logger:      opts.Logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware)
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))

		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})

		r.Get("/v1/policy", s.handleGetPolicy)
		r.Get("/v1/policy/document", s.handleGetDocument)
		r.Put("/v1/policy", s.authAdmin(s.handlePutPolicy))
		r.Post("/v1/evaluate", s.handleEvaluate)
	})

	// SSE stays open past any request timeout.
	r.Get("/v1/policy/events", s.handleEvents)

	return r
}

// ApplyPolicy builds a policy set from raw JSON, persists the document and
// swaps the active snapshot. Failures leave the previous snapshot in place.
func (s *Server) ApplyPolicy(ctx context.Context, raw []byte) (*snapshot.Snapshot, error) {
	set, err := document.Build(raw, s.buildOpts)
	if err != nil {
		telemetry.PolicyLoads.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := s.store.SaveDocument(ctx, raw); err != nil {
		telemetry.PolicyLoads.WithLabelValues("error").Inc()
		return nil, err
	}

	snap := snapshot.New(set, raw)
	snapshot.Update(snap)

	telemetry.PolicyLoads.WithLabelValues("ok").Inc()
	telemetry.PolicyRules.Set(float64(set.NumRules()))
	telemetry.PolicyMaxRuleID.Set(float64(set.MaxRuleID()))

	s.logger.Info().
		Int("rules", set.NumRules()).
		Uint32("maxRuleId", set.MaxRuleID()).
		Str("etag", snap.ETag).
		Bool("unknownFields", set.ContainsUnknownFields()).
		Msg("policy applied")
	return snap, nil
}

// ---- handlers ----

type policyMetaResponse struct {
	FormatVersion         string `json:"formatVersion"`
	NumRules              int    `json:"numRules"`
	MaxRuleID             uint32 `json:"maxRuleId"`
	ContainsUnknownFields bool   `json:"containsUnknownFields"`
	ETag                  string `json:"etag"`
	LoadedAt              string `json:"loadedAt"`
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if snap == nil {
		NotFoundError(w, r, "no policy loaded")
		return
	}
	writeJSON(w, http.StatusOK, policyMetaResponse{
		FormatVersion:         snap.Set.FormatVersion(),
		NumRules:              snap.Set.NumRules(),
		MaxRuleID:             snap.Set.MaxRuleID(),
		ContainsUnknownFields: snap.Set.ContainsUnknownFields(),
		ETag:                  snap.ETag,
		LoadedAt:              snap.LoadedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	snap := snapshot.Load()
	if snap == nil {
		NotFoundError(w, r, "no policy loaded")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", snap.ETag)
	_, _ = w.Write(snap.Raw)
}

type putPolicyResponse struct {
	OK                    bool   `json:"ok"`
	ETag                  string `json:"etag"`
	NumRules              int    `json:"numRules"`
	MaxRuleID             uint32 `json:"maxRuleId"`
	ContainsUnknownFields bool   `json:"containsUnknownFields"`
}

func (s *Server) handlePutPolicy(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r, maxDocumentSize)
	if err != nil {
		return // readBody already responded
	}

	snap, err := s.ApplyPolicy(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, document.ErrInvalidJSON):
			BadRequestError(w, r, ErrCodeInvalidJSON, err.Error())
		case errors.Is(err, document.ErrUnsupportedFormat):
			BadRequestError(w, r, ErrCodeUnsupportedFormat, err.Error())
		case errors.Is(err, policy.ErrMalformedDocument), errors.Is(err, policy.ErrMalformedEntry):
			BadRequestError(w, r, ErrCodeMalformedDocument, err.Error())
		default:
			s.logger.Error().Err(err).Msg("policy apply failed")
			InternalError(w, r, "failed to apply policy")
		}
		return
	}

	writeJSON(w, http.StatusOK, putPolicyResponse{
		OK:                    true,
		ETag:                  snap.ETag,
		NumRules:              snap.Set.NumRules(),
		MaxRuleID:             snap.Set.MaxRuleID(),
		ContainsUnknownFields: snap.Set.ContainsUnknownFields(),
	})
}

// ---- middleware ----

func (s *Server) authAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer"))
		if got == "" {
			UnauthorizedError(w, r, "missing bearer token")
			return
		}
		// constant-time compare
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.adminAPIKey)) != 1 {
			ForbiddenError(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	}
}
