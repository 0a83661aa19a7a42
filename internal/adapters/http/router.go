package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/graphragio/gateway/internal/adapters/http/oai"
	"github.com/graphragio/gateway/internal/core/ports"
	"github.com/graphragio/gateway/internal/observability/metrics"
)

type Router struct {
	chat    ports.ChatService
	refs    ports.ReferenceService
	apiKey  string
	service string
	metrics *metrics.HTTPServerMetrics
	limiter *rateLimiter
	ready   func(ctx context.Context) error
	origins []string
}

type RouterOptions struct {
	// APIKey guards /v1 endpoints with bearer auth when non-empty.
	APIKey string
	// Service labels metrics and access logs.
	Service string
	// RateLimitRPS caps accepted requests per second; zero disables limiting.
	RateLimitRPS float64
	RateBurst    int
	// Ready reports whether the default index is loaded; nil means always
	// ready.
	Ready func(ctx context.Context) error
	// CORSOrigins lists the origins allowed cross-origin access; empty means
	// all ("*").
	CORSOrigins []string
}

func NewRouter(chat ports.ChatService, refs ports.ReferenceService, m *metrics.HTTPServerMetrics, opts RouterOptions) *Router {
	if opts.Service == "" {
		opts.Service = "gateway"
	}
	var limiter *rateLimiter
	if opts.RateLimitRPS > 0 {
		limiter = newRateLimiter(opts.RateLimitRPS, opts.RateBurst)
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Router{
		chat:    chat,
		refs:    refs,
		apiKey:  opts.APIKey,
		service: opts.Service,
		metrics: m,
		limiter: limiter,
		ready:   opts.Ready,
		origins: opts.CORSOrigins,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.root)
	mux.HandleFunc("/health", rt.health)
	mux.HandleFunc("/v1/models", rt.withAuth(rt.listModels))
	mux.HandleFunc("/v1/chat/completions", rt.withAuth(rt.chatCompletions))
	mux.HandleFunc("/v1/references/", rt.reference)
	mux.HandleFunc("/v1/advice_questions", rt.adviceQuestions)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	handler = accessLogMiddleware(handler)
	if rt.limiter != nil {
		handler = rt.limiter.middleware(handler)
	}
	handler = corsMiddleware(rt.origins, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, oai.ErrorResponse{Error: "not found"})
		return
	}
	rt.renderIndexPage(w)
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	if rt.ready != nil {
		if err := rt.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unavailable",
				"message": err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, oai.ErrorResponse{Error: "method not allowed"})
		return
	}

	created := time.Now().Unix()
	ids := rt.chat.ModelIDs()
	models := make([]oai.Model, 0, len(ids))
	for _, id := range ids {
		models = append(models, oai.Model{
			ID:      id,
			Object:  "model",
			Created: created,
			OwnedBy: "graphrag",
		})
	}
	writeJSON(w, http.StatusOK, oai.ModelList{Object: "list", Data: models})
}

// adviceQuestions mirrors an endpoint some chat frontends probe for; question
// suggestion is not implemented.
func (rt *Router) adviceQuestions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotImplemented, oai.ErrorResponse{Error: "advice questions are not implemented"})
}

func (rt *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt.apiKey != "" && !isAuthorizedBearerHeader(r.Header.Get("Authorization"), rt.apiKey) {
			writeJSON(w, http.StatusUnauthorized, oai.ErrorResponse{Error: "unauthorized"})
			return
		}
		next(w, r)
	}
}

func isAuthorizedBearerHeader(headerValue, expectedToken string) bool {
	headerValue = strings.TrimSpace(headerValue)
	if headerValue == "" || expectedToken == "" {
		return false
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(headerValue, bearerPrefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(headerValue, bearerPrefix))
	return token == expectedToken
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
