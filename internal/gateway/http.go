package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rahul/salesgpt/internal/agent"
	"github.com/rahul/salesgpt/internal/knowledge"
	"github.com/rahul/salesgpt/internal/observability"
	"github.com/rahul/salesgpt/internal/tools"
)

const maxBodyBytes = 64 << 10

// Resetter is implemented by brains that keep per-chat history.
type Resetter interface {
	Reset(ctx context.Context, chatID string) error
}

// API serves the knowledge base and the sales agent over HTTP.
type API struct {
	KB       knowledge.KnowledgeBase
	Brain    agent.Brain
	Registry *tools.Registry
	// RateLimitPerMinute applies to /api/v1 routes. Zero disables it.
	RateLimitPerMinute int
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type chatRequest struct {
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	ChatID string `json:"chat_id"`
	Reply  string `json:"reply"`
}

type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Status: "error", Message: message, Code: code})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// Routes builds the chi router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(RequestID)
	if a.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(Logging)

	r.Get("/health", a.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(a.RateLimitPerMinute))
		r.Post("/ask", a.ask)
		r.Post("/chat", a.chat)
		r.Delete("/chat/{chat_id}", a.resetChat)
		r.Get("/tools", a.listTools)
	})

	return r
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if a.KB == nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"details": observability.GetStatus(),
	})
}

func (a *API) ask(w http.ResponseWriter, r *http.Request) {
	if a.KB == nil {
		writeError(w, http.StatusServiceUnavailable, "knowledge base is not configured")
		return
	}
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := a.KB.Run(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("knowledge base query failed")
		writeError(w, http.StatusBadGateway, "knowledge base query failed")
		return
	}
	observability.RecordRequest()
	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

func (a *API) chat(w http.ResponseWriter, r *http.Request) {
	if a.Brain == nil {
		writeError(w, http.StatusServiceUnavailable, "sales agent is not configured")
		return
	}
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.ChatID == "" {
		req.ChatID = uuid.NewString()
	}

	reply, err := a.Brain.Think(r.Context(), req.ChatID, req.Message)
	if err != nil {
		log.Error().Err(err).Str("chat_id", req.ChatID).Msg("agent turn failed")
		writeError(w, http.StatusBadGateway, "agent turn failed")
		return
	}
	observability.RecordRequest()
	writeJSON(w, http.StatusOK, chatResponse{ChatID: req.ChatID, Reply: reply})
}

func (a *API) resetChat(w http.ResponseWriter, r *http.Request) {
	rs, ok := a.Brain.(Resetter)
	if !ok {
		writeError(w, http.StatusNotImplemented, "agent keeps no history")
		return
	}
	if err := rs.Reset(r.Context(), chi.URLParam(r, "chat_id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listTools(w http.ResponseWriter, r *http.Request) {
	out := []toolInfo{}
	if a.Registry != nil {
		for _, t := range a.Registry.List() {
			out = append(out, toolInfo{Name: t.Name(), Description: t.Description(), Parameters: t.Parameters()})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HTTPServer runs the API until its context ends.
type HTTPServer struct {
	http *http.Server
}

func NewHTTPServer(addr string, api *API) *HTTPServer {
	return &HTTPServer{http: &http.Server{
		Addr:         addr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}}
}

func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("http api listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
