package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/repochat/repochat/internal/answer"
	"github.com/repochat/repochat/internal/config"
	"github.com/repochat/repochat/internal/embed"
	"github.com/repochat/repochat/internal/session"
	"github.com/repochat/repochat/internal/vectorstore"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(os.Getenv("REPOCHAT_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Server.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	store, err := vectorstore.NewChromaStore(cfg.ChromaDB.URL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create vector store client")
	}
	embedder, err := embed.Select(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to select embedding backend")
	}
	completer := answer.NewOpenAICompleter(cfg.LLM)

	h := &handler{
		cfg:     cfg,
		session: session.New(cfg, store, embedder, completer, logger),
		logger:  logger,
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: h.routes(),
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	h.session.Reset()
	logger.Info().Msg("server exiting")
}

// handler serializes access to the single server-owned session; the pipeline
// itself is synchronous and not safe for concurrent use.
type handler struct {
	cfg     *config.Config
	session *session.Session
	logger  zerolog.Logger

	mu sync.Mutex
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /load", h.handleLoad)
	mux.HandleFunc("POST /query", h.handleQuery)
	return mux
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loadRequest struct {
	URL string `json:"url"`
}

func (h *handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"url\": \"...\"}"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.Load(r.Context(), req.URL); err != nil {
		h.logger.Error().Err(err).Str("url", req.URL).Msg("load failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"repo":       h.session.RepoName(),
		"collection": h.session.Collection(),
		"stats":      h.session.Stats(),
	})
}

type queryRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

func (h *handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"question\": \"...\"}"})
		return
	}
	if req.K == 0 {
		req.K = h.cfg.Retrieval.K
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.session.Ask(r.Context(), req.Question, req.K))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
