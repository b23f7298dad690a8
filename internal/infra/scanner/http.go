package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// HTTPSource accepts codes posted by phones or other scanners on the
// local network.
type HTTPSource struct {
	addr        string
	server      *http.Server
	codes       chan string
	done        chan struct{}
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	router      *mux.Router
	rateLimiter *RateLimiter
	authToken   string
}

func NewHTTPSource(addr string, authToken string, logger *slog.Logger) *HTTPSource {
	h := &HTTPSource{
		addr:        addr,
		codes:       make(chan string, 10),
		done:        make(chan struct{}),
		logger:      logger,
		router:      mux.NewRouter().UseEncodedPath(),
		rateLimiter: NewRateLimiter(30, time.Minute),
		authToken:   authToken,
	}
	h.router.HandleFunc("/scan", h.rateLimiter.Middleware(h.handleScan)).Methods(http.MethodPost)
	// Cards can also carry a URL such as http://host:8080/scan/spotify%3Atrack%3A123.
	h.router.HandleFunc("/scan/{code}", h.rateLimiter.Middleware(h.handleScanPath)).Methods(http.MethodGet)
	h.router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	return h
}

func (h *HTTPSource) Name() string {
	return "http"
}

func (h *HTTPSource) Start(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return nil
	}

	select {
	case <-h.done:
		h.done = make(chan struct{})
	default:
	}

	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		h.logger.Info("scan submission server starting", "addr", h.addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("scan submission server error", "error", err)
		}
	}()

	h.running = true
	return nil
}

// Stop shuts the server down and wakes NextCode. The codes channel stays
// open so late handlers and InjectCode never send on a closed channel.
func (h *HTTPSource) Stop() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = false
	server := h.server
	close(h.done)
	h.mu.Unlock()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			h.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	return nil
}

func (h *HTTPSource) NextCode(ctx context.Context) (string, error) {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-done:
		return "", errors.New("scan source stopped")
	case code := <-h.codes:
		return code, nil
	}
}

func (h *HTTPSource) Handler() http.Handler {
	return h.router
}

// InjectCode queues a code as if it had been posted. It drops the code
// when the queue is full.
func (h *HTTPSource) InjectCode(code string) {
	select {
	case h.codes <- code:
	default:
	}
}

func (h *HTTPSource) handleScan(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	h.enqueue(w, string(data))
}

func (h *HTTPSource) handleScanPath(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	code, err := url.PathUnescape(mux.Vars(r)["code"])
	if err != nil {
		http.Error(w, "invalid code escaping", http.StatusBadRequest)
		return
	}

	h.enqueue(w, code)
}

func (h *HTTPSource) authorized(w http.ResponseWriter, r *http.Request) bool {
	if h.authToken == "" {
		return true
	}

	token := r.Header.Get("X-Auth-Token")
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token != h.authToken {
		h.logger.Warn("unauthorized scan request", "remote_addr", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (h *HTTPSource) enqueue(w http.ResponseWriter, raw string) {
	code := strings.TrimSpace(raw)
	if code == "" {
		http.Error(w, "empty code", http.StatusBadRequest)
		return
	}

	select {
	case h.codes <- code:
		h.logger.Info("received code via HTTP", "code", code)
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "received", "code": code})
	default:
		http.Error(w, "queue full, try again", http.StatusServiceUnavailable)
	}
}

func (h *HTTPSource) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	running := h.running
	queueSize := len(h.codes)
	h.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{"status": status, "running": running, "queue_size": queueSize})
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
