// Package server exposes an inspector over HTTP on a unix socket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/grovetools/sigscope/errors"
	"github.com/grovetools/sigscope/pkg/client"
	"github.com/grovetools/sigscope/pkg/console"
	"github.com/grovetools/sigscope/pkg/export"
	"github.com/grovetools/sigscope/pkg/filter"
	"github.com/grovetools/sigscope/pkg/inspector"
	"github.com/grovetools/sigscope/pkg/metrics"
	"github.com/grovetools/sigscope/pkg/signal"
	"github.com/grovetools/sigscope/pkg/source"
)

// maxBody bounds request bodies for patch and command endpoints.
const maxBody = 4 << 20

var upgrader = websocket.Upgrader{
	// The socket is local and 0600, so any origin that reaches it is trusted.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server serves one inspector session.
type Server struct {
	logger        *logrus.Entry
	server        *http.Server
	insp          *inspector.Inspector
	console       *console.Evaluator
	registry      *prometheus.Registry
	runningConfig *client.RunningConfig
	fuzzy         bool
}

// New creates a server for insp.
func New(logger *logrus.Entry, insp *inspector.Inspector) *Server {
	return &Server{
		logger:  logger,
		insp:    insp,
		console: console.New(insp),
	}
}

// SetRunningConfig sets what /api/config reports.
func (s *Server) SetRunningConfig(cfg *client.RunningConfig) {
	s.runningConfig = cfg
}

// SetRegistry enables /metrics for the given registry.
func (s *Server) SetRegistry(reg *prometheus.Registry) {
	s.registry = reg
}

// SetFuzzySearch switches /api/signals?q= to fuzzy matching.
func (s *Server) SetFuzzySearch(enabled bool) {
	s.fuzzy = enabled
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/signals", s.handleSignals)
	mux.HandleFunc("/api/signal", s.handleSignal)
	mux.HandleFunc("/api/changes", s.handleChanges)
	mux.HandleFunc("/api/expanded", s.handleExpanded)
	mux.HandleFunc("/api/patch", s.handlePatch)
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/eval", s.handleEval)
	mux.HandleFunc("/api/position", s.handlePosition)
	mux.HandleFunc("/api/config", s.handleGetConfig)
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.registry != nil {
		mux.Handle("/metrics", metrics.Handler(s.registry))
	}
	return mux
}

// ListenAndServe serves on the unix socket at socketPath until Shutdown.
func (s *Server) ListenAndServe(socketPath string) error {
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{
		Handler: h2c.NewHandler(s.Handler(), &http2.Server{}),
	}

	s.logger.WithField("socket", socketPath).Info("Daemon listening")
	err = s.server.Serve(listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPatch:
		status = http.StatusBadRequest
	case errors.ErrCodeRootUnavailable:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid request body")
	}
	return nil
}

// handleSignals returns the snapshot in export format, optionally filtered
// by ?q=.
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	snap := s.insp.Snapshot()
	if q := r.URL.Query().Get("q"); q != "" {
		filtered := make(signal.Snapshot)
		for _, p := range filter.Search(snap.Paths(), q, s.fuzzy) {
			filtered[p] = snap[p]
		}
		snap = filtered
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(export.Serialize(snap))
}

// handleSignal reads one signal live.
func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	path := r.URL.Query().Get("path")
	v, ok := s.insp.GetSignal(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "signal not found: " + path})
		return
	}
	writeJSON(w, http.StatusOK, client.SignalValue{
		Path:  path,
		Type:  signal.TypeOf(v),
		Value: signal.Canonical(v),
	})
}

// handleChanges lists (GET) or clears (DELETE) the change history.
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a positive integer"))
				return
			}
			limit = n
		}
		writeJSON(w, http.StatusOK, client.ChangesFromEntries(s.insp.Changes(limit)))
	case http.MethodDelete:
		s.insp.ClearLog()
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// handleExpanded lists (GET) or toggles (POST {"path"}) expanded paths.
func (s *Server) handleExpanded(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string][]string{"paths": s.insp.ExpandedPaths()})
	case http.MethodPost:
		var req struct {
			Path string `json:"path"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Path == "" {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "path is required"))
			return
		}
		expanded := s.insp.Toggle(req.Path)
		writeJSON(w, http.StatusOK, map[string]any{"path": req.Path, "expanded": expanded})
	default:
		methodNotAllowed(w)
	}
}

// handlePatch merges a JSON patch object.
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeError(w, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to read body"))
		return
	}
	patch, err := source.DecodePatch(data)
	if err != nil {
		writeError(w, errors.InvalidPatch("http", err))
		return
	}
	entries := s.insp.ApplyPatch(patch)
	writeJSON(w, http.StatusOK, map[string]any{"changes": client.ChangesFromEntries(entries)})
}

// handleStream streams change notifications as server-sent events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.insp.Subscribe()
	defer s.insp.Unsubscribe(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE client connected")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(client.EventFromNotification(n))
			if err != nil {
				s.logger.WithError(err).Error("Failed to marshal notification")
				continue
			}
			fmt.Fprintf(w, "event: changed\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleExport writes an export file. An empty dir uses the configured one.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Dir string `json:"dir"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	path, err := s.insp.Export(req.Dir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// handleEval runs one console command.
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Input string `json:"input"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.console.Eval(req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": out})
}

// handlePosition reads (GET) or changes (PUT {"position"}) the panel position.
func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"position": s.insp.Position()})
	case http.MethodPut, http.MethodPost:
		var req struct {
			Position string `json:"position"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.insp.SetPosition(req.Position); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"position": s.insp.Position()})
	default:
		methodNotAllowed(w)
	}
}

// handleGetConfig returns the running configuration as JSON.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.runningConfig == nil {
		http.Error(w, "config not initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.runningConfig)
}

// handleWebSocket ingests patches: every message is one JSON patch object
// and is answered with the resulting change count.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("Failed to upgrade websocket")
		return
	}
	defer ws.Close()
	s.logger.Debug("Websocket client connected")

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			s.logger.WithError(err).Debug("Websocket client disconnected")
			return
		}
		reply := map[string]any{}
		if patch, err := source.DecodePatch(data); err != nil {
			reply["error"] = errors.InvalidPatch("websocket", err).Error()
		} else {
			reply["changes"] = len(s.insp.ApplyPatch(patch))
		}
		if err := ws.WriteJSON(reply); err != nil {
			s.logger.WithError(err).Warn("Failed to write websocket reply")
			return
		}
	}
}
