package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yeldaryernazarov/NestVision/internal/api"
	"github.com/yeldaryernazarov/NestVision/internal/catalog"
	"github.com/yeldaryernazarov/NestVision/internal/config"
	"github.com/yeldaryernazarov/NestVision/internal/feed"
	"github.com/yeldaryernazarov/NestVision/internal/logging"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api-server"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.withRequestID(srv.handleStatus))
	mux.HandleFunc("/api/scan", srv.withRequestID(srv.handleScan))
	mux.HandleFunc("/api/process", srv.withRequestID(srv.handleProcess))
	mux.HandleFunc("/api/videos", srv.withRequestID(srv.handleVideos))
	mux.HandleFunc("/api/videos/", srv.withRequestID(srv.handleVideoItem))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// withRequestID tags every request with a correlation id, echoed in the
// response header and carried through the request log line.
func (s *apiServer) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		s.logger.Debug("api request",
			logging.String(logging.FieldCorrelationID, requestID),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
		)
		next(w, r)
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())

	byCategory := make(map[string]int, len(status.Catalog.ByCategory))
	for cat, count := range status.Catalog.ByCategory {
		byCategory[cat.String()] = count
	}
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		CatalogDBPath: status.CatalogDBPath,
		LockFilePath:  status.LockFilePath,
		BotUsername:   status.BotUsername,
		FeedChannel:   status.FeedChannel,
		Poller:        api.FromPollerStatus(status.Poller),
		Catalog: api.CatalogStats{
			Total:      status.Catalog.Total,
			ByCategory: byCategory,
		},
	})
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	added, err := s.daemon.Scan(r.Context())
	if err != nil {
		s.logger.Error("folder scan failed", logging.Error(err))
		s.writeJSON(w, http.StatusOK, api.ScanResponse{
			Success: false,
			Message: "folder scan failed",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.ScanResponse{
		Success:    true,
		AddedCount: added,
		Message:    fmt.Sprintf("scan complete, %d recordings added", added),
	})
}

func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req api.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.FileID) == "" {
		s.writeError(w, http.StatusBadRequest, "fileId is required")
		return
	}

	record, err := s.daemon.Process(r.Context(), req.ToRemoteRequest())
	if err != nil {
		s.writeJSON(w, http.StatusOK, api.ProcessResponse{
			Success: false,
			Message: processFailureMessage(err),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, api.ProcessResponse{
		Success: true,
		Message: fmt.Sprintf("recording %s catalogued as %s", record.FileName, record.Category),
	})
}

// processFailureMessage translates pipeline failures into operator-facing
// text; raw transport errors never leak to callers.
func processFailureMessage(err error) string {
	switch {
	case errors.Is(err, catalog.ErrDuplicate):
		return "recording already catalogued"
	case errors.Is(err, feed.ErrTransport):
		return "feed unavailable, try again later"
	default:
		return "processing failed"
	}
}

func (s *apiServer) handleVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	records, err := s.daemon.ListVideos(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.VideoListResponse{Videos: api.FromRecords(records)})
}

func (s *apiServer) handleVideoItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	stream := false
	if trimmed, ok := strings.CutSuffix(rest, "/stream"); ok {
		rest = trimmed
		stream = true
	}
	if rest == "" || strings.Contains(rest, "/") {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	record, err := s.daemon.GetVideo(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}

	if stream {
		http.ServeFile(w, r, record.FilePath)
		return
	}
	s.writeJSON(w, http.StatusOK, api.VideoResponse{Video: api.FromRecord(record)})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
