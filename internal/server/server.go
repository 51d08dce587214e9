// Package server exposes the engine service over HTTP: four JSON
// operations mirroring the service API plus a websocket that streams
// search telemetry. The upgrade path requires net/http, which is why this
// side of the bridge is not on fasthttp.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	svcengine "github.com/hisui/usi-bridge/internal/service/engine"
	"github.com/hisui/usi-bridge/pkg/enginedto"
)

type Server struct {
	svc    *svcengine.Service
	logger *zap.Logger
	http   *http.Server
}

func New(addr string, svc *svcengine.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, logger: logger}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /engine/init", s.handleInit)
	mux.HandleFunc("POST /engine/move", s.handleMove)
	mux.HandleFunc("POST /engine/shutdown", s.handleShutdown)
	mux.HandleFunc("GET /engine/ready", s.handleReady)
	mux.HandleFunc("GET /engine/analysis", s.handleAnalysis)
	return s.logged(mux)
}

// Handler exposes the full route tree; used by tests.
func (s *Server) Handler() http.Handler { return s.routes() }

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("api listening", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// logged tags each request with a uuid and logs method, path, and timing.
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req enginedto.InitRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, enginedto.DomainError{
				Code:    enginedto.CodeBadRequest,
				Message: "malformed init request: " + err.Error(),
			})
			return
		}
	}

	resp, err := s.svc.Initialize(req.Path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req enginedto.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, enginedto.DomainError{
			Code:    enginedto.CodeBadRequest,
			Message: "malformed move request: " + err.Error(),
		})
		return
	}
	if req.SFEN == "" {
		s.writeError(w, enginedto.DomainError{
			Code:    enginedto.CodeBadRequest,
			Message: "sfen is required",
		})
		return
	}

	move, err := s.svc.BestMove(req.SFEN, req.Moves, req.TimeMs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, enginedto.MoveResponse{Move: move})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Shutdown()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, enginedto.ReadyResponse{Ready: s.svc.Ready()})
}

// handleAnalysis upgrades to a websocket and relays search telemetry until
// the client disconnects. Frames the client cannot keep up with were
// already dropped by the hub, so writes here stay short.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("analysis upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	infoCh, cancel := s.svc.Subscribe()
	defer cancel()

	// CloseRead cancels the context when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case info, ok := <-infoCh:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, info)
			cancelWrite()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encode failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var derr enginedto.DomainError
	if !errors.As(err, &derr) {
		derr = enginedto.DomainError{Code: enginedto.CodeFailed, Message: err.Error()}
	}
	s.writeJSON(w, statusFor(derr.Code), enginedto.ErrorResponse{
		Code:    derr.Code,
		Message: derr.Message,
	})
}

func statusFor(code string) int {
	switch code {
	case enginedto.CodeBadRequest:
		return http.StatusBadRequest
	case enginedto.CodeNotRunning, enginedto.CodeAlreadyRunning:
		return http.StatusConflict
	case enginedto.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
