package httpd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/davidbz/hearth/internal/config"
	"github.com/davidbz/hearth/internal/observability"
)

const readBufferSize = 4096

// Server accepts raw TCP connections and serves exactly one request per
// connection. Each accepted connection gets its own goroutine, so a slow
// backend invocation never blocks the accept loop.
type Server struct {
	config *config.ServerConfig
	cors   *config.CORSConfig
	router *Router

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new raw TCP server (DI constructor).
func NewServer(serverCfg *config.ServerConfig, corsCfg *config.CORSConfig, router *Router) *Server {
	return &Server{
		config: serverCfg,
		cors:   corsCfg,
		router: router,
	}
}

// Start listens and serves until Shutdown closes the listener.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logger := observability.FromContext(context.Background())
	logger.Info("proxy listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("api_base_hint", "ANTHROPIC_API_BASE=http://"+listener.Addr().String()),
		zap.String("api_key_hint", "ANTHROPIC_API_KEY=dummy"),
	)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Warn("accept failed", zap.Error(err))
			continue
		}

		go s.handleConn(conn)
	}
}

// Addr returns the bound listen address, or "" before Start has bound it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown closes the listener; in-flight connections run to completion.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConn frames one request, serves it, and closes the connection. Both
// framing failures and early peer closes abandon the connection silently:
// log only, no response bytes.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	ctx := observability.WithRequestID(context.Background(), observability.GenerateRequestID())
	logger := observability.FromContext(ctx)

	framer := NewFramer()
	buf := make([]byte, readBufferSize)

	for {
		req, err := framer.Next()
		if err != nil {
			logger.Warn("abandoning connection", zap.Error(err))
			return
		}
		if req != nil {
			logger.Info("request framed",
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("body_bytes", len(req.Body)),
			)

			resp := s.router.Route(ctx, req)
			if _, err := conn.Write(resp.Encode(s.cors)); err != nil {
				logger.Warn("failed to write response", zap.Error(err))
			}
			return
		}

		n, err := conn.Read(buf)
		if n > 0 {
			framer.Feed(buf[:n])
			continue
		}
		if err != nil {
			// Peer closed or socket fault before a full request arrived.
			logger.Debug("connection ended before a complete request", zap.Error(err))
			return
		}
	}
}
