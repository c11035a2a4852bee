package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/time/rate"

	"github.com/poolhttpd/server/internal/worker"
)

// Executor runs jobs off the accept loop.
type Executor interface {
	Execute(job worker.Job)
}

// Server accepts connections and hands each one to the pool as a job.
type Server struct {
	pool    Executor
	handler *ConnHandler
	logger  *slog.Logger

	// paces the loop after accept errors; successful accepts never wait
	acceptBackoff *rate.Limiter
}

func New(pool Executor, handler *ConnHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		pool:          pool,
		handler:       handler,
		logger:        logger,
		acceptBackoff: rate.NewLimiter(rate.Every(10*time.Millisecond), 10),
	}
}

// Listen binds addr once.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	return ln, nil
}

// Serve accepts until ctx is cancelled, then closes ln and returns nil.
// A failed accept is logged and skipped. Serve never waits on a handler.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.logger.Info("listening", "address", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("accept: %w", err)
			}

			s.logger.Warn("connection error", "error", err)
			if err := s.acceptBackoff.Wait(ctx); err != nil {
				return nil
			}
			continue
		}

		s.pool.Execute(func() {
			s.handler.Serve(conn)
		})
	}
}
