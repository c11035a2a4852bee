package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"github.com/poolhttpd/server/internal/httpwire"
	"github.com/poolhttpd/server/internal/id"
	"github.com/poolhttpd/server/internal/store"
)

const (
	discardLimit   = 1 << 20
	discardTimeout = 500 * time.Millisecond
)

// Documents supplies the static bodies served by the routes.
type Documents interface {
	Root() ([]byte, error)
	NotFound() ([]byte, error)
}

// ConnHandler processes exactly one request per connection.
// It holds no per-connection state, so one value serves every worker.
type ConnHandler struct {
	docs           Documents
	recorder       store.Recorder
	logger         *slog.Logger
	sleepDelay     time.Duration
	maxHeaderBytes int64
}

type HandlerOption func(*ConnHandler)

// WithRecorder records every answered request.
func WithRecorder(r store.Recorder) HandlerOption {
	return func(h *ConnHandler) { h.recorder = r }
}

// WithSleepDelay sets how long GET /sleep waits before answering.
func WithSleepDelay(d time.Duration) HandlerOption {
	return func(h *ConnHandler) { h.sleepDelay = d }
}

// WithMaxHeaderBytes caps how much of the request head is read.
func WithMaxHeaderBytes(n int64) HandlerOption {
	return func(h *ConnHandler) { h.maxHeaderBytes = n }
}

func NewConnHandler(docs Documents, logger *slog.Logger, opts ...HandlerOption) *ConnHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &ConnHandler{
		docs:           docs,
		recorder:       store.Nop{},
		logger:         logger,
		sleepDelay:     5 * time.Second,
		maxHeaderBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve parses one request from conn, answers it and closes conn.
// Failures end this connection only; nothing is returned to the caller.
func (h *ConnHandler) Serve(conn net.Conn) {
	start := time.Now()
	connID := id.New()
	logger := h.logger.With("conn_id", connID, "remote_addr", remoteAddr(conn))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic serving connection", "panic", r, "stack", string(debug.Stack()))
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("close connection", "error", err)
		}
	}()

	lr := &io.LimitedReader{R: conn, N: h.maxHeaderBytes}
	req, err := httpwire.ParseRequest(bufio.NewReaderSize(lr, 4<<10))
	if lr.N <= 0 && (err != nil || !req.Terminated) {
		logger.Warn("request head too large", "limit", h.maxHeaderBytes)
		h.write(logger, conn, httpwire.NewResponse(httpwire.StatusRequestEntityTooLarge, nil, []byte("Request head too large")))
		h.discardUnread(conn)
		return
	}
	if err != nil {
		if errors.Is(err, httpwire.ErrNoData) {
			logger.Debug("connection closed without a request")
			return
		}
		logger.Warn("bad request", "error", err)
		h.write(logger, conn, httpwire.NewResponse(httpwire.StatusBadRequest, nil, []byte(err.Error())))
		return
	}
	logger.Debug("request", "lines", req.Lines)

	resp := h.route(logger, req)
	if !h.write(logger, conn, resp) {
		return
	}

	duration := time.Since(start)
	logger.Info("request served",
		"method", req.Method.String(),
		"path", req.URI,
		"status", int(resp.StatusCode),
		"duration", duration,
	)

	err = h.recorder.Record(context.Background(), store.Entry{
		ConnID:     connID,
		RemoteAddr: remoteAddr(conn),
		Method:     req.Method.String(),
		Path:       req.URI,
		Status:     int(resp.StatusCode),
		Duration:   duration,
		ServedAt:   start,
	})
	if err != nil {
		logger.Error("failed to record request", "error", err)
	}
}

// write sends resp in one write and reports whether it succeeded.
func (h *ConnHandler) write(logger *slog.Logger, conn net.Conn, resp *httpwire.Response) bool {
	if _, err := resp.WriteTo(conn); err != nil {
		logger.Error("failed to write response", "status", int(resp.StatusCode), "error", err)
		return false
	}
	return true
}

// discardUnread half-closes conn and reads off what the client already sent,
// so the final close does not reset the connection before the client has
// read the response.
func (h *ConnHandler) discardUnread(conn net.Conn) {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
	}
	conn.SetReadDeadline(time.Now().Add(discardTimeout))
	io.Copy(io.Discard, io.LimitReader(conn, discardLimit))
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
