package server

import (
	"log/slog"
	"time"

	"github.com/poolhttpd/server/internal/httpwire"
)

const (
	pathRoot  = "/"
	pathSleep = "/sleep"
)

// route validates the version and method, then matches the path exactly.
func (h *ConnHandler) route(logger *slog.Logger, req *httpwire.Request) *httpwire.Response {
	if req.Version != httpwire.Version {
		return httpwire.NewResponse(httpwire.StatusHTTPVersionNotSupported, nil, nil)
	}
	if req.Method != httpwire.MethodGet {
		return httpwire.NewResponse(httpwire.StatusMethodNotAllowed, nil, nil)
	}

	switch req.URI {
	case pathRoot:
		return h.document(logger, httpwire.StatusOK, h.docs.Root)
	case pathSleep:
		time.Sleep(h.sleepDelay)
		return h.document(logger, httpwire.StatusOK, h.docs.Root)
	default:
		return h.document(logger, httpwire.StatusNotFound, h.docs.NotFound)
	}
}

func (h *ConnHandler) document(logger *slog.Logger, status httpwire.StatusCode, load func() ([]byte, error)) *httpwire.Response {
	body, err := load()
	if err != nil {
		logger.Error("failed to load document", "error", err)
		return httpwire.NewResponse(httpwire.StatusInternalServerError, nil, nil)
	}
	return httpwire.NewResponse(status, nil, body)
}
