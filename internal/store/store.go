package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClosed = errors.New("store closed")
)

// Entry is one served request in the access log.
type Entry struct {
	ID         int64
	ConnID     string
	RemoteAddr string
	Method     string
	Path       string
	Status     int
	Duration   time.Duration
	ServedAt   time.Time
}

// Recorder persists access log entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards every entry. It is used when no access log is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
