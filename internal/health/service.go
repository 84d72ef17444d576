// Package health reports whether the service and its record store are up.
package health

import (
	"context"
	"time"
)

const defaultPingTimeout = 2 * time.Second

// Pinger is anything that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the /api/health payload.
type Status struct {
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	StoreConnected bool      `json:"storeConnected"`
}

// Service encapsulates health-related checks.
type Service struct {
	Store       Pinger
	PingTimeout time.Duration
	Now         func() time.Time
}

// NewService constructs a new health service.
func NewService(store Pinger) *Service {
	return &Service{Store: store, PingTimeout: defaultPingTimeout, Now: time.Now}
}

// Status always reports ok; StoreConnected reflects a bounded ping of the record store.
func (s *Service) Status(ctx context.Context) Status {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Status{
		Status:         "ok",
		Message:        "Server is running",
		Timestamp:      now().UTC(),
		StoreConnected: s.storeConnected(ctx),
	}
}

func (s *Service) storeConnected(ctx context.Context) bool {
	if s.Store == nil {
		return false
	}
	timeout := s.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.Store.Ping(ctx) == nil
}
