// Package connectivity provides online/offline signals that can be read on
// demand and observed for transitions.
package connectivity

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const transitionBuffer = 8

// publish delivers the latest state without blocking; when the buffer is full the
// oldest pending transition is dropped since only the newest state matters.
func publish(ch chan bool, online bool) {
	select {
	case ch <- online:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- online:
	default:
	}
}

// Switch is a manually controlled signal
type Switch struct {
	mu          sync.Mutex
	online      bool
	transitions chan bool
}

// NewSwitch creates a switch in the given initial state
func NewSwitch(online bool) *Switch {
	return &Switch{
		online:      online,
		transitions: make(chan bool, transitionBuffer),
	}
}

func (s *Switch) Online(_ context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Switch) Transitions() <-chan bool {
	return s.transitions
}

// Set changes the state and reports whether it actually transitioned
func (s *Switch) Set(online bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.online == online {
		return false
	}
	s.online = online
	publish(s.transitions, online)
	return true
}

// Prober decides connectivity by periodically probing a URL.
// Any HTTP response counts as online; only transport failures count as offline.
type Prober struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
	clock      clockwork.Clock

	mu          sync.Mutex
	known       bool
	online      bool
	transitions chan bool
}

// NewProber creates a prober; a nil clock uses real time
func NewProber(url string, interval, timeout time.Duration, clock clockwork.Clock) *Prober {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Prober{
		url:         url,
		interval:    interval,
		httpClient:  &http.Client{Timeout: timeout},
		clock:       clock,
		transitions: make(chan bool, transitionBuffer),
	}
}

// Online returns the last probed state, probing synchronously if there is none yet
func (p *Prober) Online(ctx context.Context) bool {
	p.mu.Lock()
	known, online := p.known, p.online
	p.mu.Unlock()

	if known {
		return online
	}
	return p.Check(ctx)
}

func (p *Prober) Transitions() <-chan bool {
	return p.transitions
}

// Check probes now and publishes a transition if the state changed.
// The first probe establishes the initial state without publishing.
func (p *Prober) Check(ctx context.Context) bool {
	online := p.probe(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.known && p.online != online {
		publish(p.transitions, online)
	}
	p.known = true
	p.online = online
	return online
}

// Run probes every interval until ctx is done
func (p *Prober) Run(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			p.Check(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req) // nosec G704
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}
