package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 10 * time.Second

// Sessions hands out one Manager per session id, loading it from the store on
// first use.
type Sessions struct {
	store CartStore
	auth  AuthStatusSource
	opts  Options
	log   *slog.Logger

	mu       sync.Mutex
	managers map[string]*Manager
	loads    singleflight.Group
}

func NewSessions(store CartStore, auth AuthStatusSource, opts Options, log *slog.Logger) *Sessions {
	if log == nil {
		log = slog.Default()
	}
	return &Sessions{
		store:    store,
		auth:     auth,
		opts:     opts.withDefaults(),
		log:      log,
		managers: make(map[string]*Manager),
	}
}

func NewSessionID() string {
	return uuid.NewString()
}

func (s *Sessions) Get(ctx context.Context, sessionID string) (*Manager, error) {
	id, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	key := id.String()

	if m := s.lookup(key); m != nil {
		return m, nil
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		if m := s.lookup(key); m != nil {
			return m, nil
		}
		// Waiters share this load, so it must not die with the first caller.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		m, err := NewManager(lctx, key, s.store, s.auth, s.opts, s.log)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.managers[key] = m
		s.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manager), nil
}

func (s *Sessions) lookup(key string) *Manager {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.managers[key]
	if !ok {
		return nil
	}
	m.touch(time.Now())
	return m
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.managers)
}

// Sweep closes managers unused for longer than the idle timeout and reports
// how many were dropped. Their carts stay in the store.
func (s *Sessions) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for key, m := range s.managers {
		if now.Sub(m.idleSince()) < s.opts.SessionIdle {
			continue
		}
		m.Close()
		delete(s.managers, key)
		dropped++
	}
	if dropped > 0 {
		s.log.Debug("idle cart sessions swept", slog.Int("dropped", dropped))
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Sessions) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}

func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, m := range s.managers {
		m.Close()
		delete(s.managers, key)
	}
}
