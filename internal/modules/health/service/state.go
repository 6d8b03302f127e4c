package service

import (
	"sync/atomic"
	"time"
)

// State — текущее самочувствие бота для админских проб.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	streamConnected atomic.Bool
	suspended       atomic.Bool
	lastBarUnix     atomic.Int64 // unix seconds открытия последнего бара
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetStreamConnected(v bool) { s.streamConnected.Store(v) }
func (s *State) StreamConnected() bool     { return s.streamConnected.Load() }

func (s *State) SetSuspended(v bool) { s.suspended.Store(v) }
func (s *State) Suspended() bool     { return s.suspended.Load() }

func (s *State) TouchBar(t time.Time) { s.lastBarUnix.Store(t.Unix()) }
func (s *State) LastBar() time.Time {
	u := s.lastBarUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
