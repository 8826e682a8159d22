/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */

// Package viewer presents processed lab reports: per-session navigation
// between the selection, patient and clinic views, the upload state of each
// mode, and rendering of results into HTML and charts.
package viewer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/humaidq/labwave/report"
)

// View is one of the three mutually exclusive viewer screens.
type View string

// Views.
const (
	ViewSelection View = "selection"
	ViewPatient   View = "patient"
	ViewClinic    View = "clinic"
)

// ViewFor returns the view that shows mode.
func ViewFor(mode report.Mode) View {
	if mode == report.ModeClinic {
		return ViewClinic
	}

	return ViewPatient
}

// DefaultIdleTimeout is how long an unused session is kept.
const DefaultIdleTimeout = 2 * time.Hour

// Session is the state of one viewer: the current view and one page per
// mode.
type Session struct {
	userID string

	mu       sync.Mutex
	current  View
	lastSeen time.Time
	pages    map[report.Mode]*Page
}

// NewSession creates a session on the selection view with a fresh upload
// identity.
func NewSession() *Session {
	return &Session{
		userID:  uuid.NewString(),
		current: ViewSelection,
		pages: map[report.Mode]*Page{
			report.ModePatient: NewPage(report.ModePatient),
			report.ModeClinic:  NewPage(report.ModeClinic),
		},
	}
}

// UserID identifies the session's uploads to the API.
func (s *Session) UserID() string {
	return s.userID
}

// Current returns the current view.
func (s *Session) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// Navigate switches to v. Entering a mode view from another view resets
// that mode's page; staying on the same view keeps it.
func (s *Session) Navigate(v View) *Page {
	s.mu.Lock()
	switched := s.current != v
	s.current = v
	s.mu.Unlock()

	var page *Page

	switch v {
	case ViewPatient:
		page = s.pages[report.ModePatient]
	case ViewClinic:
		page = s.pages[report.ModeClinic]
	default:
		return nil
	}

	if switched {
		page.Reset()
	}

	return page
}

// Page returns the page of mode without navigating.
func (s *Session) Page(mode report.Mode) *Page {
	if mode == report.ModeClinic {
		return s.pages[report.ModeClinic]
	}

	return s.pages[report.ModePatient]
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.Sub(s.lastSeen)
}

// Registry holds viewer sessions by id and evicts idle ones.
type Registry struct {
	idle time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a registry. A zero idle timeout uses
// DefaultIdleTimeout.
func NewRegistry(idle time.Duration) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	return &Registry{idle: idle, now: time.Now, sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it when needed.
func (r *Registry) Get(id string) *Session {
	now := r.now()

	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = NewSession()
		r.sessions[id] = s
	}
	r.mu.Unlock()

	s.touch(now)

	return s
}

// Evict removes sessions idle for longer than the timeout and returns how
// many were removed.
func (r *Registry) Evict() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0

	for id, s := range r.sessions {
		if s.idleSince(now) > r.idle {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
