package predict

import (
	"sync"
	"time"

	"gradecast/dataset"
)

// Session captures one prediction and everything needed to explain it: the
// feature row and its transform output, so both explanation views describe
// the same prediction without re-collecting input. A new prediction replaces
// the previous session; nothing is persisted.
type Session struct {
	ID        string      `json:"id"`
	Input     UserInput   `json:"input"`
	Row       dataset.Row `json:"-"`
	Vector    []float64   `json:"-"`
	Grade     float64     `json:"grade"`
	Raw       float64     `json:"-"`
	CreatedAt time.Time   `json:"created_at"`
}

// SessionHolder retains the most recent session for the process lifetime.
type SessionHolder struct {
	mu      sync.RWMutex
	current *Session
}

// Set replaces the retained session.
func (h *SessionHolder) Set(s *Session) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}

// Current returns the retained session, or nil before the first prediction.
func (h *SessionHolder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}
