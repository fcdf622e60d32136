package storage

import (
	"sync"
	"time"

	"github.com/aliskhannn/trivia-quiz-bot/internal/quiz"
)

// Session is a quiz session bound to a chat.
type Session struct {
	ChatID       int64
	UserID       int64
	Controller   *quiz.Controller
	MessageID    int       // message that displays the quiz, 0 if not sent yet
	StartedAt    time.Time // start of the current run
	LastActivity time.Time
	Recorded     bool // the finished run has been written to the result log
}

// SessionStorage keeps one active quiz session per chat in memory.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewSessionStorage creates an empty SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]Session),
	}
}

// Get returns the session of a chat.
func (s *SessionStorage) Get(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	return sess, ok
}

// Put stores sess and returns the session it replaced, if any.
// The caller owns the previous controller and should close it.
func (s *SessionStorage) Put(sess Session) (prev Session, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev = s.sessions[sess.ChatID]
	s.sessions[sess.ChatID] = sess

	return prev, hadPrev
}

// Delete removes the session of a chat and returns it.
func (s *SessionStorage) Delete(chatID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if ok {
		delete(s.sessions, chatID)
	}
	return sess, ok
}

// SetMessageID remembers the message that displays the quiz.
func (s *SessionStorage) SetMessageID(chatID int64, messageID int) bool {
	return s.update(chatID, func(sess *Session) {
		sess.MessageID = messageID
	})
}

// Touch records user activity at.
func (s *SessionStorage) Touch(chatID int64, at time.Time) bool {
	return s.update(chatID, func(sess *Session) {
		sess.LastActivity = at
	})
}

// ResetRun marks the beginning of a new run within the same session.
func (s *SessionStorage) ResetRun(chatID int64, at time.Time) bool {
	return s.update(chatID, func(sess *Session) {
		sess.StartedAt = at
		sess.LastActivity = at
		sess.Recorded = false
	})
}

// MarkRecorded flags the current run as recorded. It reports true only for
// the call that changed the flag, so a run is recorded at most once.
func (s *SessionStorage) MarkRecorded(chatID int64, ctrl *quiz.Controller) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok || sess.Controller != ctrl || sess.Recorded {
		return false
	}
	sess.Recorded = true
	s.sessions[chatID] = sess
	return true
}

// RemoveIdle removes and returns sessions without activity since cutoff.
func (s *SessionStorage) RemoveIdle(cutoff time.Time) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []Session
	for chatID, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			removed = append(removed, sess)
			delete(s.sessions, chatID)
		}
	}
	return removed
}

// RemoveAll empties the storage and returns everything it held.
func (s *SessionStorage) RemoveAll() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		removed = append(removed, sess)
	}
	s.sessions = make(map[int64]Session)
	return removed
}

// Len returns the number of active sessions.
func (s *SessionStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStorage) update(chatID int64, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return false
	}
	fn(&sess)
	s.sessions[chatID] = sess
	return true
}
