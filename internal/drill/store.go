package drill

import (
	"sync"
	"time"
)

// SessionStore holds per-user session state: the active deck selection and
// at most one pending exercise. Entries are created lazily on first use and
// live until the process exits (or until the optional idle TTL evicts
// them); nothing is persisted across restarts — deck selection and pending
// exercises are deliberately ephemeral.
//
// Invariant: clearing or changing the active deck always clears the pending
// exercise, so a session without a deck never has an exercise.
type SessionStore interface {
	ActiveDeck(userID string) (DeckSelection, bool)
	SetActiveDeck(userID string, deck DeckSelection)
	ClearActiveDeck(userID string)

	Exercise(userID string) (Exercise, bool)
	SetExercise(userID string, ex Exercise)
	ClearExercise(userID string)

	// Reset clears both fields ("stop").
	Reset(userID string)
}

// session is one user's mutable state.
type session struct {
	deck     DeckSelection
	hasDeck  bool
	exercise Exercise
	hasEx    bool
	touched  time.Time
}

// Compile-time assertion that MemStore satisfies SessionStore.
var _ SessionStore = (*MemStore)(nil)

// MemStore is a thread-safe in-memory [SessionStore]. Different users may
// be served concurrently; operations for a single user are expected to be
// serialized by the caller (the chat platform delivers one message at a
// time per user).
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*session

	maxIdle time.Duration
	now     func() time.Time
	onEvict func(evicted int)
}

// MemStoreOption configures a [MemStore].
type MemStoreOption func(*MemStore)

// WithMaxIdle enables idle eviction: sessions untouched for longer than d
// are dropped. Eviction is swept lazily on access; a small community bot
// can leave this disabled.
func WithMaxIdle(d time.Duration) MemStoreOption {
	return func(s *MemStore) {
		s.maxIdle = d
	}
}

// WithEvictHook registers fn to be called with the number of deck-holding
// sessions dropped by each idle sweep. The engine only learns about
// sessions ended with "stop", so anything keeping an active-session count
// needs this to stay in step with eviction.
func WithEvictHook(fn func(evicted int)) MemStoreOption {
	return func(s *MemStore) {
		s.onEvict = fn
	}
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) MemStoreOption {
	return func(s *MemStore) {
		s.now = now
	}
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore(opts ...MemStoreOption) *MemStore {
	s := &MemStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// get returns the session for userID, creating it if absent and sweeping
// expired entries when idle eviction is enabled. Callers must hold mu.
func (s *MemStore) get(userID string) *session {
	if s.maxIdle > 0 {
		cutoff := s.now().Add(-s.maxIdle)
		evicted := 0
		for id, sess := range s.sessions {
			if sess.touched.Before(cutoff) {
				if sess.hasDeck {
					evicted++
				}
				delete(s.sessions, id)
			}
		}
		if evicted > 0 && s.onEvict != nil {
			s.onEvict(evicted)
		}
	}

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}
	sess.touched = s.now()
	return sess
}

// ActiveDeck implements [SessionStore.ActiveDeck].
func (s *MemStore) ActiveDeck(userID string) (DeckSelection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	return sess.deck, sess.hasDeck
}

// SetActiveDeck implements [SessionStore.SetActiveDeck]. Any pending
// exercise is dropped: it was generated against the previous selection.
func (s *MemStore) SetActiveDeck(userID string, deck DeckSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.deck = deck
	sess.hasDeck = true
	sess.exercise = Exercise{}
	sess.hasEx = false
}

// ClearActiveDeck implements [SessionStore.ClearActiveDeck]. The pending
// exercise is cleared too, preserving the no-deck-no-exercise invariant.
func (s *MemStore) ClearActiveDeck(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.deck = ""
	sess.hasDeck = false
	sess.exercise = Exercise{}
	sess.hasEx = false
}

// Exercise implements [SessionStore.Exercise].
func (s *MemStore) Exercise(userID string) (Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	return sess.exercise, sess.hasEx
}

// SetExercise implements [SessionStore.SetExercise].
func (s *MemStore) SetExercise(userID string, ex Exercise) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.exercise = ex
	sess.hasEx = true
}

// ClearExercise implements [SessionStore.ClearExercise].
func (s *MemStore) ClearExercise(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.exercise = Exercise{}
	sess.hasEx = false
}

// Reset implements [SessionStore.Reset].
func (s *MemStore) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(userID)
	sess.deck = ""
	sess.hasDeck = false
	sess.exercise = Exercise{}
	sess.hasEx = false
}
