package session

import (
	"sync"
	"time"

	"github.com/Amund211/riftrewind/internal/chat"
	"github.com/Amund211/riftrewind/internal/domain"
	"github.com/Amund211/riftrewind/internal/recapcache"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// Session is the state of one visitor's page: cached recaps, the chat and the recap the chat talks about
type Session struct {
	ID     string
	Recaps *recapcache.Store
	Chat   *chat.Widget

	lock    sync.Mutex
	current *domain.Recap
}

func newSession(id string, sender chat.Sender) *Session {
	return &Session{
		ID:     id,
		Recaps: recapcache.New(),
		Chat:   chat.NewWidget(sender),
	}
}

// SetCurrent sets the recap used as chat context
func (s *Session) SetCurrent(recap domain.Recap) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.current = &recap
}

func (s *Session) Current() (domain.Recap, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.current == nil {
		return domain.Recap{}, false
	}
	return *s.current, true
}

func (s *Session) reset() {
	s.Recaps.Clear()
	s.Chat.Reset()

	s.lock.Lock()
	defer s.lock.Unlock()
	s.current = nil
}

type Registry struct {
	sessions *ttlcache.Cache[string, *Session]
	sender   chat.Sender
	lock     sync.Mutex
}

// NewRegistry creates a registry whose sessions expire after idleTTL without use
func NewRegistry(idleTTL time.Duration, sender chat.Sender) (*Registry, func()) {
	sessions := ttlcache.New[string, *Session](
		ttlcache.WithTTL[string, *Session](idleTTL),
	)
	go sessions.Start()

	return &Registry{
		sessions: sessions,
		sender:   sender,
	}, sessions.Stop
}

// GetOrCreate returns the session for id, creating a new one with a fresh id
// when id is unknown or has expired. The returned bool is true for new sessions.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if id != "" {
		if item := r.sessions.Get(id); item != nil {
			return item.Value(), false
		}
	}

	newID := uuid.New().String()
	session := newSession(newID, r.sender)
	r.sessions.Set(newID, session, ttlcache.DefaultTTL)
	return session, true
}

// Reset clears the session's caches and chat, keeping its id
func (r *Registry) Reset(id string) bool {
	item := r.sessions.Get(id)
	if item == nil {
		return false
	}
	item.Value().reset()
	return true
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}
