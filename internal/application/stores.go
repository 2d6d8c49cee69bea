package application

import (
	"cmp"
	"sync"

	"github.com/bnema/ibuy-cli/internal/domain"
)

// SessionStore holds the signed-in user for the process. It starts loading
// and unauthenticated until the first session probe settles.
type SessionStore struct {
	mu      sync.Mutex
	session domain.Session
	loading bool
	subs    listeners[domain.Session]
}

func NewSessionStore() *SessionStore {
	return &SessionStore{loading: true}
}

func (s *SessionStore) Get() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.session)
}

func (s *SessionStore) User() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Authenticated || s.session.User == nil {
		return domain.User{}, false
	}
	return *s.session.User, true
}

func (s *SessionStore) Set(user domain.User) {
	s.mu.Lock()
	s.session = domain.Session{Authenticated: true, User: &user}
	s.mu.Unlock()

	s.subs.notify(s.Get)
}

func (s *SessionStore) Clear() {
	s.mu.Lock()
	wasAuthenticated := s.session.Authenticated
	s.session = domain.Session{}
	s.mu.Unlock()

	if wasAuthenticated {
		s.subs.notify(s.Get)
	}
}

func (s *SessionStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Subscribe calls fn with the new session after every Set and after a Clear
// that signed a user out.
func (s *SessionStore) Subscribe(fn func(domain.Session)) func() {
	return s.subs.add(fn)
}

func copySession(session domain.Session) domain.Session {
	if session.User == nil {
		return session
	}
	user := *session.User
	return domain.Session{Authenticated: session.Authenticated, User: &user}
}

// ReferenceStore caches one reference table. Concurrent loads race and the
// last Set wins; Loading stays true until every load has finished.
type ReferenceStore[K cmp.Ordered, V any] struct {
	mu       sync.Mutex
	table    *domain.ReferenceTable[K, V]
	inFlight int
}

func (s *ReferenceStore[K, V]) Get() (*domain.ReferenceTable[K, V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table, s.table != nil
}

func (s *ReferenceStore[K, V]) Set(table *domain.ReferenceTable[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
}

func (s *ReferenceStore[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
}

// BeginLoad marks a fetch as in flight. The returned func ends it and is
// safe to call more than once.
func (s *ReferenceStore[K, V]) BeginLoad() func() {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.inFlight--
		})
	}
}

func (s *ReferenceStore[K, V]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

type CategoryStore = ReferenceStore[int, string]
type StatusStore = ReferenceStore[int, string]

// ReferenceStores groups the tables fetched once after sign-in.
type ReferenceStores struct {
	Categories *CategoryStore
	Statuses   *StatusStore
}

func NewReferenceStores() ReferenceStores {
	return ReferenceStores{Categories: &CategoryStore{}, Statuses: &StatusStore{}}
}

func (r ReferenceStores) Clear() {
	if r.Categories != nil {
		r.Categories.Clear()
	}
	if r.Statuses != nil {
		r.Statuses.Clear()
	}
}

// clearOnUnauthorized signs the user out locally when err is a 401 that
// survived the refresh retry, then returns err unchanged.
func clearOnUnauthorized(store *SessionStore, err error) error {
	if store != nil && domain.IsUnauthorized(err) {
		store.Clear()
	}
	return err
}
