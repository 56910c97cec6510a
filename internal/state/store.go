// Package state holds the reactive translate-session store. All mutations
// funnel through one serialized apply loop, so subscribers observe a strictly
// ordered sequence of (current, previous) snapshot pairs and never a torn
// read. Subscribers may mutate the store re-entrantly; nested mutations are
// queued and applied after the in-flight notification finishes.
package state

import "sync"

// Subscriber receives every state transition. Called synchronously from the
// goroutine draining the mutation queue.
type Subscriber func(cur, prev TranslateState)

// Store is the translate-session state container.
type Store struct {
	mu       sync.Mutex
	state    TranslateState
	prev     TranslateState
	queue    []func(TranslateState) TranslateState
	draining bool
	nextSub  int
	subs     map[int]Subscriber
}

// NewStore creates a store seeded with the given system prompt (the caller
// resolves the optimistic fast-storage value before construction).
func NewStore(systemPrompt string) *Store {
	st := initialState(systemPrompt)
	return &Store{state: st, prev: st, subs: map[int]Subscriber{}}
}

// State returns the current snapshot.
func (s *Store) State() TranslateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PrevState returns the snapshot before the most recent transition.
func (s *Store) PrevState() TranslateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prev
}

// Subscribe registers fn and returns an unsubscribe func. Safe to call the
// returned func more than once.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SetState enqueues a mutation. If no drain is in progress the calling
// goroutine applies it (and any mutations queued by subscribers) before
// returning; otherwise the active drainer picks it up in order.
func (s *Store) SetState(fn func(TranslateState) TranslateState) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		prev := s.state
		cur := next(prev)
		s.state = cur
		s.prev = prev
		subs := make([]Subscriber, 0, len(s.subs))
		for _, sub := range s.subs {
			subs = append(subs, sub)
		}
		s.mu.Unlock()
		for _, sub := range subs {
			sub(cur, prev)
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// Patch merges a partial update produced from the previous snapshot.
func (s *Store) Patch(apply func(*TranslateState)) {
	s.SetState(func(st TranslateState) TranslateState {
		apply(&st)
		return st
	})
}

// Session-field setters. Providers, default pointer, system prompt and the
// language pair are owned by the settings service; everything ephemeral is
// set here.

func (s *Store) SetLeftText(text string) {
	s.Patch(func(st *TranslateState) { st.LeftText = text })
}

func (s *Store) SetDebouncedLeftText(text string) {
	s.Patch(func(st *TranslateState) { st.DebouncedLeftText = text })
}

func (s *Store) SetRightText(text string) {
	s.Patch(func(st *TranslateState) { st.RightText = text })
}

func (s *Store) SetIsTranslating(v bool) {
	s.Patch(func(st *TranslateState) { st.IsTranslating = v })
}

func (s *Store) SetTranslateError(msg string) {
	s.Patch(func(st *TranslateState) { st.TranslateError = msg })
}

// TriggerTranslateNow copies the raw input into the committed slot
// immediately, bypassing the debounce timer.
func (s *Store) TriggerTranslateNow() {
	s.SetState(func(st TranslateState) TranslateState {
		st.DebouncedLeftText = st.LeftText
		return st
	})
}
