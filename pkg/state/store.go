package state

import (
	"fmt"
	"log"
	"sync"
	"time"

	"telegramdebtlog/pkg/domain"
)

// Store owns the per-user conversation slots. All slot access goes through its
// methods, each of which is atomic with respect to the others.
type Store struct {
	users         map[int64]*UserState
	conversations map[int64]*Conversation
	fsmCreator    FSMCreator
	mu            sync.Mutex
}

func NewStore(f FSMCreator) *Store {
	return &Store{
		users:         make(map[int64]*UserState),
		conversations: make(map[int64]*Conversation),
		fsmCreator:    f,
	}
}

func (s *Store) GetOrCreateUserState(userID int64) *UserState {
	s.mu.Lock()
	defer s.mu.Unlock()

	userState, exists := s.users[userID]
	if exists {
		return userState
	}

	userState = &UserState{UserID: userID}
	s.users[userID] = userState
	return userState
}

// Begin replaces any existing slot for userID with a fresh dialogue of kind.
func (s *Store) Begin(userID int64, kind Kind) (Stage, error) {
	if kind.FirstStage() == StageNone {
		return StageNone, fmt.Errorf("state: unknown dialogue kind %d", kind)
	}
	machine := s.fsmCreator.NewConversationFSM(kind)
	if machine == nil {
		return StageNone, fmt.Errorf("state: failed to create FSM for %s dialogue", kind)
	}

	conv := &Conversation{
		UserID:    userID,
		Kind:      kind,
		FSM:       machine,
		StartedAt: time.Now(),
	}
	if kind == KindRecord {
		conv.Draft = NewDraft()
	}

	s.mu.Lock()
	_, replaced := s.conversations[userID]
	s.conversations[userID] = conv
	s.mu.Unlock()

	if replaced {
		log.Printf("[state.Begin] User %d: previous dialogue discarded, starting %s", userID, kind)
	}
	return conv.Stage(), nil
}

func (s *Store) Has(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[userID]
	return ok
}

// Stage returns the current stage, StageNone when no slot exists.
func (s *Store) Stage(userID int64) Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations[userID].Stage()
}

// Update runs fn on the user's slot under the store lock. When fn returns
// keep=false the slot is removed. A missing slot yields domain.ErrStateDesync.
func (s *Store) Update(userID int64, fn func(c *Conversation) (keep bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[userID]
	if !ok {
		return fmt.Errorf("state: user %d has no active dialogue: %w", userID, domain.ErrStateDesync)
	}
	keep, err := fn(conv)
	if !keep {
		delete(s.conversations, userID)
	}
	return err
}

// Clear removes the slot and reports whether one existed.
func (s *Store) Clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[userID]
	delete(s.conversations, userID)
	return ok
}

// Len returns the number of active dialogues.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}
