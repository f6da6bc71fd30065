// Package memory holds the process-lifetime interaction log.
package memory

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/audit-compliance/internal/domain/interactions"
)

// Store keeps interactions in memory until the process exits.
type Store struct {
	mu          sync.RWMutex
	assessments []domain.AssessmentRecord
	chat        []domain.ChatTurn
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) AppendAssessment(_ context.Context, r domain.AssessmentRecord) error {
	s.mu.Lock()
	s.assessments = append(s.assessments, r)
	s.mu.Unlock()
	return nil
}

func (s *Store) AppendChatTurn(_ context.Context, t domain.ChatTurn) error {
	s.mu.Lock()
	s.chat = append(s.chat, t)
	s.mu.Unlock()
	return nil
}

// Snapshot copies both collections so callers never alias internal slices.
func (s *Store) Snapshot(_ context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Snapshot{
		Assessments: make([]domain.AssessmentRecord, len(s.assessments)),
		ChatHistory: make([]domain.ChatTurn, len(s.chat)),
	}
	copy(snap.Assessments, s.assessments)
	copy(snap.ChatHistory, s.chat)
	return snap, nil
}
