// Package store provides storage backends for wellnessd.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends selected by DSN detection.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/damii-health/wellnessd/internal/models"
)

// Error variables shared by all backends
var (
	ErrPlanNotFound = errors.New("saved plan not found")
)

// Store defines the persistence operations used by the API layer. All backends
// assign document identifiers and creation timestamps on insert.
type Store interface {
	// SavePlan persists a generated wellness plan for a user and returns the saved document.
	SavePlan(ctx context.Context, userID string, plan models.WellnessPlanOutput) (models.SavedPlan, error)
	// GetPlan fetches one saved plan. Returns ErrPlanNotFound if absent.
	GetPlan(ctx context.Context, userID, planID string) (models.SavedPlan, error)
	// ListPlans returns a user's saved plans, newest first.
	ListPlans(ctx context.Context, userID string) ([]models.SavedPlan, error)
	// DeletePlan removes a saved plan. Returns ErrPlanNotFound if absent.
	DeletePlan(ctx context.Context, userID, planID string) error
	// RenamePlan updates the embedded plan title only. Returns ErrPlanNotFound if absent.
	RenamePlan(ctx context.Context, userID, planID, title string) error

	// AddMoodLog records a mood check-in and returns the stored entry.
	AddMoodLog(ctx context.Context, userID string, log models.MoodLog) (models.MoodLog, error)
	// ListMoodLogs returns a user's mood logs, newest first, up to limit (0 = default).
	// Non-empty from/to bound the log dates inclusively and are applied before the limit.
	ListMoodLogs(ctx context.Context, userID string, limit int, from, to string) ([]models.MoodLog, error)

	// AddChatMessage appends one chat turn to a user's history.
	AddChatMessage(ctx context.Context, userID, role, content string) (models.ChatMessage, error)
	// ListChatMessages returns a user's chat history oldest first, up to limit (0 = default).
	ListChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)

	// Close releases backend resources.
	Close() error
}

// DefaultMoodLogLimit bounds mood log listings when the caller does not specify one.
const DefaultMoodLogLimit = 30

// DefaultChatHistoryLimit bounds chat history replay.
const DefaultChatHistoryLimit = 50

// InMemoryStore is a mutex-guarded in-memory Store used in tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	plans    map[string][]models.SavedPlan // keyed by user ID
	moods    map[string][]models.MoodLog
	messages map[string][]models.ChatMessage
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		plans:    make(map[string][]models.SavedPlan),
		moods:    make(map[string][]models.MoodLog),
		messages: make(map[string][]models.ChatMessage),
	}
}

func (s *InMemoryStore) SavePlan(ctx context.Context, userID string, plan models.WellnessPlanOutput) (models.SavedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := models.SavedPlan{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      plan,
		CreatedAt: time.Now().UTC(),
	}
	s.plans[userID] = append(s.plans[userID], doc)
	return doc, nil
}

func (s *InMemoryStore) GetPlan(ctx context.Context, userID, planID string) (models.SavedPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.plans[userID] {
		if doc.ID == planID {
			return doc, nil
		}
	}
	return models.SavedPlan{}, ErrPlanNotFound
}

func (s *InMemoryStore) ListPlans(ctx context.Context, userID string) ([]models.SavedPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.SavedPlan, len(s.plans[userID]))
	copy(docs, s.plans[userID])
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (s *InMemoryStore) DeletePlan(ctx context.Context, userID, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.plans[userID]
	for i, doc := range docs {
		if doc.ID == planID {
			s.plans[userID] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrPlanNotFound
}

func (s *InMemoryStore) RenamePlan(ctx context.Context, userID, planID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.plans[userID]
	for i := range docs {
		if docs[i].ID == planID {
			docs[i].Plan.PersonalizedPlan.Title = title
			return nil
		}
	}
	return ErrPlanNotFound
}

func (s *InMemoryStore) AddMoodLog(ctx context.Context, userID string, log models.MoodLog) (models.MoodLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.ID = uuid.NewString()
	log.UserID = userID
	log.CreatedAt = time.Now().UTC()
	s.moods[userID] = append(s.moods[userID], log)
	return log, nil
}

func (s *InMemoryStore) ListMoodLogs(ctx context.Context, userID string, limit int, from, to string) ([]models.MoodLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = DefaultMoodLogLimit
	}
	// ISO dates compare correctly as strings.
	logs := make([]models.MoodLog, 0, len(s.moods[userID]))
	for _, l := range s.moods[userID] {
		if from != "" && l.Date < from {
			continue
		}
		if to != "" && l.Date > to {
			continue
		}
		logs = append(logs, l)
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *InMemoryStore) AddChatMessage(ctx context.Context, userID, role, content string) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[userID] = append(s.messages[userID], msg)
	return msg, nil
}

func (s *InMemoryStore) ListChatMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	msgs := make([]models.ChatMessage, len(s.messages[userID]))
	copy(msgs, s.messages[userID])
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *InMemoryStore) Close() error { return nil }
