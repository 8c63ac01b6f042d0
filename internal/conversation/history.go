// ABOUTME: Per-user conversation history persisted in the KV store
// ABOUTME: Caps stored turns, expires idle histories, hashes user identifiers
package conversation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/kv"
	"github.com/HelloJC24/BNGCIA/internal/models"
)

// HistoryKV is the slice of the key-value client the history store needs.
type HistoryKV interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// envelope is the stored form of one user's history. LastActive drives
// expiry: a history idle past the retention window reads as empty.
type envelope struct {
	Turns      []models.Turn `json:"turns"`
	LastActive time.Time     `json:"last_active"`
}

// HistoryStore persists conversation turns per user.
type HistoryStore struct {
	kv        HistoryKV
	maxTurns  int
	retention time.Duration
	logger    *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	now func() time.Time
}

// NewHistoryStore creates a history store. maxTurns caps stored turns per
// user; retention is how long an idle history survives before expiring.
func NewHistoryStore(client HistoryKV, maxTurns int, retention time.Duration, logger *zap.Logger) *HistoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryStore{
		kv:        client,
		maxTurns:  maxTurns,
		retention: retention,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// userKey hashes the caller-supplied identifier so raw session tokens or
// emails never appear as storage keys.
func userKey(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return kv.ConversationPrefix + hex.EncodeToString(sum[:])
}

func (s *HistoryStore) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// History returns the most recent limit turns for the user, oldest first.
// An unknown user or an expired history returns an empty slice, never an
// error. limit <= 0 returns all stored turns.
func (s *HistoryStore) History(userID string, limit int) ([]models.Turn, error) {
	key := userKey(userID)
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	env, err := s.load(key)
	if err != nil {
		return nil, err
	}
	if env == nil {
		return []models.Turn{}, nil
	}

	turns := env.Turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append records a turn for the user, evicting the oldest turns beyond the
// store's cap.
func (s *HistoryStore) Append(userID string, turn models.Turn) error {
	key := userKey(userID)
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	env, err := s.load(key)
	if err != nil {
		return err
	}
	if env == nil {
		env = &envelope{}
	}

	env.Turns = append(env.Turns, turn)
	if len(env.Turns) > s.maxTurns {
		evicted := len(env.Turns) - s.maxTurns
		env.Turns = env.Turns[evicted:]
		s.logger.Debug("evicted oldest turns", zap.Int("count", evicted))
	}
	env.LastActive = s.now()

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	if err := s.kv.Set(key, data); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// Clear removes the user's entire history. Clearing an absent history is
// not an error.
func (s *HistoryStore) Clear(userID string) error {
	key := userKey(userID)
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	if err := s.kv.Delete(key); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// load reads and decodes a history envelope. Returns nil for a missing,
// expired, or undecodable record; an expired history is deleted in passing.
func (s *HistoryStore) load(key string) (*envelope, error) {
	data, err := s.kv.Get(key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		// A mangled history is not worth failing a question over
		s.logger.Warn("discarding unreadable history", zap.Error(err))
		return nil, nil
	}

	if s.retention > 0 && s.now().Sub(env.LastActive) > s.retention {
		s.logger.Debug("history expired", zap.Time("last_active", env.LastActive))
		if err := s.kv.Delete(key); err != nil {
			s.logger.Warn("deleting expired history", zap.Error(err))
		}
		return nil, nil
	}
	return &env, nil
}
