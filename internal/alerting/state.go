package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AlertState tracks how far alert raising got for one sample
type AlertState struct {
	Status    string    `json:"status"` // NONE, RAISED, NOTIFIED
	AlertID   uuid.UUID `json:"alert_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	AlertStateNone     = "NONE"
	AlertStateRaised   = "RAISED"
	AlertStateNotified = "NOTIFIED"
)

// DefaultStateTTL bounds how long a sample's state outlives redelivery
const DefaultStateTTL = 7 * 24 * time.Hour

// StateManager manages alert states in Redis
type StateManager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewStateManager creates a new state manager
func NewStateManager(redisClient *redis.Client, ttl time.Duration) *StateManager {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateManager{redis: redisClient, ttl: ttl}
}

func stateKey(sampleID uuid.UUID) string {
	return "alert_state:" + sampleID.String()
}

// GetState retrieves the alert state for a sample. A sample never seen
// before is in state NONE.
func (sm *StateManager) GetState(ctx context.Context, sampleID uuid.UUID) (*AlertState, error) {
	data, err := sm.redis.Get(ctx, stateKey(sampleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &AlertState{Status: AlertStateNone}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state AlertState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// SetState saves the alert state for a sample
func (sm *StateManager) SetState(ctx context.Context, sampleID uuid.UUID, state *AlertState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := sm.redis.Set(ctx, stateKey(sampleID), data, sm.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set state in Redis: %w", err)
	}

	return nil
}

// CountStates counts tracked samples per state, scanning rather than
// blocking Redis with KEYS
func (sm *StateManager) CountStates(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	iter := sm.redis.Scan(ctx, 0, "alert_state:*", 200).Iterator()
	for iter.Next(ctx) {
		data, err := sm.redis.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}

		var state AlertState
		if err := json.Unmarshal(data, &state); err != nil {
			continue
		}
		counts[state.Status]++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan states: %w", err)
	}

	return counts, nil
}
