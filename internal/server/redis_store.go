package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eadteachers/teachkit/internal/assessment"
)

// DefaultSessionTTL bounds how long an untouched attempt is kept.
const DefaultSessionTTL = 2 * time.Hour

// Hash fields of a session key.
const (
	fieldAssessment = "assessment"
	prefixMCQ       = "mcq:"
	prefixAnswer    = "answer:"
	prefixFeedback  = "fb:"
	prefixPending   = "pending:"
)

// RedisStore keeps each attempt in one hash so several server instances can
// share sessions. HSETNX on the pending field guards duplicate grading.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A zero ttl uses DefaultSessionTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "teachkit:session:" + id
}

func itemField(prefix string, itemID int) string {
	return prefix + strconv.Itoa(itemID)
}

func (s *RedisStore) Create(ctx context.Context, a *assessment.Assessment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	key := sessionKey(a.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldAssessment, data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session %s: %w", a.ID, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*assessment.State, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	raw, ok := fields[fieldAssessment]
	if !ok {
		return nil, ErrSessionNotFound
	}

	var a assessment.Assessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	st := assessment.NewState(&a)

	var pending []int
	for field, value := range fields {
		prefix, itemID, ok := splitField(field)
		if !ok {
			continue
		}
		switch prefix {
		case prefixMCQ:
			if option, err := strconv.Atoi(value); err == nil {
				st.Selected[itemID] = option
			}
		case prefixAnswer:
			st.Written[itemID] = value
		case prefixFeedback:
			var slot assessment.FeedbackSlot
			if err := json.Unmarshal([]byte(value), &slot); err == nil {
				st.Feedback[itemID] = slot
			}
		case prefixPending:
			pending = append(pending, itemID)
		}
	}
	// A pending grading hides the previous result until it settles.
	for _, itemID := range pending {
		st.Feedback[itemID] = assessment.FeedbackSlot{Pending: true}
	}
	return st, nil
}

func splitField(field string) (string, int, bool) {
	i := strings.IndexByte(field, ':')
	if i < 0 {
		return "", 0, false
	}
	itemID, err := strconv.Atoi(field[i+1:])
	if err != nil {
		return "", 0, false
	}
	return field[:i+1], itemID, true
}

func (s *RedisStore) write(ctx context.Context, id string, fn func(pipe redis.Pipeliner, key string)) error {
	key := sessionKey(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fn(pipe, key)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) SelectAnswer(ctx context.Context, id string, itemID, option int) error {
	st, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := st.CheckSelection(itemID, option); err != nil {
		return err
	}
	return s.write(ctx, id, func(pipe redis.Pipeliner, key string) {
		pipe.HSet(ctx, key, itemField(prefixMCQ, itemID), option)
	})
}

func (s *RedisStore) SetShortAnswer(ctx context.Context, id string, itemID int, text string) error {
	st, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := st.ShortItem(itemID); err != nil {
		return err
	}
	return s.write(ctx, id, func(pipe redis.Pipeliner, key string) {
		pipe.HSet(ctx, key, itemField(prefixAnswer, itemID), text)
	})
}

func (s *RedisStore) BeginGrading(ctx context.Context, id string, itemID int) (assessment.ShortAnswerItem, string, error) {
	st, err := s.Load(ctx, id)
	if err != nil {
		return assessment.ShortAnswerItem{}, "", err
	}
	item, answer, err := st.GradingInput(itemID)
	if err != nil {
		return assessment.ShortAnswerItem{}, "", err
	}

	claimed, err := s.client.HSetNX(ctx, sessionKey(id), itemField(prefixPending, itemID), 1).Result()
	if err != nil {
		return assessment.ShortAnswerItem{}, "", fmt.Errorf("claim grading %s/%d: %w", id, itemID, err)
	}
	if !claimed {
		return assessment.ShortAnswerItem{}, "", assessment.ErrAlreadyGrading
	}
	return item, answer, nil
}

func (s *RedisStore) FinishGrading(ctx context.Context, id string, itemID int, slot assessment.FeedbackSlot) error {
	data, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	return s.write(ctx, id, func(pipe redis.Pipeliner, key string) {
		pipe.HSet(ctx, key, itemField(prefixFeedback, itemID), data)
		pipe.HDel(ctx, key, itemField(prefixPending, itemID))
	})
}

// Ping reports whether the Redis server answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
