package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps operator sessions in Redis. The key TTL is the idle timeout and is
// renewed on every save.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func (s *SessionRepo) sessionKey(operatorID int64) string {
	return fmt.Sprintf("gift_session:%d", operatorID)
}

func (s *SessionRepo) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.sessionKey(session.OperatorID), data, s.ttl)
}

func (s *SessionRepo) GetSession(ctx context.Context, operatorID int64) (*model.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(operatorID))
	if errors.Is(err, ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", operatorID, err)
	}
	return &session, nil
}

func (s *SessionRepo) ClearSession(ctx context.Context, operatorID int64) error {
	return s.client.Del(ctx, s.sessionKey(operatorID))
}
