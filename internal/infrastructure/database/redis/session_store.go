package redis

import (
	"context"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/application/evaluation"
	"github.com/turtacn/FamilyCare-Analytics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
)

const sessionNamespace = "session:"

// SessionStore keeps evaluation sessions as JSON documents with a sliding
// TTL: every Put renews it.
type SessionStore struct {
	cache  Cache
	logger logging.Logger
}

var _ evaluation.SessionStore = (*SessionStore)(nil)

// NewSessionStore builds a session store on client.
func NewSessionStore(client *Client, log logging.Logger) *SessionStore {
	log = log.Named("session_store")
	return &SessionStore{
		cache:  NewRedisCache(client, log, WithNamespace(sessionNamespace)),
		logger: log,
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*evaluation.Session, error) {
	var sess evaluation.Session
	if err := s.cache.Get(ctx, id, &sess); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, errors.Newf(errors.ErrCodeSessionNotFound, "session %s not found or expired", id)
		}
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Put(ctx context.Context, sess *evaluation.Session, ttl time.Duration) error {
	if err := s.cache.Set(ctx, sess.ID, sess, ttl); err != nil {
		return err
	}
	s.logger.Debug("session stored", logging.SessionID(sess.ID), logging.Int("revision", sess.Revision))
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, id)
}
