// Package redis keeps interview sessions in Redis as JSON values.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

const keyPrefix = "interview:session:"

// Store implements domain.SessionStore. Every save refreshes the TTL.
type Store struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// New returns a Redis-backed session store.
func New(rdb goredis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (s *Store) Get(ctx domain.Context, id string) (domain.Session, error) {
	tracer := otel.Tracer("sessionstore.redis")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	raw, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Session{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("op=sessions.Get: %w", err)
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domain.Session{}, fmt.Errorf("op=sessions.Get: decode: %w", err)
	}
	return sess, nil
}

func (s *Store) Save(ctx domain.Context, sess domain.Session) error {
	tracer := otel.Tracer("sessionstore.redis")
	ctx, span := tracer.Start(ctx, "sessions.Save")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.String("session.state", string(sess.State)))

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("op=sessions.Save: encode: %w", err)
	}
	if err := s.rdb.Set(ctx, key(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("op=sessions.Save: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx domain.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("op=sessions.Delete: %w", err)
	}
	return nil
}
