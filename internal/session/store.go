// Package session implements the server-side assertion store used in
// session mode. A session is an opaque random identifier mapped in Redis
// to the owning user id with a sliding TTL. Redis is shared by every
// server process, so a session minted on one instance is visible to all
// of them, and its native key expiry prunes stale sessions without any
// sweeper of our own.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when the identifier is unknown or expired. The
// caller must not distinguish the two cases in anything a client can see.
var ErrNoSession = errors.New("no such session")

const keyPrefix = "sess:"

// Store issues, resolves and revokes sessions against Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore builds a session store with the given record TTL.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Create mints a cryptographically random session identifier for the user
// and persists it with the store TTL. Callers always get a fresh id;
// regenerating on every login is what defeats session fixation.
func (s *Store) Create(ctx context.Context, userID uint64) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	id := hex.EncodeToString(buf)
	if err := s.rdb.Set(ctx, keyPrefix+id, userID, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Resolve looks up the session and returns the owning user id. A hit
// refreshes the TTL so an active session stays alive; a miss means the
// session never existed, was revoked, or aged out, and all three collapse
// into ErrNoSession.
func (s *Store) Resolve(ctx context.Context, id string) (uint64, error) {
	if id == "" {
		return 0, ErrNoSession
	}
	val, err := s.rdb.GetEx(ctx, keyPrefix+id, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	uid, err := strconv.ParseUint(val, 10, 64)
	if err != nil || uid == 0 {
		return 0, ErrNoSession
	}
	return uid, nil
}

// Delete revokes a session immediately. Deleting an unknown id is a no-op
// so logout stays idempotent.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}
