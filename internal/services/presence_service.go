package services

import (
	"context"
	"strconv"
	"time"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/redis/go-redis/v9"
)

type presenceStore interface {
	SetOnline(ctx context.Context, userID int64, online bool) error
	UpdateLocation(ctx context.Context, userID int64, location models.Location) error
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// PresenceService tracks the online flag and last-known location. Postgres
// is the source of truth; Redis holds a TTL'd liveness key so the sweeper
// and other nodes can tell a fresh heartbeat from a dead session.
type PresenceService struct {
	userRepo presenceStore
	cache    *redis.Client
	ttl      time.Duration
}

func NewPresenceService(userRepo presenceStore, cache *redis.Client, ttl time.Duration) *PresenceService {
	return &PresenceService{userRepo: userRepo, cache: cache, ttl: ttl}
}

func presenceKey(userID int64) string {
	return "presence:" + strconv.FormatInt(userID, 10)
}

// Heartbeat records a location push from a live session.
func (s *PresenceService) Heartbeat(ctx context.Context, userID int64, location models.Location) error {
	if err := s.userRepo.UpdateLocation(ctx, userID, location); err != nil {
		return err
	}

	if s.cache != nil {
		return s.cache.Set(ctx, presenceKey(userID), "1", s.ttl).Err()
	}
	return nil
}

// SetOnline toggles visibility on the map.
func (s *PresenceService) SetOnline(ctx context.Context, userID int64, online bool) error {
	if err := s.userRepo.SetOnline(ctx, userID, online); err != nil {
		return err
	}

	if s.cache == nil {
		return nil
	}
	if online {
		return s.cache.Set(ctx, presenceKey(userID), "1", s.ttl).Err()
	}
	return s.cache.Del(ctx, presenceKey(userID)).Err()
}

// IsLive checks the cache for a fresh heartbeat.
func (s *PresenceService) IsLive(ctx context.Context, userID int64) bool {
	if s.cache == nil {
		return false
	}
	n, err := s.cache.Exists(ctx, presenceKey(userID)).Result()
	return err == nil && n > 0
}

// StaleCutoff is the oldest heartbeat still considered alive: three missed
// heartbeat intervals.
func StaleCutoff(now time.Time, ttl time.Duration) time.Time {
	return now.Add(-3 * ttl)
}

// SweepStale flips users offline whose heartbeat has lapsed. Scheduled from
// the server's cron, not request-triggered.
func (s *PresenceService) SweepStale(ctx context.Context) (int64, error) {
	return s.userRepo.MarkStaleOffline(ctx, StaleCutoff(time.Now().UTC(), s.ttl))
}
