package services

import (
	"context"
	"testing"
	"time"

	"github.com/evanvp/SoMapBack/internal/models"
)

type stubPresenceStore struct {
	onlineCalls   int
	lastOnline    bool
	lastLocation  models.Location
	locationCalls int
	lastCutoff    time.Time
	swept         int64
}

func (s *stubPresenceStore) SetOnline(_ context.Context, _ int64, online bool) error {
	s.onlineCalls++
	s.lastOnline = online
	return nil
}

func (s *stubPresenceStore) UpdateLocation(_ context.Context, _ int64, location models.Location) error {
	s.locationCalls++
	s.lastLocation = location
	return nil
}

func (s *stubPresenceStore) MarkStaleOffline(_ context.Context, cutoff time.Time) (int64, error) {
	s.lastCutoff = cutoff
	return s.swept, nil
}

func TestStaleCutoffAllowsThreeMissedHeartbeats(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	cutoff := StaleCutoff(now, 15*time.Second)
	if want := now.Add(-45 * time.Second); !cutoff.Equal(want) {
		t.Fatalf("expected cutoff %v, got %v", want, cutoff)
	}
}

func TestHeartbeatUpdatesStoreWithoutCache(t *testing.T) {
	store := &stubPresenceStore{}
	service := NewPresenceService(store, nil, 15*time.Second)

	location := models.Location{Latitude: 51.5074, Longitude: -0.1278}
	if err := service.Heartbeat(context.Background(), 1, location); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if store.locationCalls != 1 || store.lastLocation != location {
		t.Fatalf("expected one location update with %+v, got %d calls with %+v",
			location, store.locationCalls, store.lastLocation)
	}
}

func TestSetOnlineTogglesFlag(t *testing.T) {
	store := &stubPresenceStore{}
	service := NewPresenceService(store, nil, 15*time.Second)

	if err := service.SetOnline(context.Background(), 1, false); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	if store.onlineCalls != 1 || store.lastOnline {
		t.Fatalf("expected offline toggle recorded, got %d calls online=%v",
			store.onlineCalls, store.lastOnline)
	}
}

func TestSweepStalePassesCutoff(t *testing.T) {
	store := &stubPresenceStore{swept: 3}
	service := NewPresenceService(store, nil, 15*time.Second)

	swept, err := service.SweepStale(context.Background())
	if err != nil {
		t.Fatalf("SweepStale: %v", err)
	}
	if swept != 3 {
		t.Fatalf("expected 3 swept, got %d", swept)
	}

	expected := StaleCutoff(time.Now().UTC(), 15*time.Second)
	if diff := expected.Sub(store.lastCutoff); diff < -time.Second || diff > time.Second {
		t.Fatalf("cutoff drifted too far: %v vs %v", store.lastCutoff, expected)
	}
}
