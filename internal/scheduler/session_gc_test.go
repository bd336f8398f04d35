package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/moteur/internal/domain"
	"github.com/MrSnakeDoc/moteur/internal/logger"
	"github.com/MrSnakeDoc/moteur/internal/search"
	"github.com/MrSnakeDoc/moteur/internal/session"
)

type nopFetcher struct{}

func (nopFetcher) Fetch(context.Context, string, string) ([]domain.Listing, error) { return nil, nil }

func TestSessionCollector_Collect(t *testing.T) {
	log := logger.New("error", false)
	registry := session.NewRegistry(func() *search.Controller {
		return search.NewController(context.Background(), nopFetcher{}, logger.NewNop())
	}, 0)

	oldID, _, _ := registry.Resolve("")
	time.Sleep(20 * time.Millisecond)
	freshID, _, _ := registry.Resolve("")

	// Create collector with a ttl that only the first session exceeds
	sc := NewSessionCollector(registry, log, time.Hour, 10*time.Millisecond)

	evicted := sc.Collect()
	if evicted != 1 {
		t.Errorf("Expected 1 evicted session, got %d", evicted)
	}

	if _, ok := registry.Get(oldID); ok {
		t.Error("Idle session was not removed")
	}
	if _, ok := registry.Get(freshID); !ok {
		t.Error("Active session was incorrectly removed")
	}
	if registry.GetLastCollected().IsZero() {
		t.Error("Collection time was not recorded")
	}
}

func TestSessionCollector_DefaultTTL(t *testing.T) {
	sc := NewSessionCollector(session.NewRegistry(nil, 0), logger.NewNop(), time.Hour, 0)
	if sc.ttl != DefaultSessionTTL {
		t.Errorf("Expected default ttl %v, got %v", DefaultSessionTTL, sc.ttl)
	}
}

func TestSessionCollector_StartStop(t *testing.T) {
	registry := session.NewRegistry(func() *search.Controller {
		return search.NewController(context.Background(), nopFetcher{}, logger.NewNop())
	}, 0)
	registry.Resolve("")

	sc := NewSessionCollector(registry, logger.NewNop(), 5*time.Millisecond, time.Nanosecond)
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer sc.Stop()

	deadline := time.Now().Add(time.Second)
	for registry.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Session was never collected by the periodic loop")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
