package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/99minutos/member-system/internal/api/metrics"
	"github.com/99minutos/member-system/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	events []domain.MemberEvent
	fail   bool
	block  chan struct{}
}

func (s *recordingService) Process(_ context.Context, e domain.MemberEvent) error {
	if s.block != nil {
		<-s.block
	}
	if s.fail {
		return errors.New("boom")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingService) recorded() []domain.MemberEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.MemberEvent(nil), s.events...)
}

func TestDispatcher_DeliversAllEventsBeforeStopReturns(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(3, svc, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 50; i++ {
		d.Publish(domain.MemberEvent{Type: domain.EventMemberCreated, MemberID: fmt.Sprintf("m-%d", i)})
	}
	d.Stop()

	if got := len(svc.recorded()); got != 50 {
		t.Fatalf("processed %d events, want 50", got)
	}
}

func TestDispatcher_PreservesPerMemberOrder(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(4, svc, zerolog.Nop())
	d.Start(context.Background())

	d.Publish(domain.MemberEvent{Type: domain.EventMemberCreated, MemberID: "m-1"})
	d.Publish(domain.MemberEvent{Type: domain.EventLoginSucceeded, MemberID: "m-1"})
	d.Publish(domain.MemberEvent{Type: domain.EventMemberDeleted, MemberID: "m-1"})
	d.Stop()

	want := []domain.MemberEventType{domain.EventMemberCreated, domain.EventLoginSucceeded, domain.EventMemberDeleted}
	got := svc.recorded()
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Type != want[i] {
			t.Errorf("event %d: type = %s, want %s", i, got[i].Type, want[i])
		}
	}
}

func TestDispatcher_PublishNeverBlocksOnFullQueue(t *testing.T) {
	svc := &recordingService{block: make(chan struct{})}
	d := newDispatcher(1, 1, svc, zerolog.Nop())
	d.Start(context.Background())

	before := testutil.ToFloat64(metrics.AuditEventsDroppedTotal)

	// The worker holds one event, the buffer holds one more; the rest drop.
	for i := 0; i < 5; i++ {
		d.Publish(domain.MemberEvent{Type: domain.EventLoginFailed, Username: "ghost"})
	}

	if dropped := testutil.ToFloat64(metrics.AuditEventsDroppedTotal) - before; dropped < 3 {
		t.Errorf("dropped = %v, want at least 3", dropped)
	}

	close(svc.block)
	d.Stop()
}

func TestDispatcher_PublishAfterStopIsDropped(t *testing.T) {
	svc := &recordingService{}
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	before := testutil.ToFloat64(metrics.AuditEventsDroppedTotal)
	d.Publish(domain.MemberEvent{Type: domain.EventMemberCreated, MemberID: "late"})

	if got := testutil.ToFloat64(metrics.AuditEventsDroppedTotal) - before; got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
	if len(svc.recorded()) != 0 {
		t.Error("no event should be processed after Stop")
	}
}

func TestDispatcher_CountsProcessingErrors(t *testing.T) {
	svc := &recordingService{fail: true}
	d := NewDispatcher(1, svc, zerolog.Nop())
	d.Start(context.Background())

	before := testutil.ToFloat64(metrics.AuditEventsErrorsTotal)
	d.Publish(domain.MemberEvent{Type: domain.EventMemberDeleted, MemberID: "m-9"})
	d.Stop()

	if got := testutil.ToFloat64(metrics.AuditEventsErrorsTotal) - before; got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestShardKey_FallsBackToUsername(t *testing.T) {
	if got := shardKey(domain.MemberEvent{Username: "bob"}); got != "bob" {
		t.Errorf("shardKey = %q, want bob", got)
	}
	if got := shardKey(domain.MemberEvent{MemberID: "m-1", Username: "bob"}); got != "m-1" {
		t.Errorf("shardKey = %q, want m-1", got)
	}
}

func TestShardIndex_Deterministic(t *testing.T) {
	d := NewDispatcher(8, &recordingService{}, zerolog.Nop())
	for _, key := range []string{"a", "m-1", "65f0a1b2c3d4e5f601234567"} {
		first := d.shardIndex(key)
		if first < 0 || first >= 8 {
			t.Fatalf("shard %d out of range", first)
		}
		if d.shardIndex(key) != first {
			t.Errorf("shardIndex(%q) not deterministic", key)
		}
	}
}
