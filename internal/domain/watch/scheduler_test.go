package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

type consumeCall struct {
	id   int64
	claw bool
}

type fakeStore struct {
	mu       sync.Mutex
	watches  map[int64]*Watch
	consumed chan consumeCall
}

func newFakeStore(watches ...*Watch) *fakeStore {
	f := &fakeStore{
		watches:  make(map[int64]*Watch),
		consumed: make(chan consumeCall, 16),
	}
	for _, w := range watches {
		f.watches[w.ID] = w
	}
	return f
}

func (f *fakeStore) List(_ context.Context) ([]*Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Watch, 0, len(f.watches))
	for _, w := range f.watches {
		out = append(out, w)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (*Watch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.watches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

func (f *fakeStore) Consume(_ context.Context, id int64, claw bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.watches[id]; !ok {
		return false, nil
	}
	delete(f.watches, id)
	f.consumed <- consumeCall{id: id, claw: claw}
	return true, nil
}

type fakeChecker struct {
	membership telegram.Membership
	err        error
}

func (f *fakeChecker) IsMember(_ context.Context, _ string, _ int64) (telegram.Membership, error) {
	return f.membership, f.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []int64
}

func (f *fakeNotifier) NotifyClawback(_ context.Context, userID, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return nil
}

func pastDueWatch(id int64) *Watch {
	return &Watch{
		ID:        id,
		UserID:    100,
		ChannelID: "@channel",
		Reward:    1000,
		DueAt:     time.Now().Add(-time.Hour),
		Stage:     StageInitial,
	}
}

func waitConsume(t *testing.T, store *fakeStore) consumeCall {
	t.Helper()
	select {
	case call := <-store.consumed:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not fire")
		return consumeCall{}
	}
}

func assertNoConsume(t *testing.T, store *fakeStore, within time.Duration) {
	t.Helper()
	select {
	case call := <-store.consumed:
		t.Fatalf("unexpected consume of watch %d", call.id)
	case <-time.After(within):
	}
}

func TestStartFiresPastDueWatches(t *testing.T) {
	store := newFakeStore(pastDueWatch(1))
	notifier := &fakeNotifier{}
	s := NewScheduler(store, &fakeChecker{membership: telegram.NotMember})
	s.SetNotifier(notifier)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	call := waitConsume(t, store)
	if call.id != 1 {
		t.Fatalf("fired watch %d, want 1", call.id)
	}
	if !call.claw {
		t.Fatal("lapsed subscription must claw the reward back")
	}

	s.Stop()
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.calls) != 1 || notifier.calls[0] != 100 {
		t.Fatalf("notifier calls = %v, want [100]", notifier.calls)
	}
}

func TestFireSkipsClawbackForMembers(t *testing.T) {
	store := newFakeStore(pastDueWatch(2))
	s := NewScheduler(store, &fakeChecker{membership: telegram.Member})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	call := waitConsume(t, store)
	if call.claw {
		t.Fatal("member must keep the reward")
	}
}

func TestFireTreatsUnknownAsLapsed(t *testing.T) {
	store := newFakeStore(pastDueWatch(3))
	s := NewScheduler(store, &fakeChecker{
		membership: telegram.Unknown,
		err:        context.DeadlineExceeded,
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	call := waitConsume(t, store)
	if !call.claw {
		t.Fatal("unknown membership must be treated as lapsed")
	}
}

func TestRearmAfterConsumeIsNoop(t *testing.T) {
	w := pastDueWatch(4)
	store := newFakeStore(w)
	s := NewScheduler(store, &fakeChecker{membership: telegram.Member})

	s.Arm(w)
	waitConsume(t, store)

	// The row is gone; a stray re-arm must not consume anything.
	s.Arm(w)
	assertNoConsume(t, store, 300*time.Millisecond)
	s.Stop()
}

func TestDoubleArmKeepsOneTimer(t *testing.T) {
	w := pastDueWatch(5)
	store := newFakeStore(w)
	s := NewScheduler(store, &fakeChecker{membership: telegram.NotMember})

	s.Arm(w)
	s.Arm(w)

	waitConsume(t, store)
	assertNoConsume(t, store, 300*time.Millisecond)
	s.Stop()
}

func TestStopCancelsPendingTimers(t *testing.T) {
	w := pastDueWatch(6)
	w.DueAt = time.Now().Add(150 * time.Millisecond)
	store := newFakeStore(w)
	s := NewScheduler(store, &fakeChecker{membership: telegram.NotMember})

	s.Arm(w)
	s.Stop()

	assertNoConsume(t, store, 400*time.Millisecond)
}
