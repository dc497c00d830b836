package watch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

const fireTimeout = 30 * time.Second

// Notifier tells the user their reward was taken back.
type Notifier interface {
	NotifyClawback(ctx context.Context, userID, amount int64, channelID string) error
}

// Scheduler arms one timer per durable watch and re-checks channel
// membership when it fires. Timers are in-memory only; on boot Start
// reloads every watch from the store, so past-due watches fire
// immediately instead of being dropped.
type Scheduler struct {
	store    Store
	verifier telegram.Checker
	notifier Notifier

	mu     sync.Mutex
	timers map[int64]*time.Timer
	wg     sync.WaitGroup
	closed bool
}

// NewScheduler creates the compliance scheduler
func NewScheduler(store Store, verifier telegram.Checker) *Scheduler {
	return &Scheduler{
		store:    store,
		verifier: verifier,
		timers:   make(map[int64]*time.Timer),
	}
}

// SetNotifier sets the notifier (optional)
func (s *Scheduler) SetNotifier(n Notifier) {
	s.notifier = n
}

// Start loads all pending watches and arms them.
func (s *Scheduler) Start(ctx context.Context) error {
	watches, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	for _, w := range watches {
		s.Arm(w)
	}
	log.Info().Int("count", len(watches)).Msg("compliance watches re-armed")
	return nil
}

// Stop cancels pending timers and waits for in-flight checks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Arm registers a timer for the watch. Past-due watches fire at once.
func (s *Scheduler) Arm(w *Watch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.timers[w.ID]; ok {
		return
	}
	id := w.ID
	s.timers[id] = time.AfterFunc(w.Delay(time.Now()), func() {
		s.fire(id)
	})
}

// fire runs the single re-check for a due watch. The store's Consume is
// the exactly-once gate, so a duplicate firing degrades to a no-op.
func (s *Scheduler) fire(id int64) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	delete(s.timers, id)
	s.mu.Unlock()
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	w, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Int64("watch_id", id).Msg("failed to load due watch")
		}
		return
	}

	member, err := s.verifier.IsMember(ctx, w.ChannelID, w.UserID)
	if err != nil {
		log.Warn().
			Err(err).
			Int64("watch_id", id).
			Int64("user_id", w.UserID).
			Msg("membership re-check unavailable, treating as lapsed")
	}
	claw := member != telegram.Member

	consumed, err := s.store.Consume(ctx, id, claw)
	if err != nil {
		log.Error().Err(err).Int64("watch_id", id).Msg("failed to consume watch")
		return
	}
	if !consumed {
		return
	}

	if claw {
		log.Info().
			Int64("watch_id", id).
			Int64("user_id", w.UserID).
			Int64("reward", w.Reward).
			Str("channel_id", w.ChannelID).
			Msg("subscription lapsed, reward clawed back")
		if s.notifier != nil {
			_ = s.notifier.NotifyClawback(ctx, w.UserID, w.Reward, w.ChannelID)
		}
	}
}
