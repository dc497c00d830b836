package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ameropro/stars-api/internal/domain/ledger"
	"github.com/ameropro/stars-api/internal/domain/task"
	"github.com/ameropro/stars-api/internal/domain/watch"
	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

// AdminChecker reports admin privileges for review permission checks.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// ProofChecker verifies an uploaded proof object exists.
type ProofChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// Notifier interface for review outcome notifications
type Notifier interface {
	NotifyReviewVerdict(ctx context.Context, userID int64, taskTitle, verdict, comment string) error
}

// Service choreographs the assignment lifecycle: which transitions are
// legal, when the reward engine pays, and when a compliance watch is
// registered. The store itself stays dumb.
type Service struct {
	repo       Repository
	tasks      task.Repository
	ledger     ledger.Service
	watches    *watch.Service
	verifier   telegram.Checker
	admins     AdminChecker
	watchDelay time.Duration

	proofs   ProofChecker
	notifier Notifier
}

// NewService creates assignment service
func NewService(repo Repository, tasks task.Repository, ledgerSvc ledger.Service, watches *watch.Service, verifier telegram.Checker, admins AdminChecker, watchDelay time.Duration) *Service {
	return &Service{
		repo:       repo,
		tasks:      tasks,
		ledger:     ledgerSvc,
		watches:    watches,
		verifier:   verifier,
		admins:     admins,
		watchDelay: watchDelay,
	}
}

// SetProofChecker sets the proof storage (optional)
func (s *Service) SetProofChecker(proofs ProofChecker) {
	s.proofs = proofs
}

// SetNotifier sets the notifier (optional)
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Take creates a pending assignment for the acting user.
func (s *Service) Take(ctx context.Context, taskID, userID int64) (*Assignment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	a, err := s.repo.Create(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("assignment_id", a.ID).
		Int64("task_id", taskID).
		Int64("user_id", userID).
		Msg("assignment taken")

	return a, nil
}

// Complete resolves a pending assignment on the direct paths: view pays
// immediately, subscribe pays after one membership check and registers a
// deferred re-check, reaction must go through Submit.
func (s *Service) Complete(ctx context.Context, assignmentID, userID int64) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !a.BelongsTo(userID) {
		return nil, ErrNotOwner
	}
	if a.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	t, err := s.tasks.GetByID(ctx, a.TaskID)
	if err != nil {
		return nil, err
	}

	switch t.Type {
	case task.TypeView:
		if _, err := s.payAndApprove(ctx, a.ID, t, StatusPending, "", ""); err != nil {
			return nil, err
		}

	case task.TypeSubscribe:
		channelID := t.ChannelID()
		if channelID == "" {
			return nil, task.ErrInvalidPayload
		}

		membership, err := s.verifier.IsMember(ctx, channelID, userID)
		if err != nil {
			log.Warn().
				Err(err).
				Int64("assignment_id", a.ID).
				Str("channel_id", channelID).
				Msg("membership check unavailable, failing closed")
		}
		if membership != telegram.Member {
			return nil, ErrNotSubscribed
		}

		w, err := s.payAndApprove(ctx, a.ID, t, StatusPending, "", channelID)
		if err != nil {
			return nil, err
		}
		s.watches.Arm(w)

		log.Info().
			Int64("assignment_id", a.ID).
			Int64("watch_id", w.ID).
			Time("due_at", w.DueAt).
			Msg("subscription paid, compliance watch armed")

	case task.TypeReaction:
		return nil, ErrProofRequired

	default:
		return nil, task.ErrInvalidPayload
	}

	return s.repo.GetByID(ctx, assignmentID)
}

// Submit attaches proof to a reaction assignment and queues it for review.
func (s *Service) Submit(ctx context.Context, assignmentID, userID int64, proofKey string) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !a.BelongsTo(userID) {
		return nil, ErrNotOwner
	}
	if a.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	t, err := s.tasks.GetByID(ctx, a.TaskID)
	if err != nil {
		return nil, err
	}
	if t.Type != task.TypeReaction {
		return nil, ErrProofRequired
	}

	if s.proofs != nil {
		ok, err := s.proofs.Exists(ctx, proofKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrProofMissing
		}
	}

	if err := s.repo.Transition(ctx, a.ID, StatusSubmitted, proofKey, ""); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, assignmentID)
}

// Review resolves a submitted assignment. Only the task creator or an
// admin may judge it; approval pays through the same reference as every
// other payout for this assignment, so money moves at most once.
func (s *Service) Review(ctx context.Context, assignmentID, reviewerID int64, verdict Verdict, comment string) (*Assignment, error) {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusSubmitted {
		return nil, ErrInvalidTransition
	}

	t, err := s.tasks.GetByID(ctx, a.TaskID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeReviewer(ctx, t, reviewerID); err != nil {
		return nil, err
	}

	switch verdict {
	case VerdictApprove:
		if _, err := s.payAndApprove(ctx, a.ID, t, StatusSubmitted, comment, ""); err != nil {
			return nil, err
		}
	case VerdictReject, VerdictNeedsWork:
		if err := s.repo.Transition(ctx, a.ID, verdict.Status(), "", comment); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidTransition
	}

	log.Info().
		Int64("assignment_id", a.ID).
		Int64("reviewer_id", reviewerID).
		Str("verdict", string(verdict)).
		Msg("assignment reviewed")

	if s.notifier != nil {
		userID := a.UserID
		title := t.Title
		go func() {
			_ = s.notifier.NotifyReviewVerdict(context.Background(), userID, title, string(verdict), comment)
		}()
	}

	return s.repo.GetByID(ctx, assignmentID)
}

// ListMine returns the acting user's assignments, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64, limit, offset int) ([]*Assignment, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) authorizeReviewer(ctx context.Context, t *task.Task, reviewerID int64) error {
	if t.CreatedByUser(reviewerID) {
		return nil
	}
	isAdmin, err := s.admins.IsAdmin(ctx, reviewerID)
	if err != nil {
		log.Error().Err(err).Int64("reviewer_id", reviewerID).Msg("admin lookup failed")
		return ErrNotAllowed
	}
	if !isAdmin {
		return ErrNotAllowed
	}
	return nil
}

// payAndApprove pays the task reward and marks the assignment approved in
// one transaction. The row lock serializes racing approvals: the loser
// re-reads a non-matching status and backs off without double-scheduling
// a watch. When watchChannel is set, the compliance watch lands in the
// same transaction; arm it after this returns.
func (s *Service) payAndApprove(ctx context.Context, id int64, t *task.Task, from Status, comment, watchChannel string) (*watch.Watch, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	locked, err := s.repo.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if locked.Status != from {
		return nil, ErrInvalidTransition
	}

	if err := s.ledger.RewardTx(ctx, tx, locked.UserID, t.Reward, ledger.EntryTaskReward, Reference(id)); err != nil {
		if errors.Is(err, ledger.ErrReferenceConflict) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	var w *watch.Watch
	if watchChannel != "" {
		w, err = s.watches.ScheduleTx(ctx, tx, locked.UserID, watchChannel, t.Reward, t.ID, time.Now().Add(s.watchDelay))
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.TransitionTx(ctx, tx, id, StatusApproved, "", comment); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return w, nil
}
