package assignment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ameropro/stars-api/internal/domain/ledger"
	"github.com/ameropro/stars-api/internal/domain/task"
	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

var errNoDB = errors.New("transactions are not available in this test")

type fakeRepo struct {
	assignments   map[int64]*Assignment
	nextID        int64
	alreadyActive bool
}

func newFakeRepo(assignments ...*Assignment) *fakeRepo {
	f := &fakeRepo{assignments: make(map[int64]*Assignment), nextID: 100}
	for _, a := range assignments {
		f.assignments[a.ID] = a
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, taskID, userID int64) (*Assignment, error) {
	if f.alreadyActive {
		return nil, ErrAlreadyActive
	}
	a := &Assignment{ID: f.nextID, TaskID: taskID, UserID: userID, Status: StatusPending}
	f.nextID++
	f.assignments[a.ID] = a
	return a, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Assignment, error) {
	a, ok := f.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (f *fakeRepo) GetForUpdateTx(_ context.Context, _ *sqlx.Tx, id int64) (*Assignment, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeRepo) Transition(_ context.Context, id int64, status Status, proof, comment string) error {
	a, ok := f.assignments[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	if proof != "" {
		a.Proof = sql.NullString{String: proof, Valid: true}
	}
	a.Comment = sql.NullString{String: comment, Valid: comment != ""}
	return nil
}

func (f *fakeRepo) TransitionTx(ctx context.Context, _ *sqlx.Tx, id int64, status Status, proof, comment string) error {
	return f.Transition(ctx, id, status, proof, comment)
}

func (f *fakeRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]*Assignment, int, error) {
	out := []*Assignment{}
	for _, a := range f.assignments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) BeginTx(_ context.Context) (*sqlx.Tx, error) {
	return nil, errNoDB
}

type fakeTasks struct {
	tasks map[int64]*task.Task
}

func (f *fakeTasks) Create(_ context.Context, t *task.Task) error { return nil }

func (f *fakeTasks) GetByID(_ context.Context, id int64) (*task.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, task.ErrNotFound
	}
	return t, nil
}

func (f *fakeTasks) List(_ context.Context, _, _ int) ([]*task.Task, int, error) {
	return nil, 0, nil
}

func (f *fakeTasks) Count(_ context.Context) (int64, error) { return 0, nil }

type fakeLedger struct {
	ledger.Service
}

type fakeChecker struct {
	membership telegram.Membership
	err        error
	calls      int
}

func (f *fakeChecker) IsMember(_ context.Context, _ string, _ int64) (telegram.Membership, error) {
	f.calls++
	return f.membership, f.err
}

type fakeAdmins struct {
	admins map[int64]bool
}

func (f *fakeAdmins) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return f.admins[userID], nil
}

type fakeProofs struct {
	exists bool
}

func (f *fakeProofs) Exists(_ context.Context, _ string) (bool, error) {
	return f.exists, nil
}

func subscribeTask(id int64, creator int64) *task.Task {
	payload, _ := json.Marshal(task.SubscribePayload{ChannelID: "@channel"})
	t := &task.Task{ID: id, Type: task.TypeSubscribe, Title: "join", Reward: 1000, Payload: payload}
	if creator > 0 {
		t.CreatedBy = sql.NullInt64{Int64: creator, Valid: true}
	}
	return t
}

func reactionTask(id int64, creator int64) *task.Task {
	payload, _ := json.Marshal(task.ReactionPayload{Link: "https://t.me/c/1", Reaction: "🔥"})
	t := &task.Task{ID: id, Type: task.TypeReaction, Title: "react", Reward: 500, Payload: payload}
	if creator > 0 {
		t.CreatedBy = sql.NullInt64{Int64: creator, Valid: true}
	}
	return t
}

func newTestService(repo *fakeRepo, tasks map[int64]*task.Task, checker telegram.Checker, admins map[int64]bool) *Service {
	return NewService(
		repo,
		&fakeTasks{tasks: tasks},
		fakeLedger{},
		nil,
		checker,
		&fakeAdmins{admins: admins},
		168*time.Hour,
	)
}

func TestTakeUnknownTask(t *testing.T) {
	svc := newTestService(newFakeRepo(), map[int64]*task.Task{}, &fakeChecker{}, nil)

	_, err := svc.Take(context.Background(), 99, 1)
	if !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("got %v, want task.ErrNotFound", err)
	}
}

func TestTakePassesThroughAlreadyActive(t *testing.T) {
	repo := newFakeRepo()
	repo.alreadyActive = true
	svc := newTestService(repo, map[int64]*task.Task{7: reactionTask(7, 1)}, &fakeChecker{}, nil)

	_, err := svc.Take(context.Background(), 7, 1)
	if !errors.Is(err, ErrAlreadyActive) {
		t.Fatalf("got %v, want ErrAlreadyActive", err)
	}
}

func TestCompleteRejectsForeignAssignment(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusPending})
	svc := newTestService(repo, map[int64]*task.Task{7: subscribeTask(7, 1)}, &fakeChecker{}, nil)

	_, err := svc.Complete(context.Background(), 1, 6)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("got %v, want ErrNotOwner", err)
	}
}

func TestCompleteRequiresPending(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusApproved})
	svc := newTestService(repo, map[int64]*task.Task{7: subscribeTask(7, 1)}, &fakeChecker{}, nil)

	_, err := svc.Complete(context.Background(), 1, 5)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteReactionNeedsSubmit(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusPending})
	svc := newTestService(repo, map[int64]*task.Task{7: reactionTask(7, 1)}, &fakeChecker{}, nil)

	_, err := svc.Complete(context.Background(), 1, 5)
	if !errors.Is(err, ErrProofRequired) {
		t.Fatalf("got %v, want ErrProofRequired", err)
	}
}

func TestCompleteSubscribeFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		checker *fakeChecker
	}{
		{"not a member", &fakeChecker{membership: telegram.NotMember}},
		{"adapter unavailable", &fakeChecker{membership: telegram.Unknown, err: context.DeadlineExceeded}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusPending})
			svc := newTestService(repo, map[int64]*task.Task{7: subscribeTask(7, 1)}, tc.checker, nil)

			_, err := svc.Complete(context.Background(), 1, 5)
			if !errors.Is(err, ErrNotSubscribed) {
				t.Fatalf("got %v, want ErrNotSubscribed", err)
			}
			if tc.checker.calls != 1 {
				t.Fatalf("adapter consulted %d times, want exactly 1", tc.checker.calls)
			}
			if got := repo.assignments[1].Status; got != StatusPending {
				t.Fatalf("status = %s, must stay pending without reward", got)
			}
		})
	}
}

func TestSubmitOnlyForReactionTasks(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusPending})
	svc := newTestService(repo, map[int64]*task.Task{7: subscribeTask(7, 1)}, &fakeChecker{}, nil)

	_, err := svc.Submit(context.Background(), 1, 5, "proofs/2026/01/5/abc.jpg")
	if !errors.Is(err, ErrProofRequired) {
		t.Fatalf("got %v, want ErrProofRequired", err)
	}
}

func TestSubmitChecksProofStorage(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusPending})
	svc := newTestService(repo, map[int64]*task.Task{7: reactionTask(7, 1)}, &fakeChecker{}, nil)
	svc.SetProofChecker(&fakeProofs{exists: false})

	_, err := svc.Submit(context.Background(), 1, 5, "proofs/2026/01/5/missing.jpg")
	if !errors.Is(err, ErrProofMissing) {
		t.Fatalf("got %v, want ErrProofMissing", err)
	}

	svc.SetProofChecker(&fakeProofs{exists: true})
	a, err := svc.Submit(context.Background(), 1, 5, "proofs/2026/01/5/shot.jpg")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if a.Status != StatusSubmitted {
		t.Fatalf("status = %s, want submitted", a.Status)
	}
	if !a.Proof.Valid || a.Proof.String != "proofs/2026/01/5/shot.jpg" {
		t.Fatalf("proof = %+v, want stored key", a.Proof)
	}
}

func TestReviewRequiresSubmitted(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusPending})
	svc := newTestService(repo, map[int64]*task.Task{7: reactionTask(7, 2)}, &fakeChecker{}, nil)

	_, err := svc.Review(context.Background(), 1, 2, VerdictReject, "no screenshot")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}

func TestReviewRequiresCreatorOrAdmin(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusSubmitted})
	svc := newTestService(repo, map[int64]*task.Task{7: reactionTask(7, 2)}, &fakeChecker{}, map[int64]bool{9: true})

	if _, err := svc.Review(context.Background(), 1, 8, VerdictReject, ""); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("stranger: got %v, want ErrNotAllowed", err)
	}

	// Task creator may review.
	a, err := svc.Review(context.Background(), 1, 2, VerdictNeedsWork, "retake the screenshot")
	if err != nil {
		t.Fatalf("creator review: %v", err)
	}
	if a.Status != StatusNeedsWork {
		t.Fatalf("status = %s, want needs_work", a.Status)
	}
	if !a.Comment.Valid || a.Comment.String != "retake the screenshot" {
		t.Fatalf("comment = %+v, want reviewer comment", a.Comment)
	}
}

func TestReviewAdminMayReject(t *testing.T) {
	repo := newFakeRepo(&Assignment{ID: 1, TaskID: 7, UserID: 5, Status: StatusSubmitted})
	svc := newTestService(repo, map[int64]*task.Task{7: reactionTask(7, 2)}, &fakeChecker{}, map[int64]bool{9: true})

	a, err := svc.Review(context.Background(), 1, 9, VerdictReject, "wrong post")
	if err != nil {
		t.Fatalf("admin review: %v", err)
	}
	if a.Status != StatusRejected {
		t.Fatalf("status = %s, want rejected", a.Status)
	}
}

func TestStatusRestartable(t *testing.T) {
	restartable := map[Status]bool{
		StatusPending:   false,
		StatusSubmitted: false,
		StatusApproved:  false,
		StatusRejected:  true,
		StatusNeedsWork: true,
	}
	for status, want := range restartable {
		if got := status.Restartable(); got != want {
			t.Errorf("%s.Restartable() = %v, want %v", status, got, want)
		}
	}
}
