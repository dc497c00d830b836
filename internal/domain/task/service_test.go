package task

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	tasks  map[int64]*Task
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[int64]*Task), nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, t *Task) error {
	t.ID = f.nextID
	f.nextID++
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]*Task, int, error) {
	out := []*Task{}
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, len(f.tasks), nil
}

func (f *fakeRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.tasks)), nil
}

func testFloors() Floors {
	return Floors{TypeSubscribe: 1000, TypeView: 300, TypeReaction: 500}
}

func TestCreateValidatesPayloadPerType(t *testing.T) {
	svc := NewService(newFakeRepo(), testFloors())
	ctx := context.Background()

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{
			name: "subscribe with channel",
			req:  CreateTaskRequest{Type: "subscribe", Title: "join us", Reward: 1000, ChannelID: "@channel"},
		},
		{
			name:    "subscribe without channel",
			req:     CreateTaskRequest{Type: "subscribe", Title: "join us", Reward: 1000},
			wantErr: ErrInvalidPayload,
		},
		{
			name: "view with link",
			req:  CreateTaskRequest{Type: "view", Title: "watch", Reward: 300, Link: "https://t.me/c/1"},
		},
		{
			name:    "view without link",
			req:     CreateTaskRequest{Type: "view", Title: "watch", Reward: 300},
			wantErr: ErrInvalidPayload,
		},
		{
			name: "reaction complete",
			req:  CreateTaskRequest{Type: "reaction", Title: "react", Reward: 500, Link: "https://t.me/c/1", Reaction: "👍"},
		},
		{
			name:    "reaction without emoji",
			req:     CreateTaskRequest{Type: "reaction", Title: "react", Reward: 500, Link: "https://t.me/c/1"},
			wantErr: ErrInvalidPayload,
		},
		{
			name:    "unknown type",
			req:     CreateTaskRequest{Type: "retweet", Title: "nope", Reward: 9000},
			wantErr: ErrInvalidPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, 1, &tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateEnforcesRewardFloor(t *testing.T) {
	svc := NewService(newFakeRepo(), testFloors())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, &CreateTaskRequest{
		Type: "subscribe", Title: "cheap", Reward: 999, ChannelID: "@channel",
	})
	if !errors.Is(err, ErrRewardBelowFloor) {
		t.Fatalf("got %v, want ErrRewardBelowFloor", err)
	}

	// Exactly at the floor is allowed.
	created, err := svc.Create(ctx, 1, &CreateTaskRequest{
		Type: "subscribe", Title: "fair", Reward: 1000, ChannelID: "@channel",
	})
	if err != nil {
		t.Fatalf("create at floor: %v", err)
	}
	if created.Reward != 1000 {
		t.Fatalf("reward = %d, want 1000", created.Reward)
	}
}

func TestCreateDistinguishesPlatformTasks(t *testing.T) {
	svc := NewService(newFakeRepo(), testFloors())
	ctx := context.Background()

	platform, err := svc.Create(ctx, 0, &CreateTaskRequest{
		Type: "view", Title: "seeded", Reward: 300, Link: "https://t.me/c/2",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !platform.PlatformCreated() {
		t.Fatal("creator 0 must produce a platform task")
	}

	owned, err := svc.Create(ctx, 42, &CreateTaskRequest{
		Type: "view", Title: "owned", Reward: 300, Link: "https://t.me/c/3",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !owned.CreatedByUser(42) {
		t.Fatalf("task must belong to creator 42, got %+v", owned.CreatedBy)
	}
}

func TestChannelIDExtraction(t *testing.T) {
	svc := NewService(newFakeRepo(), testFloors())
	ctx := context.Background()

	sub, err := svc.Create(ctx, 1, &CreateTaskRequest{
		Type: "subscribe", Title: "join", Reward: 1000, ChannelID: "@stars_channel",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := sub.ChannelID(); got != "@stars_channel" {
		t.Fatalf("ChannelID() = %q, want @stars_channel", got)
	}

	view, err := svc.Create(ctx, 1, &CreateTaskRequest{
		Type: "view", Title: "watch", Reward: 300, Link: "https://t.me/c/4",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := view.ChannelID(); got != "" {
		t.Fatalf("ChannelID() on view task = %q, want empty", got)
	}
}
