package sponsor

import (
	"context"
	"errors"
	"testing"

	"github.com/ameropro/stars-api/internal/pkg/telegram"
)

type fakeRepo struct {
	channels []*Channel
}

func (f *fakeRepo) Upsert(_ context.Context, c *Channel) error {
	for _, existing := range f.channels {
		if existing.ChatID == c.ChatID {
			existing.Title = c.Title
			return nil
		}
	}
	f.channels = append(f.channels, &Channel{ChatID: c.ChatID, Title: c.Title})
	return nil
}

func (f *fakeRepo) Remove(_ context.Context, chatID string) error {
	for i, c := range f.channels {
		if c.ChatID == chatID {
			f.channels = append(f.channels[:i], f.channels[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeRepo) List(_ context.Context) ([]*Channel, error) {
	return f.channels, nil
}

type fakeChecker struct {
	membership map[string]telegram.Membership
	errs       map[string]error
}

func (f *fakeChecker) IsMember(_ context.Context, chatID string, _ int64) (telegram.Membership, error) {
	if err := f.errs[chatID]; err != nil {
		return telegram.Unknown, err
	}
	return f.membership[chatID], nil
}

func TestCheckUserReportsUnjoinedChannels(t *testing.T) {
	repo := &fakeRepo{channels: []*Channel{
		{ChatID: "@alpha"},
		{ChatID: "@beta"},
		{ChatID: "@gamma"},
	}}
	checker := &fakeChecker{
		membership: map[string]telegram.Membership{
			"@alpha": telegram.Member,
			"@beta":  telegram.NotMember,
		},
		errs: map[string]error{
			"@gamma": errors.New("api down"),
		},
	}
	svc := NewService(repo, checker)

	missing, err := svc.CheckUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("check user: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %d channels, want 2", len(missing))
	}
	if missing[0].ChatID != "@beta" || missing[1].ChatID != "@gamma" {
		t.Fatalf("missing = [%s, %s], want [@beta, @gamma]", missing[0].ChatID, missing[1].ChatID)
	}
}

func TestCheckUserWithEverythingJoined(t *testing.T) {
	repo := &fakeRepo{channels: []*Channel{{ChatID: "@alpha"}}}
	checker := &fakeChecker{membership: map[string]telegram.Membership{"@alpha": telegram.Member}}
	svc := NewService(repo, checker)

	missing, err := svc.CheckUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("check user: %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %d channels, want none", len(missing))
	}
}

func TestRemoveUnknownChannel(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeChecker{})

	if err := svc.Remove(context.Background(), "@ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
