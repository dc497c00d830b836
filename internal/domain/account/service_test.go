package account

import (
	"context"
	"testing"
)

type fakeRepo struct {
	users        map[int64]*User
	lastReferrer int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*User)}
}

func (f *fakeRepo) Ensure(_ context.Context, id int64, username string, referrerID int64) error {
	f.lastReferrer = referrerID
	if u, ok := f.users[id]; ok {
		if username != "" {
			u.Username = username
		}
		return nil
	}
	u := &User{ID: id, Username: username, Tier: TierBase}
	if referrerID > 0 && referrerID != id {
		if _, exists := f.users[referrerID]; exists {
			u.ReferrerID.Int64 = referrerID
			u.ReferrerID.Valid = true
		}
	}
	f.users[id] = u
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRepo) CountReferrals(_ context.Context, referrerID int64) (int, error) {
	count := 0
	for _, u := range f.users {
		if u.HasReferrer() && u.ReferrerID.Int64 == referrerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) Stats(_ context.Context) (*Stats, error) {
	return &Stats{Users: int64(len(f.users))}, nil
}

func TestEnsureSetsReferrerFromStartParam(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Ensure(ctx, 100, "referrer", ""); err != nil {
		t.Fatalf("ensure referrer: %v", err)
	}
	u, err := svc.Ensure(ctx, 200, "newbie", "r100")
	if err != nil {
		t.Fatalf("ensure referred user: %v", err)
	}

	if !u.HasReferrer() || u.ReferrerID.Int64 != 100 {
		t.Fatalf("expected referrer 100, got %+v", u.ReferrerID)
	}
}

func TestEnsureDropsSelfReferral(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	u, err := svc.Ensure(context.Background(), 100, "sneaky", "r100")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	if u.HasReferrer() {
		t.Fatalf("self-referral must be dropped, got referrer %d", u.ReferrerID.Int64)
	}
	if repo.lastReferrer != 0 {
		t.Fatalf("service must not pass self-referral to the store, got %d", repo.lastReferrer)
	}
}

func TestEnsureIgnoresGarbageStartParam(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	u, err := svc.Ensure(context.Background(), 100, "user", "not-a-ref-link")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if u.HasReferrer() {
		t.Fatal("garbage start param must not produce a referrer")
	}
}

func TestReferralsCount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	svc.Ensure(ctx, 1, "referrer", "")
	svc.Ensure(ctx, 2, "a", "r1")
	svc.Ensure(ctx, 3, "b", "r1")
	svc.Ensure(ctx, 4, "c", "")

	count, err := svc.Referrals(ctx, 1)
	if err != nil {
		t.Fatalf("referrals: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 referrals, got %d", count)
	}
}
