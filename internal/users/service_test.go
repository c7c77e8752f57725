package users

import (
	"context"
	"testing"
	"time"

	"github.com/essaypilot/essaypilot/internal/models"
)

type fakeRepo struct {
	lastUpsert *models.User
	upsertErr  error
}

func (f *fakeRepo) UpsertBySub(ctx context.Context, u *models.User) (*models.User, error) {
	f.lastUpsert = u
	now := time.Now().UTC()
	if f.lastUpsert.CreatedAt.IsZero() {
		f.lastUpsert.CreatedAt = now
	}
	f.lastUpsert.UpdatedAt = now
	ret := *f.lastUpsert
	ret.ID = "abcd1234"
	return &ret, f.upsertErr
}

func (f *fakeRepo) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return nil, nil
}

func TestUpsertFromClaims(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	claims := map[string]interface{}{
		"sub":   "sub-123",
		"email": "x@example.com",
		"name":  "X User",
	}

	u, err := svc.UpsertFromClaims(ctx, claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.Sub != "sub-123" || u.Email != "x@example.com" || u.Name != "X User" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if repo.lastUpsert == nil {
		t.Fatal("expected repository UpsertBySub to be called")
	}
	if repo.lastUpsert.CreatedAt.IsZero() || repo.lastUpsert.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}
	if u.ID == "" {
		t.Fatalf("expected returned user to have an ID set by repo")
	}
}

func TestUpsertFromClaims_MissingSub(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	u, err := svc.UpsertFromClaims(context.Background(), map[string]interface{}{"email": "y@e.com"})
	if err != nil {
		t.Fatalf("unexpected error on missing sub: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil when sub missing, got: %v", u)
	}
}
