package auth

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/wrongbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
)

func TestUserTokenRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserTokenRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "usertoken@example.com")

	err := repo.Upsert(ctx, tx, &types.UserToken{
		UserID:       u.ID,
		RefreshToken: "first",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}

	err = repo.Upsert(ctx, tx, &types.UserToken{
		UserID:       u.ID,
		RefreshToken: "second",
		ExpiresAt:    time.Now().Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}

	got, err := repo.GetByUserID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got == nil || got.RefreshToken != "second" {
		t.Fatalf("expected rotated token, got %+v", got)
	}

	if err := repo.FullDeleteByUserID(ctx, tx, u.ID); err != nil {
		t.Fatalf("FullDeleteByUserID: %v", err)
	}
	got, err = repo.GetByUserID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("expected token gone, got %+v", got)
	}
}
