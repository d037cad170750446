package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/wrongbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			ID:       uuid.New(),
			Email:    "userrepo@example.com",
			Password: "pw",
			Name:     "A",
			Role:     types.RoleStudent,
			Grade:    "初一",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}

	got, err := repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ID != created[0].ID {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	got, err = repo.GetByEmail(ctx, tx, "userrepo@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got == nil || got.Email != "userrepo@example.com" {
		t.Fatalf("GetByEmail: unexpected result: %+v", got)
	}

	got, err = repo.GetByEmail(ctx, tx, "missing@example.com")
	if err != nil {
		t.Fatalf("GetByEmail (missing): %v", err)
	}
	if got != nil {
		t.Fatalf("GetByEmail (missing): expected nil, got %+v", got)
	}

	if err := repo.UpdateFields(ctx, tx, created[0].ID, map[string]interface{}{"grade": "初二"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Grade != "初二" {
		t.Fatalf("UpdateFields: grade not updated: %+v", got)
	}
}
