package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/wrongbook-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test Student",
		Role:     types.RoleStudent,
		Grade:    "初一",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSystemTag(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, subject types.Subject, parentID *uuid.UUID, order int) *types.Tag {
	tb.Helper()
	tag := &types.Tag{
		ID:        uuid.New(),
		Name:      name,
		Subject:   subject,
		ParentID:  parentID,
		IsSystem:  true,
		SortOrder: order,
	}
	if err := tx.WithContext(ctx).Create(tag).Error; err != nil {
		tb.Fatalf("seed system tag %q: %v", name, err)
	}
	return tag
}

func SeedCustomTag(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string, subject types.Subject, parentID *uuid.UUID) *types.Tag {
	tb.Helper()
	tag := &types.Tag{
		ID:       uuid.New(),
		Name:     name,
		Subject:  subject,
		ParentID: parentID,
		OwnerID:  &ownerID,
	}
	if err := tx.WithContext(ctx).Create(tag).Error; err != nil {
		tb.Fatalf("seed custom tag %q: %v", name, err)
	}
	return tag
}

func SeedMistakeItem(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, subject types.Subject, gradeContext string, tags ...*types.Tag) *types.MistakeItem {
	tb.Helper()
	item := &types.MistakeItem{
		ID:           uuid.New(),
		UserID:       userID,
		Subject:      subject,
		GradeContext: gradeContext,
		Analysis:     datatypes.JSON([]byte(`{}`)),
		Tags:         tags,
	}
	if err := tx.WithContext(ctx).Create(item).Error; err != nil {
		tb.Fatalf("seed mistake item: %v", err)
	}
	return item
}
