package content

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/wrongbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/pkg/gradefilter"
)

func TestMistakeItemRepoListByUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMistakeItemRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "list-items@example.com")
	other := testutil.SeedUser(t, ctx, tx, "list-items-2@example.com")

	mathTag := testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, nil, 1)
	physTag := testutil.SeedSystemTag(t, ctx, tx, "声现象", types.SubjectPhysics, nil, 1)

	mathItem := testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectMath, "七年级上", mathTag)
	physItem := testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectPhysics, "初二上", physTag)
	testutil.SeedMistakeItem(t, ctx, tx, other.ID, types.SubjectMath, "七年级上", mathTag)

	// Subject filter.
	items, err := repo.ListByUser(ctx, tx, owner.ID, ListFilter{Subject: types.SubjectMath})
	if err != nil {
		t.Fatalf("ListByUser (subject): %v", err)
	}
	if len(items) != 1 || items[0].ID != mathItem.ID {
		t.Fatalf("ListByUser (subject): expected the math item, got %+v", items)
	}
	if len(items[0].Tags) != 1 {
		t.Fatalf("ListByUser: tags not preloaded: %+v", items[0])
	}

	// Tag-id filter.
	items, err = repo.ListByUser(ctx, tx, owner.ID, ListFilter{TagIDs: []uuid.UUID{physTag.ID}})
	if err != nil {
		t.Fatalf("ListByUser (tag): %v", err)
	}
	if len(items) != 1 || items[0].ID != physItem.ID {
		t.Fatalf("ListByUser (tag): expected the physics item, got %+v", items)
	}

	// Grade patterns: 初二上 stored, queried as 八年级上.
	f := gradefilter.Build("八年级上")
	items, err = repo.ListByUser(ctx, tx, owner.ID, ListFilter{GradePatterns: f.Patterns})
	if err != nil {
		t.Fatalf("ListByUser (grade): %v", err)
	}
	if len(items) != 1 || items[0].ID != physItem.ID {
		t.Fatalf("ListByUser (grade): expected the 初二上 item, got %+v", items)
	}
}

func TestMistakeItemRepoListWithSystemTags(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMistakeItemRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "sys-links@example.com")
	sys := testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, nil, 1)
	custom := testutil.SeedCustomTag(t, ctx, tx, owner.ID, "易错", types.SubjectMath, nil)

	linked := testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectMath, "七年级上", sys, custom)
	testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectMath, "七年级上", custom)
	testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectMath, "七年级上")

	items, err := repo.ListWithSystemTags(ctx, tx)
	if err != nil {
		t.Fatalf("ListWithSystemTags: %v", err)
	}
	if len(items) != 1 || items[0].ID != linked.ID {
		t.Fatalf("ListWithSystemTags: expected only the system-linked item, got %+v", items)
	}
	if len(items[0].Tags) != 2 {
		t.Fatalf("ListWithSystemTags: expected both tags preloaded, got %+v", items[0].Tags)
	}
}

func TestMistakeItemRepoAppendTagsIsUnion(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMistakeItemRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "append-tags@example.com")
	first := testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, nil, 1)
	second := testutil.SeedSystemTag(t, ctx, tx, "相反数", types.SubjectMath, nil, 2)

	item := testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectMath, "七年级上", first)

	// Append a new tag together with an already-linked one.
	if err := repo.AppendTags(ctx, tx, item.ID, []*types.Tag{first, second}); err != nil {
		t.Fatalf("AppendTags: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || len(got.Tags) != 2 {
		t.Fatalf("expected 2 linked tags after union append, got %+v", got)
	}

	// Appending again must not duplicate links.
	if err := repo.AppendTags(ctx, tx, item.ID, []*types.Tag{second}); err != nil {
		t.Fatalf("AppendTags (repeat): %v", err)
	}
	var n int64
	if err := tx.WithContext(ctx).
		Table("mistake_item_tags").
		Where("mistake_item_id = ?", item.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 join rows, got %d", n)
	}
}

func TestMistakeItemRepoFullDeleteByIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMistakeItemRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "delete-items@example.com")
	tag := testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, nil, 1)
	item := testutil.SeedMistakeItem(t, ctx, tx, owner.ID, types.SubjectMath, "七年级上", tag)

	if err := repo.FullDeleteByIDs(ctx, tx, []uuid.UUID{item.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("item should be gone, got %+v", got)
	}
	var n int64
	if err := tx.WithContext(ctx).
		Table("mistake_item_tags").
		Where("mistake_item_id = ?", item.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected join rows removed, got %d", n)
	}
}
