package services

import (
	"context"
	"testing"

	"gorm.io/gorm"

	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/wrongbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
)

func newTagService(tb testing.TB, tx *gorm.DB) (TagService, taxonomyrepo.TagRepo) {
	tb.Helper()
	log := testutil.Logger(tb)
	repo := taxonomyrepo.NewTagRepo(tx, log)
	tree := NewTagTreeService(tx, log, repo, testLibrary(tb))
	return NewTagService(tx, log, repo, tree), repo
}

func TestGetSubjectTreeNestsNodes(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, _ := newTagService(t, tx)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "tree@example.com")

	grade := testutil.SeedSystemTag(t, ctx, tx, "七年级上", types.SubjectMath, nil, 1)
	chapter := testutil.SeedSystemTag(t, ctx, tx, "有理数", types.SubjectMath, &grade.ID, 1)
	testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, &chapter.ID, 1)
	testutil.SeedSystemTag(t, ctx, tx, "七年级下", types.SubjectMath, nil, 2)
	testutil.SeedCustomTag(t, ctx, tx, user.ID, "我的整理", types.SubjectMath, &chapter.ID)

	roots, err := svc.GetSubjectTree(ctx, user.ID, types.SubjectMath)
	if err != nil {
		t.Fatalf("GetSubjectTree: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 grade roots, got %d", len(roots))
	}
	if roots[0].Name != "七年级上" || roots[1].Name != "七年级下" {
		t.Fatalf("roots out of order: %s, %s", roots[0].Name, roots[1].Name)
	}

	if len(roots[0].Nodes) != 1 || roots[0].Nodes[0].Name != "有理数" {
		t.Fatalf("expected chapter under 七年级上, got %+v", roots[0].Nodes)
	}
	chapterNode := roots[0].Nodes[0]
	names := map[string]bool{}
	for _, n := range chapterNode.Nodes {
		names[n.Name] = true
	}
	if !names["数轴"] || !names["我的整理"] {
		t.Fatalf("expected system leaf and custom tag under the chapter, got %v", names)
	}
}

func TestGetSubjectTreeHidesOtherUsersCustomTags(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, _ := newTagService(t, tx)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "tree-mine@example.com")
	other := testutil.SeedUser(t, ctx, tx, "tree-other@example.com")
	testutil.SeedCustomTag(t, ctx, tx, other.ID, "别人的", types.SubjectMath, nil)

	roots, err := svc.GetSubjectTree(ctx, user.ID, types.SubjectMath)
	if err != nil {
		t.Fatalf("GetSubjectTree: %v", err)
	}
	for _, r := range roots {
		if r.Name == "别人的" {
			t.Fatalf("another user's custom tag leaked")
		}
	}
}

func TestCreateCustomTag(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, repo := newTagService(t, tx)
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "create-tag@example.com")
	grade := testutil.SeedSystemTag(t, ctx, tx, "七年级上", types.SubjectMath, nil, 1)

	tag, err := svc.CreateCustomTag(ctx, user.ID, "压轴题", types.SubjectMath, &grade.ID)
	if err != nil {
		t.Fatalf("CreateCustomTag: %v", err)
	}
	if tag.IsSystem || tag.OwnerID == nil || *tag.OwnerID != user.ID {
		t.Fatalf("expected a user-owned custom tag, got %+v", tag)
	}
	if got, _ := repo.GetByID(ctx, tx, tag.ID); got == nil {
		t.Fatalf("custom tag not persisted")
	}

	// Duplicate (name, subject) for the same owner.
	_, err = svc.CreateCustomTag(ctx, user.ID, "压轴题", types.SubjectMath, nil)
	if code := apiErrCode(t, err); code != "tag_exists" {
		t.Fatalf("duplicate: expected tag_exists, got %s", code)
	}

	// Same name in another subject is fine.
	if _, err := svc.CreateCustomTag(ctx, user.ID, "压轴题", types.SubjectPhysics, nil); err != nil {
		t.Fatalf("CreateCustomTag (other subject): %v", err)
	}

	// Parent must live in the same subject.
	_, err = svc.CreateCustomTag(ctx, user.ID, "错位相减", types.SubjectPhysics, &grade.ID)
	if code := apiErrCode(t, err); code != "invalid_argument" {
		t.Fatalf("cross-subject parent: expected invalid_argument, got %s", code)
	}
}

func TestRenameCustomTag(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, repo := newTagService(t, tx)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "rename-tag@example.com")
	intruder := testutil.SeedUser(t, ctx, tx, "rename-tag-2@example.com")

	sys := testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, nil, 1)
	custom := testutil.SeedCustomTag(t, ctx, tx, owner.ID, "错题整理", types.SubjectMath, nil)
	testutil.SeedCustomTag(t, ctx, tx, owner.ID, "压轴题", types.SubjectMath, nil)

	renamed, err := svc.RenameCustomTag(ctx, owner.ID, custom.ID, "易错点")
	if err != nil {
		t.Fatalf("RenameCustomTag: %v", err)
	}
	if renamed.Name != "易错点" {
		t.Fatalf("expected renamed tag, got %q", renamed.Name)
	}
	if got, _ := repo.GetByID(ctx, tx, custom.ID); got == nil || got.Name != "易错点" {
		t.Fatalf("rename not persisted: %+v", got)
	}

	// Renaming to the tag's current name is a no-op, not a conflict.
	if _, err := svc.RenameCustomTag(ctx, owner.ID, custom.ID, "易错点"); err != nil {
		t.Fatalf("rename to same name: %v", err)
	}

	if _, err := svc.RenameCustomTag(ctx, owner.ID, custom.ID, "压轴题"); apiErrCode(t, err) != "tag_exists" {
		t.Fatalf("rename onto sibling: expected tag_exists, got %v", err)
	}
	if _, err := svc.RenameCustomTag(ctx, owner.ID, custom.ID, ""); apiErrCode(t, err) != "invalid_argument" {
		t.Fatalf("empty name: expected invalid_argument, got %v", err)
	}
	if _, err := svc.RenameCustomTag(ctx, owner.ID, sys.ID, "改名"); apiErrCode(t, err) != "forbidden" {
		t.Fatalf("system tag rename: expected forbidden, got %v", err)
	}
	if _, err := svc.RenameCustomTag(ctx, intruder.ID, custom.ID, "抢注"); apiErrCode(t, err) != "forbidden" {
		t.Fatalf("foreign tag rename: expected forbidden, got %v", err)
	}
}

func TestDeleteCustomTagGuards(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	svc, repo := newTagService(t, tx)
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "del-tag@example.com")
	intruder := testutil.SeedUser(t, ctx, tx, "del-tag-2@example.com")

	sys := testutil.SeedSystemTag(t, ctx, tx, "数轴", types.SubjectMath, nil, 1)
	custom := testutil.SeedCustomTag(t, ctx, tx, owner.ID, "我的", types.SubjectMath, nil)

	if code := apiErrCode(t, svc.DeleteCustomTag(ctx, owner.ID, sys.ID)); code != "forbidden" {
		t.Fatalf("system tag delete: expected forbidden, got %s", code)
	}
	if code := apiErrCode(t, svc.DeleteCustomTag(ctx, intruder.ID, custom.ID)); code != "forbidden" {
		t.Fatalf("foreign tag delete: expected forbidden, got %s", code)
	}

	if err := svc.DeleteCustomTag(ctx, owner.ID, custom.ID); err != nil {
		t.Fatalf("DeleteCustomTag: %v", err)
	}
	if got, _ := repo.GetByID(ctx, tx, custom.ID); got != nil {
		t.Fatalf("custom tag should be gone")
	}

	if code := apiErrCode(t, svc.DeleteCustomTag(ctx, owner.ID, custom.ID)); code != "not_found" {
		t.Fatalf("second delete: expected not_found, got %s", code)
	}
}
