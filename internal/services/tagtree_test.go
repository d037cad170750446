package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wrongbook-backend/internal/curriculum"
	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/wrongbook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
)

func testLibrary(tb testing.TB) *curriculum.Library {
	tb.Helper()
	lib, err := curriculum.Load()
	if err != nil {
		tb.Fatalf("load curriculum: %v", err)
	}
	return lib
}

func newTreeService(tb testing.TB, tx *gorm.DB) (TagTreeService, taxonomyrepo.TagRepo) {
	tb.Helper()
	repo := taxonomyrepo.NewTagRepo(tx, testutil.Logger(tb))
	return NewTagTreeService(tx, testutil.Logger(tb), repo, testLibrary(tb)), repo
}

func TestSeedMaterializesCurriculum(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	tree, repo := newTreeService(t, tx)
	ctx := context.Background()

	lib := testLibrary(t)
	def, _ := lib.ForSubject(types.SubjectMath)

	created, err := tree.Seed(ctx, tx, def)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if created != def.NodeCount() {
		t.Fatalf("Seed: expected %d tags, created %d", def.NodeCount(), created)
	}

	n, err := repo.CountSystemBySubject(ctx, tx, types.SubjectMath)
	if err != nil {
		t.Fatalf("CountSystemBySubject: %v", err)
	}
	if int(n) != created {
		t.Fatalf("expected %d persisted tags, got %d", created, n)
	}

	// Spot-check the grade → chapter → section → knowledge-point chain.
	leaf, err := repo.GetSystemByNameSubject(ctx, tx, "绝对值的意义", types.SubjectMath)
	if err != nil {
		t.Fatalf("GetSystemByNameSubject: %v", err)
	}
	if leaf == nil || leaf.ParentID == nil {
		t.Fatalf("leaf missing or detached: %+v", leaf)
	}
	section, err := repo.GetByID(ctx, tx, *leaf.ParentID)
	if err != nil || section == nil || section.Name != "绝对值" {
		t.Fatalf("expected parent section 绝对值, got %+v err=%v", section, err)
	}
	chapter, err := repo.GetByID(ctx, tx, *section.ParentID)
	if err != nil || chapter == nil || chapter.Name != "有理数" {
		t.Fatalf("expected parent chapter 有理数, got %+v err=%v", chapter, err)
	}
	grade, err := repo.GetByID(ctx, tx, *chapter.ParentID)
	if err != nil || grade == nil || grade.Name != "七年级上" {
		t.Fatalf("expected grade root 七年级上, got %+v err=%v", grade, err)
	}
	if grade.ParentID != nil {
		t.Fatalf("grade root must have no parent: %+v", grade)
	}
	if grade.SortOrder != curriculum.GradeRank("七年级上") {
		t.Fatalf("grade root sort order: expected %d, got %d", curriculum.GradeRank("七年级上"), grade.SortOrder)
	}
	if !grade.IsSystem || grade.OwnerID != nil {
		t.Fatalf("seeded tags must be unowned system tags: %+v", grade)
	}
}

func TestDescendantsCollectsSubtree(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	tree, _ := newTreeService(t, tx)
	ctx := context.Background()

	grade := testutil.SeedSystemTag(t, ctx, tx, "七年级上", types.SubjectMath, nil, 1)
	chapter := testutil.SeedSystemTag(t, ctx, tx, "有理数", types.SubjectMath, &grade.ID, 1)
	section := testutil.SeedSystemTag(t, ctx, tx, "绝对值", types.SubjectMath, &chapter.ID, 1)
	leaf := testutil.SeedSystemTag(t, ctx, tx, "绝对值的意义", types.SubjectMath, &section.ID, 1)
	otherChapter := testutil.SeedSystemTag(t, ctx, tx, "整式的加减", types.SubjectMath, &grade.ID, 2)

	ids, err := tree.Descendants(ctx, tx, chapter.ID)
	if err != nil {
		t.Fatalf("Descendants: %v", err)
	}
	want := map[uuid.UUID]bool{chapter.ID: true, section.ID: true, leaf.ID: true}
	if len(ids) != len(want) {
		t.Fatalf("Descendants: expected %d ids, got %d (%v)", len(want), len(ids), ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Fatalf("Descendants: unexpected id %s", id)
		}
	}
	for _, id := range ids {
		if id == otherChapter.ID {
			t.Fatalf("Descendants: sibling chapter leaked into subtree")
		}
	}

	// A leaf's descendant set is itself.
	ids, err = tree.Descendants(ctx, tx, leaf.ID)
	if err != nil {
		t.Fatalf("Descendants (leaf): %v", err)
	}
	if len(ids) != 1 || ids[0] != leaf.ID {
		t.Fatalf("Descendants (leaf): expected only the leaf, got %v", ids)
	}
}

func TestDescendantsRejectsCycles(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	tree, repo := newTreeService(t, tx)
	ctx := context.Background()

	a := testutil.SeedSystemTag(t, ctx, tx, "环A", types.SubjectMath, nil, 1)
	b := testutil.SeedSystemTag(t, ctx, tx, "环B", types.SubjectMath, &a.ID, 1)
	if err := repo.UpdateFields(ctx, tx, a.ID, map[string]interface{}{"parent_id": b.ID}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if _, err := tree.Descendants(ctx, tx, a.ID); err == nil {
		t.Fatalf("expected depth-cap error on parent cycle")
	}
}

func TestDescendantsMissingRoot(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	tree, _ := newTreeService(t, tx)
	if _, err := tree.Descendants(context.Background(), tx, uuid.Nil); err == nil {
		t.Fatalf("expected error for nil root id")
	}
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	tree, repo := newTreeService(t, tx)
	ctx := context.Background()

	if err := tree.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	first, err := repo.CountSystemBySubject(ctx, tx, types.SubjectMath)
	if err != nil {
		t.Fatalf("CountSystemBySubject: %v", err)
	}
	if first == 0 {
		t.Fatalf("expected math to be seeded")
	}

	if err := tree.EnsureSeeded(ctx); err != nil {
		t.Fatalf("EnsureSeeded (second): %v", err)
	}
	second, err := repo.CountSystemBySubject(ctx, tx, types.SubjectMath)
	if err != nil {
		t.Fatalf("CountSystemBySubject (second): %v", err)
	}
	if second != first {
		t.Fatalf("second EnsureSeeded changed the tree: %d -> %d", first, second)
	}
}
