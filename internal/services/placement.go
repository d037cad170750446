package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/pkg/gradefilter"
)

// placementParent finds the most specific system tag matching a grade/semester
// label: deepest match wins, ties broken by sort order then creation time (the
// candidate query returns that order). Best effort; nil when nothing matches.
// New custom tags hang here so they land inside the right grade's notebook
// instead of floating at the root.
func placementParent(ctx context.Context, tx *gorm.DB, tagRepo taxonomyrepo.TagRepo, subject types.Subject, gradeContext string) (*uuid.UUID, error) {
	f := gradefilter.Build(gradeContext)
	if len(f.Patterns) == 0 {
		return nil, nil
	}
	candidates, err := tagRepo.GetSystemBySubjectNameLike(ctx, tx, subject, f.Patterns)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	cache := make(map[uuid.UUID]*types.Tag, len(candidates))
	for _, c := range candidates {
		cache[c.ID] = c
	}
	depthOf := func(t *types.Tag) (int, error) {
		depth := 0
		for t.ParentID != nil && depth < maxTreeDepth {
			parent, ok := cache[*t.ParentID]
			if !ok {
				loaded, err := tagRepo.GetByID(ctx, tx, *t.ParentID)
				if err != nil {
					return 0, err
				}
				if loaded == nil {
					break
				}
				cache[loaded.ID] = loaded
				parent = loaded
			}
			t = parent
			depth++
		}
		return depth, nil
	}

	var best *types.Tag
	bestDepth := -1
	for _, c := range candidates {
		d, err := depthOf(c)
		if err != nil {
			return nil, err
		}
		if d > bestDepth {
			best = c
			bestDepth = d
		}
	}
	id := best.ID
	return &id, nil
}
