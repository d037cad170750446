package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	contentrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/content"
	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/pkg/apierr"
	"github.com/yungbote/wrongbook-backend/internal/pkg/gradefilter"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

type CreateMistakeInput struct {
	Subject      types.Subject  `json:"subject"`
	GradeContext string         `json:"grade_context"`
	ImageURL     string         `json:"image_url"`
	Analysis     datatypes.JSON `json:"analysis"`

	// KnowledgePoints are the free-text strings the AI analysis produced.
	// Each resolves to a system tag by (name, subject) when the curriculum
	// knows the concept, otherwise to the caller's custom tag.
	KnowledgePoints []string `json:"knowledge_points"`
}

type ListMistakesOptions struct {
	Subject types.Subject
	// TagID scopes to one tag's whole subtree (chapter-level filtering).
	TagID *uuid.UUID
	// Grade matches grade_context through the legacy-spelling filter.
	Grade string
}

type MistakeService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateMistakeInput) (*types.MistakeItem, error)
	List(ctx context.Context, userID uuid.UUID, opts ListMistakesOptions) ([]*types.MistakeItem, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type mistakeService struct {
	db      *gorm.DB
	log     *logger.Logger
	items   contentrepo.MistakeItemRepo
	tagRepo taxonomyrepo.TagRepo
	tree    TagTreeService
}

func NewMistakeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	items contentrepo.MistakeItemRepo,
	tagRepo taxonomyrepo.TagRepo,
	tree TagTreeService,
) MistakeService {
	return &mistakeService{
		db:      db,
		log:     baseLog.With("service", "MistakeService"),
		items:   items,
		tagRepo: tagRepo,
		tree:    tree,
	}
}

func (s *mistakeService) Create(ctx context.Context, userID uuid.UUID, in CreateMistakeInput) (*types.MistakeItem, error) {
	if userID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user"))
	}
	if !in.Subject.Valid() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("unknown subject %q", in.Subject))
	}

	var item *types.MistakeItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item = &types.MistakeItem{
			ID:           uuid.New(),
			UserID:       userID,
			Subject:      in.Subject,
			GradeContext: in.GradeContext,
			ImageURL:     in.ImageURL,
			Analysis:     in.Analysis,
		}
		if _, err := s.items.Create(ctx, tx, []*types.MistakeItem{item}); err != nil {
			return fmt.Errorf("create mistake item: %w", err)
		}

		var tags []*types.Tag
		seen := make(map[uuid.UUID]bool)
		for _, name := range in.KnowledgePoints {
			if name == "" {
				continue
			}
			tag, err := s.resolveTag(ctx, tx, userID, name, in.Subject, in.GradeContext)
			if err != nil {
				return err
			}
			if !seen[tag.ID] {
				seen[tag.ID] = true
				tags = append(tags, tag)
			}
		}
		if err := s.items.AppendTags(ctx, tx, item.ID, tags); err != nil {
			return fmt.Errorf("link mistake item tags: %w", err)
		}
		item.Tags = tags
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// resolveTag maps one AI knowledge-point string to a tag: the matching system
// tag when the curriculum has the concept, else the user's existing custom tag,
// else a new custom tag placed under the grade-context match. Identical
// resolution to the rebuild restorer, with the item's owner as tag owner.
func (s *mistakeService) resolveTag(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, subject types.Subject, gradeContext string) (*types.Tag, error) {
	tag, err := s.tagRepo.GetSystemByNameSubject(ctx, tx, name, subject)
	if err != nil {
		return nil, fmt.Errorf("lookup system tag %q: %w", name, err)
	}
	if tag != nil {
		return tag, nil
	}
	tag, err = s.tagRepo.GetCustomByOwner(ctx, tx, userID, name, subject)
	if err != nil {
		return nil, fmt.Errorf("lookup custom tag %q: %w", name, err)
	}
	if tag != nil {
		return tag, nil
	}
	parentID, err := placementParent(ctx, tx, s.tagRepo, subject, gradeContext)
	if err != nil {
		return nil, fmt.Errorf("place custom tag %q: %w", name, err)
	}
	tag = &types.Tag{
		ID:       uuid.New(),
		Name:     name,
		Subject:  subject,
		ParentID: parentID,
		IsSystem: false,
		OwnerID:  &userID,
	}
	if _, err := s.tagRepo.Create(ctx, tx, []*types.Tag{tag}); err != nil {
		return nil, fmt.Errorf("create custom tag %q: %w", name, err)
	}
	return tag, nil
}

func (s *mistakeService) List(ctx context.Context, userID uuid.UUID, opts ListMistakesOptions) ([]*types.MistakeItem, error) {
	filter := contentrepo.ListFilter{Subject: opts.Subject}
	if opts.TagID != nil {
		ids, err := s.tree.Descendants(ctx, nil, *opts.TagID)
		if err != nil {
			return nil, fmt.Errorf("expand tag subtree: %w", err)
		}
		filter.TagIDs = ids
	}
	if opts.Grade != "" {
		filter.GradePatterns = gradefilter.Build(opts.Grade).Patterns
	}
	return s.items.ListByUser(ctx, nil, userID, filter)
}

func (s *mistakeService) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.items.GetByID(ctx, nil, itemID)
	if err != nil {
		return fmt.Errorf("load mistake item: %w", err)
	}
	if item == nil {
		return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("mistake item %s not found", itemID))
	}
	if item.UserID != userID {
		return apierr.New(http.StatusForbidden, "forbidden", fmt.Errorf("mistake item %s is not owned by this user", itemID))
	}
	return s.items.FullDeleteByIDs(ctx, nil, []uuid.UUID{itemID})
}
