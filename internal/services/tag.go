package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/pkg/apierr"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

// TagNode is one node of the assembled tree returned to clients.
type TagNode struct {
	*types.Tag
	Nodes []*TagNode `json:"nodes,omitempty"`
}

type TagService interface {
	// GetSubjectTree returns the subject's system forest plus the caller's own
	// custom tags, nested, roots ordered by sort order.
	GetSubjectTree(ctx context.Context, userID uuid.UUID, subject types.Subject) ([]*TagNode, error)

	// CreateCustomTag creates a user-owned tag. Duplicate (name, subject) per
	// owner is rejected.
	CreateCustomTag(ctx context.Context, ownerID uuid.UUID, name string, subject types.Subject, parentID *uuid.UUID) (*types.Tag, error)

	// RenameCustomTag renames the caller's own custom tag. The new name must
	// not collide with another of their custom tags in the same subject.
	RenameCustomTag(ctx context.Context, ownerID, tagID uuid.UUID, newName string) (*types.Tag, error)

	// DeleteCustomTag removes the caller's own custom tag. System tags and
	// other users' tags are untouchable here.
	DeleteCustomTag(ctx context.Context, ownerID, tagID uuid.UUID) error

	// Descendants exposes the descendant-set query for chapter-level filtering.
	Descendants(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error)
}

type tagService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo taxonomyrepo.TagRepo
	tree    TagTreeService
}

func NewTagService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tagRepo taxonomyrepo.TagRepo,
	tree TagTreeService,
) TagService {
	return &tagService{
		db:      db,
		log:     baseLog.With("service", "TagService"),
		tagRepo: tagRepo,
		tree:    tree,
	}
}

func (s *tagService) GetSubjectTree(ctx context.Context, userID uuid.UUID, subject types.Subject) ([]*TagNode, error) {
	if !subject.Valid() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("unknown subject %q", subject))
	}
	flat, err := s.tagRepo.GetBySubject(ctx, nil, subject, userID)
	if err != nil {
		return nil, fmt.Errorf("load %s tags: %w", subject, err)
	}

	nodes := make(map[uuid.UUID]*TagNode, len(flat))
	for _, t := range flat {
		nodes[t.ID] = &TagNode{Tag: t}
	}
	var roots []*TagNode
	for _, t := range flat {
		n := nodes[t.ID]
		if t.ParentID != nil {
			if parent, ok := nodes[*t.ParentID]; ok {
				parent.Nodes = append(parent.Nodes, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots, nil
}

func (s *tagService) CreateCustomTag(ctx context.Context, ownerID uuid.UUID, name string, subject types.Subject, parentID *uuid.UUID) (*types.Tag, error) {
	if ownerID == uuid.Nil || name == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("custom tag needs an owner and a name"))
	}
	if !subject.Valid() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("unknown subject %q", subject))
	}

	var created *types.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.tagRepo.GetCustomByOwner(ctx, tx, ownerID, name, subject)
		if err != nil {
			return fmt.Errorf("check custom tag %q: %w", name, err)
		}
		if existing != nil {
			return apierr.New(http.StatusConflict, "tag_exists", fmt.Errorf("custom tag %q already exists for this user", name))
		}
		if parentID != nil {
			parent, err := s.tagRepo.GetByID(ctx, tx, *parentID)
			if err != nil {
				return fmt.Errorf("check parent tag: %w", err)
			}
			if parent == nil || parent.Subject != subject {
				return apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("parent tag not found in subject %s", subject))
			}
		}
		created = &types.Tag{
			ID:       uuid.New(),
			Name:     name,
			Subject:  subject,
			ParentID: parentID,
			IsSystem: false,
			OwnerID:  &ownerID,
		}
		if _, err := s.tagRepo.Create(ctx, tx, []*types.Tag{created}); err != nil {
			return fmt.Errorf("create custom tag %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *tagService) RenameCustomTag(ctx context.Context, ownerID, tagID uuid.UUID, newName string) (*types.Tag, error) {
	if newName == "" {
		return nil, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("new tag name must not be empty"))
	}
	var renamed *types.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := s.tagRepo.GetByID(ctx, tx, tagID)
		if err != nil {
			return fmt.Errorf("load tag: %w", err)
		}
		if tag == nil {
			return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("tag %s not found", tagID))
		}
		if tag.IsSystem || tag.OwnerID == nil || *tag.OwnerID != ownerID {
			return apierr.New(http.StatusForbidden, "forbidden", fmt.Errorf("tag %s is not editable by this user", tagID))
		}
		existing, err := s.tagRepo.GetCustomByOwner(ctx, tx, ownerID, newName, tag.Subject)
		if err != nil {
			return fmt.Errorf("check custom tag %q: %w", newName, err)
		}
		if existing != nil && existing.ID != tagID {
			return apierr.New(http.StatusConflict, "tag_exists", fmt.Errorf("custom tag %q already exists for this user", newName))
		}
		if err := s.tagRepo.UpdateFields(ctx, tx, tagID, map[string]interface{}{"name": newName}); err != nil {
			return fmt.Errorf("rename tag %s: %w", tagID, err)
		}
		tag.Name = newName
		renamed = tag
		return nil
	})
	if err != nil {
		return nil, err
	}
	return renamed, nil
}

func (s *tagService) DeleteCustomTag(ctx context.Context, ownerID, tagID uuid.UUID) error {
	tag, err := s.tagRepo.GetByID(ctx, nil, tagID)
	if err != nil {
		return fmt.Errorf("load tag: %w", err)
	}
	if tag == nil {
		return apierr.New(http.StatusNotFound, "not_found", fmt.Errorf("tag %s not found", tagID))
	}
	if tag.IsSystem || tag.OwnerID == nil || *tag.OwnerID != ownerID {
		return apierr.New(http.StatusForbidden, "forbidden", fmt.Errorf("tag %s is not deletable by this user", tagID))
	}
	return s.tagRepo.FullDeleteCustom(ctx, nil, ownerID, tagID)
}

func (s *tagService) Descendants(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	return s.tree.Descendants(ctx, nil, rootID)
}
