package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wrongbook-backend/internal/curriculum"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

// maxTreeDepth caps descendant traversal. The curriculum never goes past four
// levels; hitting the cap means a bad migration produced a parent cycle.
const maxTreeDepth = 20

type TagTreeService interface {
	// Seed materializes one subject's curriculum into system tags. The subject
	// scope must be empty; callers delete first.
	Seed(ctx context.Context, tx *gorm.DB, def curriculum.Definition) (int, error)

	// Descendants collects rootID plus every transitive child id, breadth-first.
	Descendants(ctx context.Context, tx *gorm.DB, rootID uuid.UUID) ([]uuid.UUID, error)

	// EnsureSeeded seeds any subject that has a definition but no system tags
	// yet. First-boot bootstrap; an already-seeded subject is left alone.
	EnsureSeeded(ctx context.Context) error
}

type tagTreeService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo taxonomyrepo.TagRepo
	library *curriculum.Library
}

func NewTagTreeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tagRepo taxonomyrepo.TagRepo,
	library *curriculum.Library,
) TagTreeService {
	return &tagTreeService{
		db:      db,
		log:     baseLog.With("service", "TagTreeService"),
		tagRepo: tagRepo,
		library: library,
	}
}

func (s *tagTreeService) Seed(ctx context.Context, tx *gorm.DB, def curriculum.Definition) (int, error) {
	// Build the whole forest in memory with pre-assigned ids, parents before
	// children, then insert in one batched call.
	nodes := make([]*types.Tag, 0, def.NodeCount())

	add := func(name string, subject types.Subject, parentID *uuid.UUID, order int) *types.Tag {
		n := &types.Tag{
			ID:        uuid.New(),
			Name:      name,
			Subject:   subject,
			ParentID:  parentID,
			IsSystem:  true,
			SortOrder: order,
		}
		nodes = append(nodes, n)
		return n
	}

	for _, g := range def.Grades {
		root := add(g.Name, def.Subject, nil, curriculum.GradeRank(g.Name))
		for ci, c := range g.Chapters {
			chapter := add(c.Name, def.Subject, &root.ID, ci+1)
			for ti, tag := range c.Tags {
				add(tag, def.Subject, &chapter.ID, ti+1)
			}
			for si, sec := range c.Sections {
				section := add(sec.Name, def.Subject, &chapter.ID, si+1)
				for ti, tag := range sec.Tags {
					add(tag, def.Subject, &section.ID, ti+1)
				}
			}
		}
	}

	if _, err := s.tagRepo.Create(ctx, tx, nodes); err != nil {
		return 0, fmt.Errorf("seed %s tags: %w", def.Subject, err)
	}
	s.log.Debug("Seeded subject tag tree", "subject", def.Subject, "tags", len(nodes))
	return len(nodes), nil
}

func (s *tagTreeService) Descendants(ctx context.Context, tx *gorm.DB, rootID uuid.UUID) ([]uuid.UUID, error) {
	if rootID == uuid.Nil {
		return nil, fmt.Errorf("descendants: missing root id")
	}
	ids := []uuid.UUID{rootID}
	frontier := []uuid.UUID{rootID}
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("descendants of %s: tree deeper than %d, parent cycle suspected", rootID, maxTreeDepth)
		}
		children, err := s.tagRepo.GetChildren(ctx, tx, frontier)
		if err != nil {
			return nil, fmt.Errorf("descendants of %s: %w", rootID, err)
		}
		frontier = frontier[:0]
		for _, c := range children {
			ids = append(ids, c.ID)
			frontier = append(frontier, c.ID)
		}
	}
	return ids, nil
}

func (s *tagTreeService) EnsureSeeded(ctx context.Context) error {
	for _, subject := range s.library.Subjects() {
		def, _ := s.library.ForSubject(subject)
		n, err := s.tagRepo.CountSystemBySubject(ctx, nil, subject)
		if err != nil {
			return fmt.Errorf("count %s system tags: %w", subject, err)
		}
		if n > 0 {
			continue
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			created, err := s.Seed(ctx, tx, def)
			if err != nil {
				return err
			}
			s.log.Info("Bootstrapped subject taxonomy", "subject", subject, "tags_created", created)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
