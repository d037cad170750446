package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/wrongbook-backend/internal/curriculum"
	contentrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/content"
	taxonomyrepo "github.com/yungbote/wrongbook-backend/internal/data/repos/taxonomy"
	types "github.com/yungbote/wrongbook-backend/internal/domain"
	"github.com/yungbote/wrongbook-backend/internal/pkg/apierr"
	"github.com/yungbote/wrongbook-backend/internal/pkg/ctxutil"
	errs "github.com/yungbote/wrongbook-backend/internal/pkg/errors"
	"github.com/yungbote/wrongbook-backend/internal/platform/logger"
)

// AssociationRecord is one (item, tag) fact captured before a rebuild. Tag
// identity is deliberately reduced to (name, subject): ids do not survive the
// delete-and-reseed, names do.
type AssociationRecord struct {
	ItemID  uuid.UUID
	TagName string
	Subject types.Subject
}

type RebuildResult struct {
	TagsCreated          int `json:"tags_created"`
	AssociationsRestored int `json:"associations_restored"`
	CustomTagsCreated    int `json:"custom_tags_created"`
}

type RebuildService interface {
	// Rebuild destroys and reseeds the system tag trees for the given subjects
	// (all defined subjects when empty), restoring item associations by
	// (name, subject). One transaction: either every subject succeeds or the
	// store is untouched.
	Rebuild(ctx context.Context, actingUserID uuid.UUID, subjects []types.Subject) (RebuildResult, error)
}

type rebuildService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo taxonomyrepo.TagRepo
	items   contentrepo.MistakeItemRepo
	tree    TagTreeService
	library *curriculum.Library

	timeout    time.Duration
	maxRecords int

	// Two rebuilds racing on delete+reseed of the same subject would corrupt
	// each other; reject instead of queueing.
	mu sync.Mutex
}

func NewRebuildService(
	db *gorm.DB,
	baseLog *logger.Logger,
	tagRepo taxonomyrepo.TagRepo,
	items contentrepo.MistakeItemRepo,
	tree TagTreeService,
	library *curriculum.Library,
	timeout time.Duration,
	maxRecords int,
) RebuildService {
	return &rebuildService{
		db:         db,
		log:        baseLog.With("service", "RebuildService"),
		tagRepo:    tagRepo,
		items:      items,
		tree:       tree,
		library:    library,
		timeout:    timeout,
		maxRecords: maxRecords,
	}
}

func (s *rebuildService) Rebuild(ctx context.Context, actingUserID uuid.UUID, subjects []types.Subject) (RebuildResult, error) {
	var res RebuildResult

	if actingUserID == uuid.Nil {
		return res, apierr.New(http.StatusBadRequest, "invalid_argument", fmt.Errorf("rebuild: missing acting user"))
	}
	if len(subjects) == 0 {
		subjects = s.library.Subjects()
	}
	defs := make([]curriculum.Definition, 0, len(subjects))
	for _, subject := range subjects {
		def, ok := s.library.ForSubject(subject)
		if !ok {
			return res, apierr.New(http.StatusBadRequest, "invalid_argument",
				fmt.Errorf("rebuild: subject %s has no curriculum definition", subject))
		}
		defs = append(defs, def)
	}

	if !s.mu.TryLock() {
		return res, apierr.New(http.StatusConflict, "rebuild_in_progress", errs.ErrRebuildInProgress)
	}
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	s.log.Info("Taxonomy rebuild starting", "subjects", subjects, "acting_user", actingUserID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Snapshot every subject, not just the targets: an item can carry tags
		// across subjects and the restore phase replays the full set.
		records, err := s.snapshot(ctx, tx)
		if err != nil {
			return fmt.Errorf("snapshot phase: %w", err)
		}
		if s.maxRecords > 0 && len(records) > s.maxRecords {
			return fmt.Errorf("snapshot phase: %d associations exceeds rebuild limit %d, narrow the subject scope", len(records), s.maxRecords)
		}

		for _, def := range defs {
			deleted, err := s.tagRepo.FullDeleteSystemBySubject(ctx, tx, def.Subject)
			if err != nil {
				return fmt.Errorf("delete phase (subject %s): %w", def.Subject, err)
			}
			created, err := s.tree.Seed(ctx, tx, def)
			if err != nil {
				return fmt.Errorf("seed phase (subject %s): %w", def.Subject, err)
			}
			s.log.Debug("Subject tree rebuilt", "subject", def.Subject, "deleted", deleted, "created", created)
			res.TagsCreated += created
		}

		restored, customCreated, err := s.restore(ctx, tx, records, actingUserID)
		if err != nil {
			return fmt.Errorf("restore phase: %w", err)
		}
		res.AssociationsRestored = restored
		res.CustomTagsCreated = customCreated
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Error("Taxonomy rebuild timed out", "error", err, "timeout", s.timeout.String())
			return RebuildResult{}, apierr.New(http.StatusGatewayTimeout, "rebuild_timeout", err)
		}
		s.log.Error("Taxonomy rebuild failed, rolled back", "error", err)
		return RebuildResult{}, err
	}

	s.log.Info("Taxonomy rebuild complete",
		"tags_created", res.TagsCreated,
		"associations_restored", res.AssociationsRestored,
		"custom_tags_created", res.CustomTagsCreated,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// snapshot captures every live (item, system-tag) link as an AssociationRecord.
func (s *rebuildService) snapshot(ctx context.Context, tx *gorm.DB) ([]AssociationRecord, error) {
	items, err := s.items.ListWithSystemTags(ctx, tx)
	if err != nil {
		return nil, err
	}
	var records []AssociationRecord
	for _, item := range items {
		for _, tag := range item.Tags {
			if tag == nil || !tag.IsSystem {
				continue
			}
			records = append(records, AssociationRecord{
				ItemID:  item.ID,
				TagName: tag.Name,
				Subject: tag.Subject,
			})
		}
	}
	s.log.Debug("Association snapshot taken", "items", len(items), "records", len(records))
	return records, nil
}

type tagKey struct {
	name    string
	subject types.Subject
}

// restore replays the snapshot against the rebuilt trees. A record whose
// (name, subject) no longer names a system tag is promoted to a custom tag
// owned by the operator rather than dropped: an auditable degradation, not
// silent loss.
func (s *rebuildService) restore(ctx context.Context, tx *gorm.DB, records []AssociationRecord, actingUserID uuid.UUID) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	sysTags, err := s.tagRepo.ListSystem(ctx, tx)
	if err != nil {
		return 0, 0, fmt.Errorf("load rebuilt system tags: %w", err)
	}
	sysByKey := make(map[tagKey]*types.Tag, len(sysTags))
	for _, t := range sysTags {
		sysByKey[tagKey{t.Name, t.Subject}] = t
	}

	itemOrder, byItem := groupByItem(records)

	itemRows, err := s.items.GetByIDs(ctx, tx, itemOrder)
	if err != nil {
		return 0, 0, fmt.Errorf("load snapshot items: %w", err)
	}
	itemsByID := make(map[uuid.UUID]*types.MistakeItem, len(itemRows))
	for _, it := range itemRows {
		itemsByID[it.ID] = it
	}

	customCache := make(map[tagKey]*types.Tag)
	restored := 0
	customCreated := 0

	for _, itemID := range itemOrder {
		item := itemsByID[itemID]
		if item == nil {
			// Item deleted between snapshot and restore is impossible inside
			// one transaction; treat it as the data corruption it would be.
			return 0, 0, fmt.Errorf("snapshot item %s no longer exists", itemID)
		}

		var reconnect []*types.Tag
		seen := make(map[uuid.UUID]bool)
		for _, rec := range byItem[itemID] {
			key := tagKey{rec.TagName, rec.Subject}

			tag := sysByKey[key]
			if tag == nil {
				tag = customCache[key]
			}
			if tag == nil {
				existing, err := s.tagRepo.GetCustomByOwner(ctx, tx, actingUserID, rec.TagName, rec.Subject)
				if err != nil {
					return 0, 0, fmt.Errorf("lookup custom tag %q/%s: %w", rec.TagName, rec.Subject, err)
				}
				if existing != nil {
					tag = existing
				} else {
					parentID, err := placementParent(ctx, tx, s.tagRepo, rec.Subject, item.GradeContext)
					if err != nil {
						return 0, 0, fmt.Errorf("place custom tag %q/%s: %w", rec.TagName, rec.Subject, err)
					}
					created := &types.Tag{
						ID:       uuid.New(),
						Name:     rec.TagName,
						Subject:  rec.Subject,
						ParentID: parentID,
						IsSystem: false,
						OwnerID:  &actingUserID,
					}
					if _, err := s.tagRepo.Create(ctx, tx, []*types.Tag{created}); err != nil {
						return 0, 0, fmt.Errorf("create custom tag %q/%s: %w", rec.TagName, rec.Subject, err)
					}
					s.log.Warn("Curriculum dropped a tag, association preserved as custom tag",
						"tag", rec.TagName, "subject", rec.Subject, "item", itemID)
					tag = created
					customCreated++
				}
				customCache[key] = tag
			}

			if !seen[tag.ID] {
				seen[tag.ID] = true
				reconnect = append(reconnect, tag)
			}
			restored++
		}

		if err := s.items.AppendTags(ctx, tx, itemID, reconnect); err != nil {
			return 0, 0, fmt.Errorf("reconnect item %s: %w", itemID, err)
		}
	}
	return restored, customCreated, nil
}

func groupByItem(records []AssociationRecord) ([]uuid.UUID, map[uuid.UUID][]AssociationRecord) {
	var order []uuid.UUID
	byItem := make(map[uuid.UUID][]AssociationRecord)
	for _, rec := range records {
		if _, ok := byItem[rec.ItemID]; !ok {
			order = append(order, rec.ItemID)
		}
		byItem[rec.ItemID] = append(byItem[rec.ItemID], rec)
	}
	return order, byItem
}
