package service

import (
	"context"
	"strings"

	"github.com/yourorg/tag-service/internal/events"
	"github.com/yourorg/tag-service/internal/model"

	"go.uber.org/zap"
)

// TagStore is the repository surface the service depends on.
type TagStore interface {
	Create(ctx context.Context, spaceID, ownerID int64, name, content string) (*model.Tag, error)
	Get(ctx context.Context, spaceID int64, name string, resolveAlias bool) (*model.Tag, error)
	Edit(ctx context.Context, spaceID int64, name, content string) (*model.Tag, error)
	Delete(ctx context.Context, spaceID int64, name string) error
	Purge(ctx context.Context, spaceID, ownerID int64) (int64, error)
	List(ctx context.Context, spaceID, ownerID int64) ([]model.TagSummary, error)
	Count(ctx context.Context, spaceID, ownerID int64) (int, error)
	Search(ctx context.Context, spaceID int64, query string) ([]string, error)
	AddAlias(ctx context.Context, spaceID int64, name, alias string) (*model.Tag, error)
	UpdateOwner(ctx context.Context, spaceID int64, name string, fromOwner, toOwner int64) (bool, error)
}

// Roster is the space-membership collaborator consulted by the claim
// protocol.
type Roster interface {
	IsMember(ctx context.Context, spaceID, userID int64) (bool, error)
}

// TagService orchestrates tag operations: input validation, the claim
// state machine, and lifecycle events. Quota and uniqueness enforcement
// stays in the store, where it is transactional.
type TagService struct {
	tags      TagStore
	roster    Roster
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewTagService creates a new tag service. publisher may be nil.
func NewTagService(tags TagStore, roster Roster, publisher *events.Publisher, logger *zap.Logger) *TagService {
	return &TagService{
		tags:      tags,
		roster:    roster,
		publisher: publisher,
		logger:    logger,
	}
}

// Create makes a new tag owned by ownerID.
func (s *TagService) Create(ctx context.Context, spaceID, ownerID int64, name, content string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if !model.ValidTagName(name) {
		return nil, model.ErrInvalidName
	}
	if content == "" || len(content) > model.MaxContentLength {
		return nil, model.ErrInvalidName
	}

	tag, err := s.tags.Create(ctx, spaceID, ownerID, name, content)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TagEvent{
		Type:    events.TagCreated,
		SpaceID: spaceID,
		Name:    tag.Name,
		ActorID: ownerID,
	})
	return tag, nil
}

// Get fetches a tag by primary name or, when resolveAlias is set, by any
// of its aliases.
func (s *TagService) Get(ctx context.Context, spaceID int64, name string, resolveAlias bool) (*model.Tag, error) {
	return s.tags.Get(ctx, spaceID, strings.TrimSpace(name), resolveAlias)
}

// Edit replaces a tag's content. Only content is mutable.
func (s *TagService) Edit(ctx context.Context, spaceID int64, name, content string) (*model.Tag, error) {
	if content == "" || len(content) > model.MaxContentLength {
		return nil, model.ErrInvalidName
	}
	return s.tags.Edit(ctx, spaceID, strings.TrimSpace(name), content)
}

// Delete removes a tag and its aliases.
func (s *TagService) Delete(ctx context.Context, spaceID int64, name string, actorID int64) error {
	name = strings.TrimSpace(name)
	if err := s.tags.Delete(ctx, spaceID, name); err != nil {
		return err
	}

	s.publisher.Publish(ctx, events.TagEvent{
		Type:    events.TagDeleted,
		SpaceID: spaceID,
		Name:    name,
		ActorID: actorID,
	})
	return nil
}

// Purge deletes every tag owned by ownerID in the space.
func (s *TagService) Purge(ctx context.Context, spaceID, ownerID, actorID int64) (int64, error) {
	deleted, err := s.tags.Purge(ctx, spaceID, ownerID)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.publisher.Publish(ctx, events.TagEvent{
			Type:    events.TagPurged,
			SpaceID: spaceID,
			ActorID: actorID,
			Count:   deleted,
		})
	}
	return deleted, nil
}

// List returns indexed tag summaries, optionally filtered to one owner
// (ownerID 0 means any).
func (s *TagService) List(ctx context.Context, spaceID, ownerID int64) ([]model.TagSummary, error) {
	return s.tags.List(ctx, spaceID, ownerID)
}

// Count returns the number of tags in the space, optionally for one owner.
func (s *TagService) Count(ctx context.Context, spaceID, ownerID int64) (int, error) {
	return s.tags.Count(ctx, spaceID, ownerID)
}

// Search returns every primary name and alias containing query as a
// substring. No match is an empty sequence, not an error.
func (s *TagService) Search(ctx context.Context, spaceID int64, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}
	return s.tags.Search(ctx, spaceID, query)
}

// AddAlias registers an alternate lookup name for a tag. name must be the
// primary name, never another alias.
func (s *TagService) AddAlias(ctx context.Context, spaceID int64, name, alias string) (*model.Tag, error) {
	alias = strings.TrimSpace(alias)
	if !model.ValidAliasName(alias) {
		return nil, model.ErrInvalidAlias
	}
	return s.tags.AddAlias(ctx, spaceID, strings.TrimSpace(name), alias)
}

// claimAttempts bounds how often a lost conditional owner update is
// re-driven through the state checks.
const claimAttempts = 2

// Claim reassigns a tag to claimantID once its current owner has left the
// space. Eligibility is computed live from the roster on every attempt.
func (s *TagService) Claim(ctx context.Context, spaceID int64, name string, claimantID int64) (*model.Tag, error) {
	name = strings.TrimSpace(name)

	for attempt := 0; attempt < claimAttempts; attempt++ {
		tag, err := s.tags.Get(ctx, spaceID, name, true)
		if err != nil {
			return nil, err
		}
		if tag.OwnerID == claimantID {
			return nil, model.ErrAlreadyOwner
		}

		present, err := s.roster.IsMember(ctx, spaceID, tag.OwnerID)
		if err != nil {
			return nil, err
		}
		if present {
			return nil, model.ErrOwnerStillPresent
		}

		reassigned, err := s.tags.UpdateOwner(ctx, spaceID, tag.Name, tag.OwnerID, claimantID)
		if err != nil {
			return nil, err
		}
		if reassigned {
			s.publisher.Publish(ctx, events.TagEvent{
				Type:    events.TagClaimed,
				SpaceID: spaceID,
				Name:    tag.Name,
				ActorID: claimantID,
			})
			return s.tags.Get(ctx, spaceID, tag.Name, false)
		}

		// Owner changed underneath us; re-run the state checks.
		s.logger.Debug("Claim lost owner race, retrying",
			zap.Int64("space_id", spaceID), zap.String("name", tag.Name))
	}

	return nil, model.ErrOwnerStillPresent
}
