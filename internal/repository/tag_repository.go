package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// serializableAttempts bounds retries of transactions that lose a
// serialization conflict.
const serializableAttempts = 3

// TagRepository handles database operations for tags and their aliases.
// Aliases live in a child table keyed (space_id, alias); the primary key
// doubles as the alias lookup index, and cross-table name/alias uniqueness
// is enforced inside serializable transactions.
type TagRepository struct {
	db        *sqlx.DB
	logger    *zap.Logger
	opTimeout time.Duration
}

// NewTagRepository creates a new tag repository. Every statement runs under
// opTimeout in addition to the caller's context.
func NewTagRepository(db *sqlx.DB, opTimeout time.Duration, logger *zap.Logger) *TagRepository {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &TagRepository{
		db:        db,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// retryOnce runs op with the operation timeout applied, retrying a single
// time on transient connection failures. Anything else surfaces as-is.
func (r *TagRepository) retryOnce(ctx context.Context, op func(ctx context.Context) error) error {
	run := func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
		defer cancel()

		if err := op(opCtx); err != nil {
			if isTransient(err) {
				r.logger.Warn("Transient store failure, retrying", zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	err := backoff.Retry(run, backoff.WithContext(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 1), ctx))
	return mapInfra(err)
}

// runSerializable executes fn inside a serializable transaction, retrying
// serialization conflicts and transient failures a bounded number of times.
// Business errors returned by fn abort immediately.
func (r *TagRepository) runSerializable(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	attempt := func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
		defer cancel()

		tx, err := r.db.BeginTxx(opCtx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			if isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := fn(opCtx, tx); err != nil {
			_ = tx.Rollback()
			if isSerializationFailure(err) || isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}

		if err := tx.Commit(); err != nil {
			if isSerializationFailure(err) || isTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), serializableAttempts),
		ctx,
	)
	err := backoff.Retry(attempt, policy)
	return mapInfra(err)
}

// nameTaken reports whether lookup collides with any primary name or alias
// in the space. Must run inside the same transaction as the insert that
// depends on it.
func nameTaken(ctx context.Context, tx *sqlx.Tx, spaceID int64, lookup string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM tags WHERE space_id = $1 AND name = $2)
		    OR EXISTS (SELECT 1 FROM tag_aliases WHERE space_id = $1 AND alias = $2)
	`

	var taken bool
	if err := tx.GetContext(ctx, &taken, query, spaceID, lookup); err != nil {
		return false, err
	}
	return taken, nil
}

// Create inserts a new tag after re-checking the uniqueness and quota
// invariants inside one serializable transaction, so concurrent creations
// resolve to explicit DuplicateName/QuotaExceeded errors.
func (r *TagRepository) Create(ctx context.Context, spaceID, ownerID int64, name, content string) (*model.Tag, error) {
	createdAt := time.Now().UTC()

	err := r.runSerializable(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		taken, err := nameTaken(ctx, tx, spaceID, name)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrDuplicateName
		}

		var spaceCount int
		if err := tx.GetContext(ctx, &spaceCount,
			`SELECT COUNT(*) FROM tags WHERE space_id = $1`, spaceID); err != nil {
			return err
		}
		if spaceCount >= model.MaxTagsPerSpace {
			return model.ErrQuotaExceeded
		}

		var ownerCount int
		if err := tx.GetContext(ctx, &ownerCount,
			`SELECT COUNT(*) FROM tags WHERE space_id = $1 AND owner_id = $2`, spaceID, ownerID); err != nil {
			return err
		}
		if ownerCount >= model.MaxTagsPerOwner {
			return model.ErrQuotaExceeded
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tags (space_id, owner_id, name, created_at, content)
			 VALUES ($1, $2, $3, $4, $5)`,
			spaceID, ownerID, name, createdAt, content)
		if isUniqueViolation(err) {
			return model.ErrDuplicateName
		}
		return err
	})
	if err != nil {
		r.logger.Error("Failed to create tag",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.String("name", name))
		return nil, err
	}

	return &model.Tag{
		SpaceID:   spaceID,
		OwnerID:   ownerID,
		Name:      name,
		Content:   content,
		CreatedAt: createdAt,
		Aliases:   []string{},
	}, nil
}

// Get retrieves a tag by primary name. When resolveAlias is set and no
// primary name matches, the alias table is consulted as a point lookup.
func (r *TagRepository) Get(ctx context.Context, spaceID int64, name string, resolveAlias bool) (*model.Tag, error) {
	byName := `
		SELECT space_id, owner_id, name, content, created_at
		FROM tags
		WHERE space_id = $1 AND name = $2
	`
	byAlias := `
		SELECT t.space_id, t.owner_id, t.name, t.content, t.created_at
		FROM tags t
		JOIN tag_aliases a ON a.space_id = t.space_id AND a.tag_name = t.name
		WHERE a.space_id = $1 AND a.alias = $2
	`

	var tag model.Tag
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		err := r.db.GetContext(ctx, &tag, byName, spaceID, name)
		if errors.Is(err, sql.ErrNoRows) && resolveAlias {
			err = r.db.GetContext(ctx, &tag, byAlias, spaceID, name)
		}
		if err != nil {
			return err
		}
		return r.loadAliases(ctx, &tag)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get tag",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.String("name", name))
		return nil, err
	}

	return &tag, nil
}

func (r *TagRepository) loadAliases(ctx context.Context, tag *model.Tag) error {
	query := `
		SELECT alias
		FROM tag_aliases
		WHERE space_id = $1 AND tag_name = $2
		ORDER BY id
	`

	tag.Aliases = []string{}
	return r.db.SelectContext(ctx, &tag.Aliases, query, tag.SpaceID, tag.Name)
}

// Edit replaces a tag's content. The name must be the primary name; every
// other field is immutable here.
func (r *TagRepository) Edit(ctx context.Context, spaceID int64, name, content string) (*model.Tag, error) {
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE tags SET content = $1 WHERE space_id = $2 AND name = $3`,
			content, spaceID, name)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return model.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			r.logger.Error("Failed to edit tag",
				zap.Error(err), zap.Int64("space_id", spaceID), zap.String("name", name))
		}
		return nil, err
	}

	return r.Get(ctx, spaceID, name, false)
}

// Delete removes a tag by primary name; its aliases cascade.
func (r *TagRepository) Delete(ctx context.Context, spaceID int64, name string) error {
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM tags WHERE space_id = $1 AND name = $2`, spaceID, name)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return model.ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		r.logger.Error("Failed to delete tag",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.String("name", name))
	}
	return err
}

// Purge deletes every tag owned by ownerID in the space and returns how
// many were removed. Zero is a legitimate result, not an error.
func (r *TagRepository) Purge(ctx context.Context, spaceID, ownerID int64) (int64, error) {
	var deleted int64
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`DELETE FROM tags WHERE space_id = $1 AND owner_id = $2`, spaceID, ownerID)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logger.Error("Failed to purge tags",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.Int64("owner_id", ownerID))
		return 0, err
	}
	return deleted, nil
}

// List returns tag summaries for the space, optionally filtered to one
// owner (ownerID 0 means any). Rows are ordered by creation time so the
// 1-based index is stable between mutations.
func (r *TagRepository) List(ctx context.Context, spaceID, ownerID int64) ([]model.TagSummary, error) {
	query := `
		SELECT name, owner_id
		FROM tags
		WHERE space_id = $1 AND ($2::bigint = 0 OR owner_id = $2)
		ORDER BY created_at, name
	`

	var tags []model.TagSummary
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		tags = tags[:0]
		return r.db.SelectContext(ctx, &tags, query, spaceID, ownerID)
	})
	if err != nil {
		r.logger.Error("Failed to list tags",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.Int64("owner_id", ownerID))
		return nil, err
	}

	for i := range tags {
		tags[i].Index = i + 1
	}
	if tags == nil {
		tags = []model.TagSummary{}
	}
	return tags, nil
}

// Count returns the number of tags in the space, optionally for one owner
// (ownerID 0 means any).
func (r *TagRepository) Count(ctx context.Context, spaceID, ownerID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM tags
		WHERE space_id = $1 AND ($2::bigint = 0 OR owner_id = $2)
	`

	var count int
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &count, query, spaceID, ownerID)
	})
	if err != nil {
		r.logger.Error("Failed to count tags",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.Int64("owner_id", ownerID))
		return 0, err
	}
	return count, nil
}

// Search returns every primary name and alias in the space containing
// query as a substring, case-insensitively. An empty result is a valid
// outcome.
func (r *TagRepository) Search(ctx context.Context, spaceID int64, query string) ([]string, error) {
	pattern := "%" + escapeLike(query) + "%"

	byName := `
		SELECT name FROM tags
		WHERE space_id = $1 AND name ILIKE $2
		ORDER BY name
	`
	byAlias := `
		SELECT alias FROM tag_aliases
		WHERE space_id = $1 AND alias ILIKE $2
		ORDER BY alias
	`

	names := []string{}
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		names = names[:0]
		if err := r.db.SelectContext(ctx, &names, byName, spaceID, pattern); err != nil {
			return err
		}

		var aliases []string
		if err := r.db.SelectContext(ctx, &aliases, byAlias, spaceID, pattern); err != nil {
			return err
		}
		names = append(names, aliases...)
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to search tags",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.String("query", query))
		return nil, err
	}
	return names, nil
}

// AddAlias appends an alias to a tag. The existence, alias-cap, and
// uniqueness checks run in one serializable transaction with the insert,
// so concurrent additions of the same alias resolve to AliasInUse.
func (r *TagRepository) AddAlias(ctx context.Context, spaceID int64, name, alias string) (*model.Tag, error) {
	err := r.runSerializable(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM tags WHERE space_id = $1 AND name = $2)`,
			spaceID, name); err != nil {
			return err
		}
		if !exists {
			return model.ErrNotFound
		}

		var aliasCount int
		if err := tx.GetContext(ctx, &aliasCount,
			`SELECT COUNT(*) FROM tag_aliases WHERE space_id = $1 AND tag_name = $2`,
			spaceID, name); err != nil {
			return err
		}
		if aliasCount >= model.MaxAliasesPerTag {
			return model.ErrAliasLimitExceeded
		}

		taken, err := nameTaken(ctx, tx, spaceID, alias)
		if err != nil {
			return err
		}
		if taken {
			return model.ErrAliasInUse
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tag_aliases (space_id, alias, tag_name) VALUES ($1, $2, $3)`,
			spaceID, alias, name)
		if isUniqueViolation(err) {
			return model.ErrAliasInUse
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			r.logger.Error("Failed to add alias",
				zap.Error(err), zap.Int64("space_id", spaceID),
				zap.String("name", name), zap.String("alias", alias))
		}
		return nil, err
	}

	return r.Get(ctx, spaceID, name, false)
}

// UpdateOwner conditionally reassigns a tag's owner. The write only lands
// if the currently stored owner still matches fromOwner, which makes a
// lost claim race observable to the caller instead of silently clobbering.
func (r *TagRepository) UpdateOwner(ctx context.Context, spaceID int64, name string, fromOwner, toOwner int64) (bool, error) {
	var reassigned bool
	err := r.retryOnce(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE tags SET owner_id = $1
			 WHERE space_id = $2 AND name = $3 AND owner_id = $4`,
			toOwner, spaceID, name, fromOwner)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		reassigned = affected > 0
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to update tag owner",
			zap.Error(err), zap.Int64("space_id", spaceID), zap.String("name", name))
		return false, err
	}
	return reassigned, nil
}
