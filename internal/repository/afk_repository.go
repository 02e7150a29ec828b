package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yourorg/tag-service/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// AFKRepository handles away markers, one per (user, space).
type AFKRepository struct {
	db        *sqlx.DB
	logger    *zap.Logger
	opTimeout time.Duration
}

// NewAFKRepository creates a new AFK repository.
func NewAFKRepository(db *sqlx.DB, opTimeout time.Duration, logger *zap.Logger) *AFKRepository {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &AFKRepository{
		db:        db,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// Set marks a user as away in a space, replacing any previous marker.
func (r *AFKRepository) Set(ctx context.Context, userID, spaceID int64, reason string) (*model.AFK, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	afk := &model.AFK{
		UserID:  userID,
		SpaceID: spaceID,
		Start:   time.Now().UTC(),
		Reason:  reason,
	}

	_, err := r.db.ExecContext(opCtx,
		`INSERT INTO afk (user_id, space_id, start, reason)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, space_id) DO UPDATE SET start = $3, reason = $4`,
		afk.UserID, afk.SpaceID, afk.Start, afk.Reason)
	if err != nil {
		r.logger.Error("Failed to set AFK marker",
			zap.Error(err), zap.Int64("user_id", userID), zap.Int64("space_id", spaceID))
		return nil, mapInfra(err)
	}
	return afk, nil
}

// Get returns the away marker for (user, space), or nil when there is
// none. A missing marker is a legitimate empty result.
func (r *AFKRepository) Get(ctx context.Context, userID, spaceID int64) (*model.AFK, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	var afk model.AFK
	err := r.db.GetContext(opCtx, &afk,
		`SELECT user_id, space_id, start, reason FROM afk WHERE user_id = $1 AND space_id = $2`,
		userID, spaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get AFK marker",
			zap.Error(err), zap.Int64("user_id", userID), zap.Int64("space_id", spaceID))
		return nil, mapInfra(err)
	}
	return &afk, nil
}

// Clear removes the away marker and reports whether one existed.
func (r *AFKRepository) Clear(ctx context.Context, userID, spaceID int64) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(opCtx,
		`DELETE FROM afk WHERE user_id = $1 AND space_id = $2`, userID, spaceID)
	if err != nil {
		r.logger.Error("Failed to clear AFK marker",
			zap.Error(err), zap.Int64("user_id", userID), zap.Int64("space_id", spaceID))
		return false, mapInfra(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, mapInfra(err)
	}
	return affected > 0, nil
}
