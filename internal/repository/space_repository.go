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

// SpaceRepository handles database operations for space registration,
// subscription flags, and blacklists. Premium flags are written by the
// billing collaborator; this repository only reads them.
type SpaceRepository struct {
	db        *sqlx.DB
	logger    *zap.Logger
	opTimeout time.Duration
}

// NewSpaceRepository creates a new space repository.
func NewSpaceRepository(db *sqlx.DB, opTimeout time.Duration, logger *zap.Logger) *SpaceRepository {
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &SpaceRepository{
		db:        db,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

func (r *SpaceRepository) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	err := r.db.GetContext(opCtx, dest, query, args...)
	if err != nil && isTransient(err) {
		err = r.db.GetContext(opCtx, dest, query, args...)
	}
	return mapInfra(err)
}

// Exists reports whether the space is registered.
func (r *SpaceRepository) Exists(ctx context.Context, spaceID int64) (bool, error) {
	var exists bool
	err := r.get(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM spaces WHERE space_id = $1)`, spaceID)
	if err != nil {
		r.logger.Error("Failed to check space", zap.Error(err), zap.Int64("space_id", spaceID))
		return false, err
	}
	return exists, nil
}

// Register inserts a space row with default settings. Registering an
// already known space is a no-op.
func (r *SpaceRepository) Register(ctx context.Context, spaceID int64) error {
	opCtx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(opCtx,
		`INSERT INTO spaces (space_id) VALUES ($1) ON CONFLICT (space_id) DO NOTHING`, spaceID)
	if err != nil {
		r.logger.Error("Failed to register space", zap.Error(err), zap.Int64("space_id", spaceID))
		return mapInfra(err)
	}
	return nil
}

// GetSpace returns the settings row for a space, or NotFound.
func (r *SpaceRepository) GetSpace(ctx context.Context, spaceID int64) (*model.Space, error) {
	query := `
		SELECT space_id, premium, mod_log_channel, member_log_channel, case_id, welcome_message
		FROM spaces
		WHERE space_id = $1
	`

	var space model.Space
	err := r.get(ctx, &space, query, spaceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get space", zap.Error(err), zap.Int64("space_id", spaceID))
		return nil, err
	}
	return &space, nil
}

// IsPremiumUser reports the user's subscription flag. An unknown user is
// simply not premium; absence is data here, not an error.
func (r *SpaceRepository) IsPremiumUser(ctx context.Context, userID int64) (bool, error) {
	var premium bool
	err := r.get(ctx, &premium,
		`SELECT COALESCE((SELECT premium FROM users WHERE user_id = $1), FALSE)`, userID)
	if err != nil {
		r.logger.Error("Failed to check premium user", zap.Error(err), zap.Int64("user_id", userID))
		return false, err
	}
	return premium, nil
}

// IsPremiumSpace reports the space's subscription flag.
func (r *SpaceRepository) IsPremiumSpace(ctx context.Context, spaceID int64) (bool, error) {
	var premium bool
	err := r.get(ctx, &premium,
		`SELECT COALESCE((SELECT premium FROM spaces WHERE space_id = $1), FALSE)`, spaceID)
	if err != nil {
		r.logger.Error("Failed to check premium space", zap.Error(err), zap.Int64("space_id", spaceID))
		return false, err
	}
	return premium, nil
}

// IsBlacklistedUser reports whether the user is globally blacklisted.
func (r *SpaceRepository) IsBlacklistedUser(ctx context.Context, userID int64) (bool, error) {
	var blacklisted bool
	err := r.get(ctx, &blacklisted,
		`SELECT EXISTS (SELECT 1 FROM blacklisted_users WHERE user_id = $1)`, userID)
	if err != nil {
		r.logger.Error("Failed to check user blacklist", zap.Error(err), zap.Int64("user_id", userID))
		return false, err
	}
	return blacklisted, nil
}

// IsBlacklistedSpace reports whether the space is globally blacklisted.
func (r *SpaceRepository) IsBlacklistedSpace(ctx context.Context, spaceID int64) (bool, error) {
	var blacklisted bool
	err := r.get(ctx, &blacklisted,
		`SELECT EXISTS (SELECT 1 FROM blacklisted_spaces WHERE space_id = $1)`, spaceID)
	if err != nil {
		r.logger.Error("Failed to check space blacklist", zap.Error(err), zap.Int64("space_id", spaceID))
		return false, err
	}
	return blacklisted, nil
}
