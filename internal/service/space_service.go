package service

import (
	"context"

	"github.com/yourorg/tag-service/internal/model"

	"go.uber.org/zap"
)

// SpaceStore is the repository surface for space registration and flags.
type SpaceStore interface {
	Exists(ctx context.Context, spaceID int64) (bool, error)
	Register(ctx context.Context, spaceID int64) error
	GetSpace(ctx context.Context, spaceID int64) (*model.Space, error)
	IsPremiumUser(ctx context.Context, userID int64) (bool, error)
	IsPremiumSpace(ctx context.Context, spaceID int64) (bool, error)
	IsBlacklistedUser(ctx context.Context, userID int64) (bool, error)
	IsBlacklistedSpace(ctx context.Context, spaceID int64) (bool, error)
}

// AFKStore is the repository surface for away markers.
type AFKStore interface {
	Set(ctx context.Context, userID, spaceID int64, reason string) (*model.AFK, error)
	Get(ctx context.Context, userID, spaceID int64) (*model.AFK, error)
	Clear(ctx context.Context, userID, spaceID int64) (bool, error)
}

// SpaceService covers space registration, subscription/blacklist reads,
// and away markers.
type SpaceService struct {
	spaces SpaceStore
	afk    AFKStore
	logger *zap.Logger
}

// NewSpaceService creates a new space service.
func NewSpaceService(spaces SpaceStore, afk AFKStore, logger *zap.Logger) *SpaceService {
	return &SpaceService{
		spaces: spaces,
		afk:    afk,
		logger: logger,
	}
}

// EnsureRegistered registers the space if it is not yet known.
func (s *SpaceService) EnsureRegistered(ctx context.Context, spaceID int64) error {
	exists, err := s.spaces.Exists(ctx, spaceID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.spaces.Register(ctx, spaceID)
}

// Settings returns the space settings row.
func (s *SpaceService) Settings(ctx context.Context, spaceID int64) (*model.Space, error) {
	return s.spaces.GetSpace(ctx, spaceID)
}

// Standing reports whether the caller and space are allowed to use the
// service at all (neither blacklisted).
func (s *SpaceService) Standing(ctx context.Context, spaceID, userID int64) (bool, error) {
	spaceBlocked, err := s.spaces.IsBlacklistedSpace(ctx, spaceID)
	if err != nil {
		return false, err
	}
	if spaceBlocked {
		return false, nil
	}

	userBlocked, err := s.spaces.IsBlacklistedUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return !userBlocked, nil
}

// SetAFK marks the user away in the space.
func (s *SpaceService) SetAFK(ctx context.Context, userID, spaceID int64, reason string) (*model.AFK, error) {
	return s.afk.Set(ctx, userID, spaceID, reason)
}

// GetAFK returns the away marker, or nil when the user is not away.
func (s *SpaceService) GetAFK(ctx context.Context, userID, spaceID int64) (*model.AFK, error) {
	return s.afk.Get(ctx, userID, spaceID)
}

// ClearAFK removes the away marker and reports whether one existed.
func (s *SpaceService) ClearAFK(ctx context.Context, userID, spaceID int64) (bool, error) {
	return s.afk.Clear(ctx, userID, spaceID)
}
