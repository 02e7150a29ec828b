package model

import (
	"errors"
	"fmt"
	"time"
)

// Business outcomes. These propagate unchanged to the command layer,
// which owns all user-facing wording.
var (
	// ErrNotFound - name/alias does not resolve to any tag in the space.
	ErrNotFound = errors.New("tag not found")

	// ErrDuplicateName - name collides with an existing primary name or alias.
	ErrDuplicateName = errors.New("tag or alias with this name already exists")

	// ErrQuotaExceeded - space-wide or per-owner tag cap reached.
	ErrQuotaExceeded = errors.New("tag quota exceeded")

	// ErrAliasLimitExceeded - tag already has the maximum number of aliases.
	ErrAliasLimitExceeded = errors.New("alias limit exceeded")

	// ErrAliasInUse - proposed alias collides with an existing name or alias.
	ErrAliasInUse = errors.New("alias already in use")

	// ErrInvalidAlias - alias violates length or character constraints.
	ErrInvalidAlias = errors.New("invalid alias")

	// ErrInvalidName - name or content violates length constraints.
	ErrInvalidName = errors.New("invalid tag name or content")

	// ErrAlreadyOwner - claimant already owns the tag.
	ErrAlreadyOwner = errors.New("caller already owns this tag")

	// ErrOwnerStillPresent - tag owner is still a member of the space.
	ErrOwnerStillPresent = errors.New("tag owner is still present in the space")

	// ErrTimeout - the store did not answer within the operation deadline.
	ErrTimeout = errors.New("store operation timed out")

	// ErrUnavailable - the store is unreachable.
	ErrUnavailable = errors.New("store unavailable")
)

// RateLimitError reports a cooldown window that has not yet elapsed.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// IsRateLimited unwraps err into a *RateLimitError if it is one.
func IsRateLimited(err error) (*RateLimitError, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
