package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sravan-dsai/newslens/internal/database"
)

// UsageDB defines the database operations needed by UsageChecker.
type UsageDB interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*database.User, error)
	CountUserArticlesSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

// UsageChecker provides methods to check and enforce usage limits.
type UsageChecker struct {
	db UsageDB
}

// NewUsageChecker creates a new usage checker.
func NewUsageChecker(db UsageDB) *UsageChecker {
	return &UsageChecker{db: db}
}

// UsageStats contains current usage information for a user.
type UsageStats struct {
	UserID        uuid.UUID
	Tier          string
	UsedThisMonth int
	Limit         int
	Remaining     int
	ResetDate     time.Time
}

// GetUsageStats returns current usage statistics for a user. Usage is the
// number of articles classified since the start of the calendar month.
func (uc *UsageChecker) GetUsageStats(ctx context.Context, userID uuid.UUID) (*UsageStats, error) {
	user, err := uc.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	count, err := uc.db.CountUserArticlesSince(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}

	limit := UsageLimits[user.Tier]
	remaining := limit - count
	if limit == -1 {
		remaining = -1 // Unlimited
	} else if remaining < 0 {
		remaining = 0
	}

	return &UsageStats{
		UserID:        userID,
		Tier:          user.Tier,
		UsedThisMonth: count,
		Limit:         limit,
		Remaining:     remaining,
		ResetDate:     nextMonth,
	}, nil
}

// CanClassify checks whether a user has quota left for n more articles.
func (uc *UsageChecker) CanClassify(ctx context.Context, userID uuid.UUID, n int) (bool, error) {
	stats, err := uc.GetUsageStats(ctx, userID)
	if err != nil {
		return false, err
	}

	if stats.Limit == -1 {
		return true, nil
	}

	return stats.Remaining >= n, nil
}

// CheckQuota verifies usage limits for n articles and returns an error if the
// user's quota would be exceeded. This should be called before classifying.
func (uc *UsageChecker) CheckQuota(ctx context.Context, userID uuid.UUID, n int) error {
	can, err := uc.CanClassify(ctx, userID, n)
	if err != nil {
		return err
	}
	if !can {
		stats, _ := uc.GetUsageStats(ctx, userID)
		return &LimitExceededError{
			UserID:    userID,
			Tier:      stats.Tier,
			Limit:     stats.Limit,
			Used:      stats.UsedThisMonth,
			Requested: n,
			ResetDate: stats.ResetDate,
		}
	}
	return nil
}

// LimitExceededError is returned when a user exceeds their usage limit.
type LimitExceededError struct {
	UserID    uuid.UUID
	Tier      string
	Limit     int
	Used      int
	Requested int
	ResetDate time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf(
		"usage limit exceeded: %d/%d articles used this month, %d requested (tier: %s, resets: %s)",
		e.Used, e.Limit, e.Requested, e.Tier, e.ResetDate.Format("2006-01-02"),
	)
}

// IsLimitExceeded checks if an error is a LimitExceededError.
func IsLimitExceeded(err error) bool {
	_, ok := err.(*LimitExceededError)
	return ok
}
