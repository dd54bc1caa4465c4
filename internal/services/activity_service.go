package services

import (
	"context"
	"fmt"

	"github.com/anonto42/whatsyourrecipe/backend/internal/logging"
	"github.com/anonto42/whatsyourrecipe/backend/internal/metrics"
	"github.com/anonto42/whatsyourrecipe/backend/internal/models"
	"github.com/anonto42/whatsyourrecipe/backend/internal/repositories"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// ActivityService records and lists activity log entries.
type ActivityService struct {
	activities repositories.ActivityRepository
	follows    repositories.FollowRepository
	profiles   repositories.ProfileRepository
}

func NewActivityService(activities repositories.ActivityRepository, follows repositories.FollowRepository, profiles repositories.ProfileRepository) *ActivityService {
	return &ActivityService{activities: activities, follows: follows, profiles: profiles}
}

// Record appends an entry. Failures are logged and counted, never returned.
func (s *ActivityService) Record(ctx context.Context, activity models.Activity) {
	if err := s.activities.CreateActivity(ctx, &activity); err != nil {
		metrics.RecordActivityWriteFailure()
		logging.Ctx(ctx).Warn().Err(err).
			Str("activity_type", activity.ActivityType).
			Str("user_id", activity.UserID).
			Msg("failed to record activity")
	}
}

// Feed returns the newest activities by userID and everyone userID follows.
func (s *ActivityService) Feed(ctx context.Context, userID string, limit int) ([]models.ActivityView, error) {
	limit = clamp(limit, DefaultActivityLimit, MaxActivityLimit)

	followees, err := s.follows.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load followees: %w", err)
	}
	actors := append([]string{userID}, followees...)

	entries, err := s.activities.ListByActors(ctx, actors, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	views := make([]models.ActivityView, 0, len(entries))
	if len(entries) == 0 {
		return views, nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, e := range entries {
		if _, ok := seen[e.UserID]; !ok {
			seen[e.UserID] = struct{}{}
			ids = append(ids, e.UserID)
		}
	}
	profiles, err := s.profiles.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load actors: %w", err)
	}
	byID := make(map[string]models.ProfileCompact, len(profiles))
	for i := range profiles {
		byID[profiles[i].ID] = profiles[i].ToCompact()
	}

	for _, e := range entries {
		actor, ok := byID[e.UserID]
		if !ok {
			actor = models.ProfileCompact{ID: e.UserID}
		}
		views = append(views, models.ActivityView{Activity: e, Actor: actor})
	}
	return views, nil
}

// clamp returns def for non-positive v and max for v above max.
func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}
