package likes

import (
	"context"
	"strconv"
	"time"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/match"
	"github.com/emberdating/ember-server/internal/repository"
)

const pageSize = 20

// Service is the like ingestion and "who liked you" surface. Ingestion
// hands events to the match coordinator; the caller never blocks on match
// resolution beyond durable acceptance of the like itself.
type Service struct {
	appCtx      *app.AppContext
	likeRepo    *repository.LikeRepository
	profileRepo *repository.ProfileRepository
	coordinator *match.Coordinator
}

// NewLikesService creates a new likes service with dependencies from AppContext.
func NewLikesService(appCtx *app.AppContext, coordinator *match.Coordinator) *Service {
	return &Service{
		appCtx:      appCtx,
		likeRepo:    repository.NewLikeRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
		coordinator: coordinator,
	}
}

// SubmitLike validates the pair and forwards the event to the coordinator.
func (s *Service) SubmitLike(ctx context.Context, actorID, targetID uint64, isSuperLike bool) error {
	if actorID == targetID {
		return apperr.Validation("cannot like yourself")
	}
	for _, id := range []uint64{actorID, targetID} {
		exists, err := s.profileRepo.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.Validation("unknown user %d", id)
		}
	}

	return s.coordinator.Submit(ctx, match.LikeEvent{
		ActorID:     actorID,
		TargetID:    targetID,
		IsSuperLike: isSuperLike,
	})
}

// ReceivedLike is one entry on the "liked you" screen.
type ReceivedLike struct {
	ActorID     string `json:"actorId"`
	IsSuperLike bool   `json:"isSuperLike"`
	UnixMs      int64  `json:"unixTimestamp"`
}

// ListReceived returns who liked the given user, newest first,
// cursor-paginated.
func (s *Service) ListReceived(ctx context.Context, userID uint64, token *string) ([]ReceivedLike, *string, error) {
	s.appCtx.Logger.Debug("ListReceived called", "user", userID)

	notices, nextToken, err := s.likeRepo.ListReceivedLikes(ctx, userID, token, pageSize)
	if err != nil {
		return nil, nil, err
	}

	out := make([]ReceivedLike, 0, len(notices))
	for _, n := range notices {
		out = append(out, ReceivedLike{
			ActorID:     strconv.FormatUint(n.ActorID, 10),
			IsSuperLike: n.IsSuperLike,
			UnixMs:      n.UpdatedAt.UnixMilli(),
		})
	}
	return out, nextToken, nil
}

// CountReceived returns how many users liked the given user.
// Cache-first strategy:
//  1. Attempts to read from Redis.
//  2. On a miss, falls back to the DB and repopulates with a 1h TTL.
func (s *Service) CountReceived(ctx context.Context, userID uint64) (int64, error) {
	key := s.appCtx.RedisCache.KeyForReceivedLikeCount(userID)

	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseInt(cached, 10, 64); err == nil {
			// refresh TTL since this user is active
			_ = s.appCtx.RedisCache.Expire(ctx, key, time.Hour)
			return n, nil
		}
	}

	count, err := s.likeRepo.CountReceivedLikes(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.Set(ctx, key, strconv.FormatInt(count, 10), time.Hour)

	return count, nil
}
