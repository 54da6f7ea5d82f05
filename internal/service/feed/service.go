package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/cache"
	"github.com/emberdating/ember-server/internal/discovery"
	"github.com/emberdating/ember-server/internal/repository"
)

// Service builds ranked-pool snapshots and answers card queries against
// them. Snapshots live in Redis keyed by (viewer, generation): the card
// endpoint only ever reads the explicit generation the client names, so a
// rebuild can never remap indices under a paging client.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	poolTTL  time.Duration
}

// NewFeedService creates a new feed service with dependencies from AppContext.
func NewFeedService(appCtx *app.AppContext, poolTTL time.Duration) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
		poolTTL:  poolTTL,
	}
}

// PoolRequest carries the viewer's filters and exclusion sets. The client
// resubmits it only when filters or exclusions change, never on pagination.
type PoolRequest struct {
	ViewerID   uint64                   `json:"viewerId"`
	Criteria   discovery.FilterCriteria `json:"criteria"`
	BlockedIDs []uint64                 `json:"blockedIds"`
	SwipedIDs  []uint64                 `json:"swipedIds"`
}

// PoolResponse identifies the snapshot the client should page against.
type PoolResponse struct {
	Generation uint64 `json:"generation"`
	Size       int    `json:"size"`
}

// BuildPool filters, scores and orders the candidate set, stores the
// resulting snapshot and returns its generation. An empty pool is a valid
// result; card queries against it yield EMPTY cards.
func (s *Service) BuildPool(ctx context.Context, req PoolRequest) (PoolResponse, error) {
	s.appCtx.Logger.Debug("BuildPool called", "viewer", req.ViewerID)

	if err := req.Criteria.Validate(); err != nil {
		return PoolResponse{}, err
	}

	exists, err := s.profiles.UserExists(ctx, req.ViewerID)
	if err != nil {
		return PoolResponse{}, err
	}
	if !exists {
		return PoolResponse{}, apperr.Validation("unknown viewer %d", req.ViewerID)
	}

	candidates, err := s.profiles.ListCandidates(ctx, req.ViewerID)
	if err != nil {
		return PoolResponse{}, err
	}

	gen, err := s.appCtx.RedisCache.Incr(ctx, s.appCtx.RedisCache.KeyForPoolGeneration(req.ViewerID))
	if err != nil {
		return PoolResponse{}, fmt.Errorf("allocate pool generation: %w", err)
	}

	excl := discovery.NewExclusionSets(req.BlockedIDs, req.SwipedIDs)
	pool, err := discovery.BuildRankedPool(candidates, req.Criteria, excl, uint64(gen), time.Now())
	if err != nil {
		return PoolResponse{}, err
	}

	raw, err := json.Marshal(pool)
	if err != nil {
		return PoolResponse{}, fmt.Errorf("encode pool snapshot: %w", err)
	}
	key := s.appCtx.RedisCache.KeyForPoolSnapshot(req.ViewerID, pool.Generation)
	if err := s.appCtx.RedisCache.Set(ctx, key, raw, s.poolTTL); err != nil {
		return PoolResponse{}, fmt.Errorf("store pool snapshot: %w", err)
	}

	s.appCtx.Logger.Info("ranked pool rebuilt",
		"viewer", req.ViewerID, "generation", pool.Generation, "size", len(pool.Profiles))

	return PoolResponse{Generation: pool.Generation, Size: len(pool.Profiles)}, nil
}

// Card answers a card query against one explicit snapshot. Any index ≥ 0,
// any order, including rewinds to a smaller index.
func (s *Service) Card(ctx context.Context, viewerID, generation uint64, index int) (discovery.CardItem, error) {
	if index < 0 {
		return discovery.CardItem{}, apperr.Validation("index must be >= 0")
	}

	key := s.appCtx.RedisCache.KeyForPoolSnapshot(viewerID, generation)
	raw, err := s.appCtx.RedisCache.GetExisting(ctx, key)
	if cache.IsMiss(err) {
		return discovery.CardItem{}, apperr.ErrSnapshotGone
	}
	if err != nil {
		return discovery.CardItem{}, err
	}

	var pool discovery.RankedPool
	if err := json.Unmarshal([]byte(raw), &pool); err != nil {
		return discovery.CardItem{}, fmt.Errorf("decode pool snapshot: %w", err)
	}

	sponsored, err := s.profiles.ListSponsored(ctx)
	if err != nil {
		return discovery.CardItem{}, err
	}

	return discovery.CardAt(index, pool, sponsored), nil
}
