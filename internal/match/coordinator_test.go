package match_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/cache"
	"github.com/emberdating/ember-server/internal/config"
	"github.com/emberdating/ember-server/internal/db"
	"github.com/emberdating/ember-server/internal/match"
	"github.com/emberdating/ember-server/internal/notify"
	"github.com/emberdating/ember-server/internal/repository"
)

// recordingGateway captures every dispatched payload for assertions.
type recordingGateway struct {
	mu    sync.Mutex
	sends []recordedSend
}

type recordedSend struct {
	payload   notify.Payload
	endpoints []string
}

func (g *recordingGateway) Send(_ context.Context, payload notify.Payload, endpoints []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sends = append(g.sends, recordedSend{payload: payload, endpoints: endpoints})
	return nil
}

func (g *recordingGateway) byType(kind string) []recordedSend {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []recordedSend
	for _, s := range g.sends {
		if s.payload.Data["type"] == kind {
			out = append(out, s)
		}
	}
	return out
}

// setupCoordinator spins up an in-memory SQLite DB, a miniredis, a
// recording notifier and two seeded users with one device each.
func setupCoordinator(t *testing.T) (*match.Coordinator, *gorm.DB, *recordingGateway) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	for id := uint64(1); id <= 2; id++ {
		u := db.User{
			ID:           id,
			Username:     fmt.Sprintf("user%d", id),
			Email:        fmt.Sprintf("u%d@test.com", id),
			PasswordHash: "x",
			Gender:       "female",
			Age:          30,
		}
		require.NoError(t, dbase.Create(&u).Error)
		require.NoError(t, dbase.Create(&db.Device{UserID: id, Token: fmt.Sprintf("token-%d", id)}).Error)
	}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	redisCache := cache.NewRedisCache(cfg)

	gateway := &recordingGateway{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(dbase, redisCache, gateway, log)

	return match.NewCoordinator(appCtx), dbase, gateway
}

func TestSubmitRejectsSelfLike(t *testing.T) {
	coord, _, _ := setupCoordinator(t)
	err := coord.Submit(context.Background(), match.LikeEvent{ActorID: 1, TargetID: 1})
	assert.Error(t, err)
}

func TestSubmitOneSidedLike(t *testing.T) {
	ctx := context.Background()
	coord, dbase, gateway := setupCoordinator(t)

	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 1, TargetID: 2}))

	// no match, but the like and the notice are durable
	var matches []db.Match
	require.NoError(t, dbase.Find(&matches).Error)
	assert.Empty(t, matches)

	var notices []db.ReceivedLike
	require.NoError(t, dbase.Find(&notices).Error)
	require.Len(t, notices, 1)
	assert.Equal(t, uint64(2), notices[0].RecipientID)

	// exactly one "someone liked you", to the target only
	likeSends := gateway.byType("like")
	require.Len(t, likeSends, 1)
	assert.Equal(t, []string{"token-2"}, likeSends[0].endpoints)
	assert.Empty(t, gateway.byType("match"))
}

func TestSubmitSuperLikeTitle(t *testing.T) {
	ctx := context.Background()
	coord, _, gateway := setupCoordinator(t)

	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 1, TargetID: 2, IsSuperLike: true}))

	likeSends := gateway.byType("like")
	require.Len(t, likeSends, 1)
	assert.Contains(t, likeSends[0].payload.Title, "Super Like")
}

func TestSubmitMutualLikeCreatesMatch(t *testing.T) {
	ctx := context.Background()
	coord, dbase, gateway := setupCoordinator(t)

	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 1, TargetID: 2}))
	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 2, TargetID: 1}))

	key := repository.PairKey(1, 2)

	var matches []db.Match
	require.NoError(t, dbase.Find(&matches).Error)
	require.Len(t, matches, 1)
	assert.Equal(t, key, matches[0].PairKey)

	var threads []db.ChatThread
	require.NoError(t, dbase.Find(&threads).Error)
	require.Len(t, threads, 1)

	// one match batch covering both users' endpoints
	matchSends := gateway.byType("match")
	require.Len(t, matchSends, 1)
	assert.ElementsMatch(t, []string{"token-1", "token-2"}, matchSends[0].endpoints)
}

func TestSubmitDuplicateEventsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	coord, dbase, _ := setupCoordinator(t)

	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 1, TargetID: 2}))
	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 2, TargetID: 1}))
	// redeliver both sides
	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 1, TargetID: 2}))
	require.NoError(t, coord.Submit(ctx, match.LikeEvent{ActorID: 2, TargetID: 1}))

	var matches []db.Match
	require.NoError(t, dbase.Find(&matches).Error)
	assert.Len(t, matches, 1)

	for _, id := range []uint64{1, 2} {
		var u db.User
		require.NoError(t, dbase.First(&u, id).Error)
		assert.Equal(t, int64(1), u.MatchCount, "user %d", id)
	}
}

func TestSubmitConcurrentMutualLikes(t *testing.T) {
	ctx := context.Background()
	coord, dbase, _ := setupCoordinator(t)

	// both sides fire concurrently, each duplicated
	events := []match.LikeEvent{
		{ActorID: 1, TargetID: 2},
		{ActorID: 2, TargetID: 1},
		{ActorID: 1, TargetID: 2},
		{ActorID: 2, TargetID: 1},
	}

	var wg sync.WaitGroup
	errs := make([]error, len(events))
	for i, ev := range events {
		wg.Add(1)
		go func(i int, ev match.LikeEvent) {
			defer wg.Done()
			errs[i] = coord.Submit(ctx, ev)
		}(i, ev)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "event %d", i)
	}

	var matches []db.Match
	require.NoError(t, dbase.Find(&matches).Error)
	assert.Len(t, matches, 1)

	var threads []db.ChatThread
	require.NoError(t, dbase.Find(&threads).Error)
	assert.Len(t, threads, 1)

	for _, id := range []uint64{1, 2} {
		var u db.User
		require.NoError(t, dbase.First(&u, id).Error)
		assert.Equal(t, int64(1), u.MatchCount, "user %d", id)
	}
}
