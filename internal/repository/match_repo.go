package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/emberdating/ember-server/internal/db"
)

// MatchRepository owns the match/chat records and the transactional
// mutual-like check. All writes for one pair go through the pair's
// canonical key; unrelated pairs never contend.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// PairKey returns the canonical key for an unordered user pair: both ids
// sorted ascending, joined with "_". Both like directions map to it.
func PairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// CreateMatchIfMutual runs the match decision for actor → target inside one
// serializable transaction scoped to the pair key:
//
//  1. Match already exists → no writes (idempotency guard against replays).
//  2. Reverse like absent → no writes (normal one-sided like).
//  3. Otherwise create the Match, the ChatThread and increment both users'
//     match counters. All four writes commit together or not at all.
//
// Returns whether this call created the match. Serialization conflicts
// bubble up as driver errors; callers retry with backoff.
func (r *MatchRepository) CreateMatchIfMutual(ctx context.Context, actorID, targetID uint64) (bool, error) {
	key := PairKey(actorID, targetID)
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing db.Match
		err := tx.Where("pair_key = ?", key).First(&existing).Error
		if err == nil {
			return nil // already matched, terminal state
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var reverse db.Like
		err = tx.Where("actor_id = ? AND target_id = ?", targetID, actorID).First(&reverse).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // one-sided like, nothing to create
		}
		if err != nil {
			return err
		}

		userA, userB := actorID, targetID
		if userA > userB {
			userA, userB = userB, userA
		}

		if err := tx.Create(&db.Match{PairKey: key, UserA: userA, UserB: userB}).Error; err != nil {
			return err
		}
		if err := tx.Create(&db.ChatThread{PairKey: key, UserA: userA, UserB: userB}).Error; err != nil {
			return err
		}
		if err := tx.Model(&db.User{}).
			Where("id IN ?", []uint64{userA, userB}).
			UpdateColumn("match_count", gorm.Expr("match_count + 1")).Error; err != nil {
			return err
		}

		created = true
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})

	if err != nil {
		return false, err
	}
	return created, nil
}

// MatchExists reports whether a match record exists for the pair key.
func (r *MatchRepository) MatchExists(ctx context.Context, pairKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("pair_key = ?", pairKey).
		Count(&count).Error
	return count > 0, err
}

// GetMatch fetches one match record by pair key.
func (r *MatchRepository) GetMatch(ctx context.Context, pairKey string) (db.Match, error) {
	var m db.Match
	err := r.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&m).Error
	return m, err
}

// GetThread fetches the chat thread for a pair key.
func (r *MatchRepository) GetThread(ctx context.Context, pairKey string) (db.ChatThread, error) {
	var t db.ChatThread
	err := r.db.WithContext(ctx).Where("pair_key = ?", pairKey).First(&t).Error
	return t, err
}

// ListThreads returns all chat threads a user participates in, most
// recently active first.
func (r *MatchRepository) ListThreads(ctx context.Context, userID uint64) ([]db.ChatThread, error) {
	var threads []db.ChatThread
	err := r.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("last_message_at DESC, pair_key").
		Find(&threads).Error
	return threads, err
}
