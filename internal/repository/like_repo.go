package repository

import (
	"context"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberdating/ember-server/internal/db"
	"github.com/emberdating/ember-server/internal/utils/pagination"
)

// LikeRepository provides data access for likes and received-like notices.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// UpsertLike records actor → target. Idempotent: the composite PK guarantees
// one row per direction, so redelivered events overwrite in place.
func (r *LikeRepository) UpsertLike(ctx context.Context, actorID, targetID uint64, isSuperLike bool) error {
	like := db.Like{
		ActorID:     actorID,
		TargetID:    targetID,
		IsSuperLike: isSuperLike,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "target_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_super_like", "updated_at"}),
		}).
		Create(&like).Error
}

// UpsertReceivedLike stores the notice shown on the target's "liked you"
// screen. Best-effort bookkeeping; callers treat failures as non-fatal.
func (r *LikeRepository) UpsertReceivedLike(ctx context.Context, recipientID, actorID uint64, isSuperLike bool) error {
	notice := db.ReceivedLike{
		RecipientID: recipientID,
		ActorID:     actorID,
		IsSuperLike: isSuperLike,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipient_id"}, {Name: "actor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_super_like", "updated_at"}),
		}).
		Create(&notice).Error
}

// HasLiked reports whether actor has liked target.
func (r *LikeRepository) HasLiked(ctx context.Context, actorID, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("actor_id = ? AND target_id = ?", actorID, targetID).
		Count(&count).Error
	return count > 0, err
}

// ListReceivedLikes returns the notices for a recipient, newest first.
//
// Behavior:
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//
// Example:
//
//	repo.ListReceivedLikes(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *LikeRepository) ListReceivedLikes(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]db.ReceivedLike, *string, error) {
	var notices []db.ReceivedLike

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("updated_at DESC, actor_id DESC").
		Limit(limit + 1)

	if cursor.Ref != "" && cursor.UnixMs > 0 {
		lastActor, err := strconv.ParseUint(cursor.Ref, 10, 64)
		if err != nil {
			return nil, nil, err
		}
		ts := time.UnixMilli(cursor.UnixMs)
		query = query.Where(
			"(updated_at < ? OR (updated_at = ? AND actor_id < ?))",
			ts, ts, lastActor,
		)
	}

	if err := query.Find(&notices).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(notices) > limit {
		last := notices[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			Ref:    strconv.FormatUint(last.ActorID, 10),
			UnixMs: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		notices = notices[:limit]
	}

	return notices, nextToken, nil
}

// CountReceivedLikes returns how many users liked the recipient.
// Used in conjunction with the Redis counter (DB is the fallback).
func (r *LikeRepository) CountReceivedLikes(ctx context.Context, recipientID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.ReceivedLike{}).
		Where("recipient_id = ?", recipientID).
		Count(&count).Error
	return count, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
