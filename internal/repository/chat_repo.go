package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/emberdating/ember-server/internal/db"
	"github.com/emberdating/ember-server/internal/utils/pagination"
)

// ChatRepository provides data access for chat messages.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new repository bound to the given DB connection.
func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// CreateMessage appends a message to a thread and refreshes the thread's
// last-message metadata in the same transaction.
func (r *ChatRepository) CreateMessage(ctx context.Context, msg db.ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&db.ChatThread{}).
			Where("pair_key = ?", msg.PairKey).
			Updates(map[string]interface{}{
				"last_message":    msg.Text,
				"last_message_at": time.Now(),
			}).Error
	})
}

// ListMessages returns a thread's history, newest first, cursor-paginated.
func (r *ChatRepository) ListMessages(
	ctx context.Context,
	pairKey string,
	paginationToken *string,
	limit int,
) ([]db.ChatMessage, *string, error) {
	var messages []db.ChatMessage

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("pair_key = ?", pairKey).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.Ref != "" && cursor.UnixMs > 0 {
		ts := time.UnixMilli(cursor.UnixMs)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.Ref,
		)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			Ref:    last.ID,
			UnixMs: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		messages = messages[:limit]
	}

	return messages, nextToken, nil
}
