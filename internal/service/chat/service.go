package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/db"
	"github.com/emberdating/ember-server/internal/notify"
	"github.com/emberdating/ember-server/internal/repository"
)

const pageSize = 50

// Service handles chat threads created by the match coordinator: message
// append, history listing and the new-message notification to the other
// participant.
type Service struct {
	appCtx      *app.AppContext
	chatRepo    *repository.ChatRepository
	matchRepo   *repository.MatchRepository
	profileRepo *repository.ProfileRepository
}

// NewChatService creates a new chat service with dependencies from AppContext.
func NewChatService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		chatRepo:    repository.NewChatRepository(appCtx.DB),
		matchRepo:   repository.NewMatchRepository(appCtx.DB),
		profileRepo: repository.NewProfileRepository(appCtx.DB),
	}
}

// SendMessage appends a message to the thread and best-effort notifies the
// other participant. The sender must be one of the thread's participants.
func (s *Service) SendMessage(ctx context.Context, pairKey string, senderID uint64, text string) (db.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return db.ChatMessage{}, apperr.Validation("message text must not be empty")
	}

	thread, err := s.matchRepo.GetThread(ctx, pairKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.ChatMessage{}, apperr.Validation("unknown chat %s", pairKey)
		}
		return db.ChatMessage{}, err
	}

	var recipientID uint64
	switch senderID {
	case thread.UserA:
		recipientID = thread.UserB
	case thread.UserB:
		recipientID = thread.UserA
	default:
		return db.ChatMessage{}, apperr.Validation("user %d is not a participant of chat %s", senderID, pairKey)
	}

	msg := db.ChatMessage{
		ID:       uuid.NewString(),
		PairKey:  pairKey,
		SenderID: senderID,
		Text:     text,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return db.ChatMessage{}, err
	}

	// fire-and-forget; delivery failures never affect the stored message
	if tokens, err := s.profileRepo.DeviceTokens(ctx, recipientID); err != nil {
		s.appCtx.Logger.Warn("device token lookup failed", "user", recipientID, "err", err)
	} else if len(tokens) > 0 {
		if err := s.appCtx.Notifier.Send(ctx, notify.ChatPayload(pairKey, text), tokens); err != nil {
			s.appCtx.Logger.Warn("chat notification failed", "pair", pairKey, "err", err)
		}
	}

	return msg, nil
}

// ListMessages returns a thread's history, newest first, cursor-paginated.
func (s *Service) ListMessages(ctx context.Context, pairKey string, token *string) ([]db.ChatMessage, *string, error) {
	if _, err := s.matchRepo.GetThread(ctx, pairKey); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.Validation("unknown chat %s", pairKey)
		}
		return nil, nil, err
	}
	return s.chatRepo.ListMessages(ctx, pairKey, token, pageSize)
}

// ListThreads returns the chat threads a user participates in.
func (s *Service) ListThreads(ctx context.Context, userID uint64) ([]db.ChatThread, error) {
	return s.matchRepo.ListThreads(ctx, userID)
}
