// Package match implements the mutual-like transaction coordinator: it
// ingests like events delivered at-least-once from concurrent sources and
// guarantees exactly one match record and chat thread per unordered pair.
package match

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emberdating/ember-server/internal/app"
	"github.com/emberdating/ember-server/internal/apperr"
	"github.com/emberdating/ember-server/internal/notify"
	"github.com/emberdating/ember-server/internal/repository"
)

// LikeEvent is one swipe-right, as delivered by the ingestion endpoint.
// Duplicates and out-of-order delivery are expected.
type LikeEvent struct {
	ActorID     uint64
	TargetID    uint64
	IsSuperLike bool
}

const (
	defaultMaxAttempts = 5
	defaultBaseBackoff = 20 * time.Millisecond
)

// Coordinator runs the per-like protocol. Coordination happens solely
// through the store's per-pair-key transactional isolation; there is no
// in-process lock, so independent pairs never contend.
type Coordinator struct {
	likes    *repository.LikeRepository
	matches  *repository.MatchRepository
	profiles *repository.ProfileRepository
	appCtx   *app.AppContext
	log      *slog.Logger

	maxAttempts int
	baseBackoff time.Duration
}

// NewCoordinator creates a coordinator with dependencies from AppContext.
func NewCoordinator(appCtx *app.AppContext) *Coordinator {
	return &Coordinator{
		likes:       repository.NewLikeRepository(appCtx.DB),
		matches:     repository.NewMatchRepository(appCtx.DB),
		profiles:    repository.NewProfileRepository(appCtx.DB),
		appCtx:      appCtx,
		log:         appCtx.Logger,
		maxAttempts: defaultMaxAttempts,
		baseBackoff: defaultBaseBackoff,
	}
}

// Submit processes one like event:
//
//  1. Upsert the outgoing like (idempotent).
//  2. Best-effort received-like notice for the target, plus the Redis
//     counter bump behind the "liked you" badge.
//  3. Serializable transaction on the pair key; retried with exponential
//     backoff while the store reports contention.
//  4. Outside the transaction, re-check match existence and fan out
//     notifications. Dispatch failures are logged and swallowed.
//
// Only unretryable store failures reach the caller.
func (c *Coordinator) Submit(ctx context.Context, ev LikeEvent) error {
	if ev.ActorID == ev.TargetID {
		return apperr.Validation("cannot like yourself")
	}

	c.log.Debug("like event received", "actor", ev.ActorID, "target", ev.TargetID, "super", ev.IsSuperLike)

	if err := c.likes.UpsertLike(ctx, ev.ActorID, ev.TargetID, ev.IsSuperLike); err != nil {
		return fmt.Errorf("record like: %w", err)
	}

	// not part of the matching guarantee
	if err := c.likes.UpsertReceivedLike(ctx, ev.TargetID, ev.ActorID, ev.IsSuperLike); err != nil {
		c.log.Warn("received-like notice failed", "target", ev.TargetID, "err", err)
	} else if c.appCtx.RedisCache != nil {
		key := c.appCtx.RedisCache.KeyForReceivedLikeCount(ev.TargetID)
		if _, err := c.appCtx.RedisCache.Incr(ctx, key); err != nil {
			c.log.Warn("like counter bump failed", "target", ev.TargetID, "err", err)
		} else {
			_ = c.appCtx.RedisCache.Expire(ctx, key, time.Hour)
		}
	}

	if err := c.runMatchTransaction(ctx, ev); err != nil {
		return err
	}

	c.dispatchOutcome(ctx, ev)
	return nil
}

func (c *Coordinator) runMatchTransaction(ctx context.Context, ev LikeEvent) error {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.baseBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		created, err := c.matches.CreateMatchIfMutual(ctx, ev.ActorID, ev.TargetID)
		if err == nil {
			if created {
				c.log.Info("match created", "pair", repository.PairKey(ev.ActorID, ev.TargetID))
			}
			return nil
		}
		if !isContention(err) {
			return fmt.Errorf("match transaction: %w", err)
		}

		lastErr = err
		c.log.Debug("match transaction contention, retrying",
			"pair", repository.PairKey(ev.ActorID, ev.TargetID),
			"attempt", attempt+1, "err", err)
	}
	return fmt.Errorf("%w after %d attempts: %v", apperr.ErrContention, c.maxAttempts, lastErr)
}

// dispatchOutcome re-checks the settled state and fans out notifications.
// Runs outside the transaction's critical section to bound lock duration.
func (c *Coordinator) dispatchOutcome(ctx context.Context, ev LikeEvent) {
	pairKey := repository.PairKey(ev.ActorID, ev.TargetID)

	matched, err := c.matches.MatchExists(ctx, pairKey)
	if err != nil {
		c.log.Warn("outcome check failed", "pair", pairKey, "err", err)
		return
	}

	if matched {
		endpoints := c.endpointsFor(ctx, ev.ActorID)
		endpoints = append(endpoints, c.endpointsFor(ctx, ev.TargetID)...)
		c.send(ctx, notify.MatchPayload(pairKey), endpoints)
		return
	}

	// one-sided like: the target hears about it, the actor never does
	c.send(ctx, notify.LikePayload(ev.ActorID, ev.IsSuperLike), c.endpointsFor(ctx, ev.TargetID))
}

func (c *Coordinator) endpointsFor(ctx context.Context, userID uint64) []string {
	tokens, err := c.profiles.DeviceTokens(ctx, userID)
	if err != nil {
		c.log.Warn("device token lookup failed", "user", userID, "err", err)
		return nil
	}
	return tokens
}

func (c *Coordinator) send(ctx context.Context, payload notify.Payload, endpoints []string) {
	if len(endpoints) == 0 {
		return
	}
	if err := c.appCtx.Notifier.Send(ctx, payload, endpoints); err != nil {
		c.log.Warn("notification dispatch failed", "type", payload.Data["type"], "err", err)
	}
}

// isContention classifies store errors that are safe to retry: deadlocks,
// serialization failures and sqlite busy locks.
func isContention(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"deadlock",
		"serialization failure",
		"try restarting transaction",
		"database is locked",
		"database table is locked",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
