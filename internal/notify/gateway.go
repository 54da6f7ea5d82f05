// Package notify abstracts push delivery behind a gateway interface.
// Transport mechanics live outside this service; endpoints are opaque
// device tokens owned by whichever push provider is wired in.
package notify

import (
	"context"
	"log/slog"
	"strconv"
)

// Payload is the wire contract for a push notification.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// Gateway delivers a payload to a set of device endpoints.
// Implementations are fire-and-forget: a returned error is logged by the
// caller and never affects the transactional outcome that triggered it.
type Gateway interface {
	Send(ctx context.Context, payload Payload, endpoints []string) error
}

// MatchPayload is sent to both participants when a match is created.
func MatchPayload(matchID string) Payload {
	return Payload{
		Title: "It's a Match! 🎉",
		Body:  "You have a new match! Start chatting now.",
		Data:  map[string]string{"type": "match", "matchId": matchID},
	}
}

// LikePayload is sent to the target of a one-sided like.
func LikePayload(actorID uint64, isSuperLike bool) Payload {
	title := "Someone liked you! 💛"
	if isSuperLike {
		title = "You got a Super Like! 🌟"
	}
	return Payload{
		Title: title,
		Body:  "Open the app to see who liked you.",
		Data:  map[string]string{"type": "like", "actorId": strconv.FormatUint(actorID, 10)},
	}
}

// ChatPayload is sent to the other participant when a message arrives.
func ChatPayload(matchID, text string) Payload {
	return Payload{
		Title: "New Message 💬",
		Body:  text,
		Data:  map[string]string{"type": "chat", "matchId": matchID},
	}
}

// LogGateway is the default gateway: it records deliveries in the log
// instead of calling out to a push provider.
type LogGateway struct {
	log *slog.Logger
}

func NewLogGateway(log *slog.Logger) *LogGateway {
	return &LogGateway{log: log}
}

func (g *LogGateway) Send(_ context.Context, payload Payload, endpoints []string) error {
	g.log.Info("notification dispatched",
		"title", payload.Title,
		"type", payload.Data["type"],
		"endpoints", len(endpoints),
	)
	return nil
}
