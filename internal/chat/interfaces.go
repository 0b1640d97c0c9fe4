package chat

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// Sender delivers events over the realtime transport. Implemented by the ws
// server on top of its hub.
type Sender interface {
	ToRoom(roomID, event string, payload any)
	ToUser(userID, event string, payload any)
}

// Presence answers "does this user have a live connection right now".
type Presence interface {
	IsOnline(userID string) bool
}

// MessageStore is the append side of the persistence collaborator.
type MessageStore interface {
	SaveMessage(ctx context.Context, roomID, userID, content string, emotion, avatarExpression, replyTo *string) (*domain.Message, error)
	SaveReaction(ctx context.Context, messageID, userID, emoji string) (*domain.Reaction, error)
	RoomOf(ctx context.Context, messageID string) (string, error)
	MarkRead(ctx context.Context, messageID, userID string) error
}

// MemberStore reads persisted room membership and notification settings.
type MemberStore interface {
	ListMembers(ctx context.Context, roomID string) ([]domain.User, error)
	Preference(ctx context.Context, userID, roomID string) (domain.Preference, error)
	RoomName(ctx context.Context, roomID string) (string, error)
}

// Notifier is the email collaborator. Best-effort; callers log failures and
// never retry.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, text, html string) error
}

// Enricher annotates message text via the inference API.
type Enricher interface {
	DetectEmotion(ctx context.Context, text string) (string, error)
}

// Screener is the local toxicity check run before persistence.
type Screener interface {
	Hits(text string) int
}
