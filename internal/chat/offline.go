package chat

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

// OfflineNotifier emails room members who missed a message because they had
// no live connection. Stricter than mentions: only the "all" preference
// qualifies for plain-message email.
type OfflineNotifier struct {
	members  MemberStore
	presence Presence
	notifier Notifier

	// When set, users already emailed by the mention pass for the same
	// message are skipped. Off means both pipelines may email
	// independently, which is what the web client historically did.
	coalesce bool
}

func NewOfflineNotifier(members MemberStore, presence Presence, notifier Notifier, coalesce bool) *OfflineNotifier {
	return &OfflineNotifier{
		members:  members,
		presence: presence,
		notifier: notifier,
		coalesce: coalesce,
	}
}

func (n *OfflineNotifier) Notify(ctx context.Context, msg *domain.Message, alreadyEmailed map[string]struct{}) {
	members, err := n.members.ListMembers(ctx, msg.RoomID)
	if err != nil {
		slog.Warn("offline notify: list members failed", "room", msg.RoomID, "err", err)
		return
	}

	roomName, err := n.members.RoomName(ctx, msg.RoomID)
	if err != nil {
		roomName = msg.RoomID
	}

	for _, u := range members {
		if u.ID == msg.UserID {
			continue
		}
		if n.presence.IsOnline(u.ID) {
			continue // live broadcast already reached them
		}
		if n.coalesce {
			if _, done := alreadyEmailed[u.ID]; done {
				continue
			}
		}

		pref, err := n.members.Preference(ctx, u.ID, msg.RoomID)
		if err != nil {
			slog.Warn("offline notify: preference lookup failed", "user", u.ID, "err", err)
			continue
		}
		if pref != domain.PreferenceAll || u.NotificationsMuted {
			continue
		}

		subject := fmt.Sprintf("New message in %s", roomName)
		text := fmt.Sprintf("%s: %s", msg.User.Name, msg.Content)
		// user-supplied strings must not reach the markup unescaped
		body := fmt.Sprintf("<p><b>%s</b> in <b>%s</b>:</p><blockquote>%s</blockquote>",
			html.EscapeString(msg.User.Name), html.EscapeString(roomName), html.EscapeString(msg.Content))
		if err := n.notifier.SendEmail(ctx, u.Email, subject, text, body); err != nil {
			slog.Warn("offline email failed", "user", u.ID, "err", err)
		}
	}
}
