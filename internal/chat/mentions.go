package chat

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"regexp"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/samber/lo"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// MentionResolver turns @name tokens into targeted notifications: an in-app
// event when the user is connected, an email otherwise. Names resolve
// against persisted room membership by display-name equality; every member
// sharing the name matches.
type MentionResolver struct {
	members  MemberStore
	presence Presence
	sender   Sender
	notifier Notifier
}

func NewMentionResolver(members MemberStore, presence Presence, sender Sender, notifier Notifier) *MentionResolver {
	return &MentionResolver{
		members:  members,
		presence: presence,
		sender:   sender,
		notifier: notifier,
	}
}

// Resolve processes mentions in the message and returns the set of user ids
// that were emailed, so the offline pass can coalesce overlapping emails.
func (r *MentionResolver) Resolve(ctx context.Context, msg *domain.Message) map[string]struct{} {
	names := mentionNames(msg.Content)
	if len(names) == 0 {
		return nil
	}

	members, err := r.members.ListMembers(ctx, msg.RoomID)
	if err != nil {
		slog.Warn("mention resolution: list members failed", "room", msg.RoomID, "err", err)
		return nil
	}
	byName := lo.GroupBy(members, func(u domain.User) string { return u.Name })

	emailed := make(map[string]struct{})
	seen := make(map[string]struct{})
	for _, name := range names {
		for _, u := range byName[name] {
			if u.ID == msg.UserID {
				continue
			}
			if _, dup := seen[u.ID]; dup {
				continue
			}
			seen[u.ID] = struct{}{}

			pref, err := r.members.Preference(ctx, u.ID, msg.RoomID)
			if err != nil {
				slog.Warn("mention resolution: preference lookup failed", "user", u.ID, "err", err)
				continue
			}
			if pref == domain.PreferenceNone || u.NotificationsMuted {
				continue
			}

			if r.presence.IsOnline(u.ID) {
				r.sender.ToUser(u.ID, EventMention, MentionPayload{
					By:      msg.User.Name,
					Message: msg.Content,
				})
				continue
			}

			// offline + preference all|mentions -> email
			if err := r.emailMention(ctx, u, msg); err != nil {
				slog.Warn("mention email failed", "user", u.ID, "err", err)
				continue
			}
			emailed[u.ID] = struct{}{}
		}
	}
	return emailed
}

func (r *MentionResolver) emailMention(ctx context.Context, to domain.User, msg *domain.Message) error {
	roomName, err := r.members.RoomName(ctx, msg.RoomID)
	if err != nil {
		roomName = msg.RoomID
	}
	subject := fmt.Sprintf("%s mentioned you in %s", msg.User.Name, roomName)
	// sender name, room name and content are user-supplied; escape before
	// embedding in markup
	body := fmt.Sprintf("<p><b>%s</b> mentioned you in <b>%s</b>:</p><blockquote>%s</blockquote>",
		html.EscapeString(msg.User.Name), html.EscapeString(roomName), html.EscapeString(msg.Content))

	return r.notifier.SendEmail(ctx, to.Email, subject, msg.Content, body)
}

// mentionNames extracts distinct candidate names in first-occurrence order.
func mentionNames(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return lo.Uniq(names)
}
