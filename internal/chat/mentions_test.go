package chat

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

func member(id, name, mail string) domain.User {
	return domain.User{ID: id, Name: name, Email: mail}
}

func testMessage(senderID, senderName, content string) *domain.Message {
	return &domain.Message{
		ID:        "m1",
		RoomID:    "r1",
		UserID:    senderID,
		Content:   content,
		CreatedAt: time.Now(),
		User:      domain.User{ID: senderID, Name: senderName},
	}
}

func TestMentionNames(t *testing.T) {
	cases := []struct {
		content string
		want    []string
	}{
		{"hello world", nil},
		{"hey @alice", []string{"alice"}},
		{"@alice @bob @alice", []string{"alice", "bob"}},
		{"mail me at foo@bar.com", []string{"bar"}},
		{"@", nil},
	}
	for _, c := range cases {
		got := mentionNames(c.content)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%q: got %v, want %v", c.content, got, c.want)
		}
	}
}

func TestResolve_NoMentionsTouchesNothing(t *testing.T) {
	sender := &fakeSender{}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(&fakeMembers{}, fakePresence{}, sender, notifier)

	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "no tags here"))
	if len(emailed) != 0 || len(sender.toUser) != 0 || len(notifier.sent) != 0 {
		t.Fatalf("plain message must not trigger mention handling")
	}
}

func TestResolve_OnlineGetsInAppOfflineGetsEmail(t *testing.T) {
	members := &fakeMembers{
		members: []domain.User{
			member("u1", "alice", "alice@example.com"),
			member("u2", "bob", "bob@example.com"),
		},
		roomName: "general",
	}
	sender := &fakeSender{}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{online: map[string]bool{"u1": true}}, sender, notifier)

	// @carol matches nobody in the room and is silently ignored
	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "hey @alice and @bob and @carol"))

	if len(sender.toUser) != 1 || sender.toUser[0].userID != "u1" || sender.toUser[0].event != EventMention {
		t.Fatalf("expected in-app mention for alice, got %+v", sender.toUser)
	}
	p := sender.toUser[0].payload.(MentionPayload)
	if p.By != "sam" {
		t.Fatalf("unexpected payload: %+v", p)
	}

	if len(notifier.sent) != 1 || notifier.sent[0].to != "bob@example.com" {
		t.Fatalf("expected email for offline bob, got %+v", notifier.sent)
	}
	if notifier.sent[0].subject != "sam mentioned you in general" {
		t.Fatalf("unexpected subject: %q", notifier.sent[0].subject)
	}

	if _, ok := emailed["u2"]; !ok || len(emailed) != 1 {
		t.Fatalf("emailed set should contain exactly bob, got %v", emailed)
	}
}

func TestResolve_SelfMentionIgnored(t *testing.T) {
	members := &fakeMembers{
		members:  []domain.User{member("u0", "sam", "sam@example.com")},
		roomName: "general",
	}
	sender := &fakeSender{}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{}, sender, notifier)

	r.Resolve(context.Background(), testMessage("u0", "sam", "talking about @sam"))
	if len(sender.toUser) != 0 || len(notifier.sent) != 0 {
		t.Fatalf("self mention must not notify")
	}
}

func TestResolve_PreferenceNoneAndMutedSuppressed(t *testing.T) {
	members := &fakeMembers{
		members: []domain.User{
			member("u1", "alice", "alice@example.com"),
			{ID: "u2", Name: "bob", Email: "bob@example.com", NotificationsMuted: true},
		},
		prefs:    map[string]domain.Preference{"u1": domain.PreferenceNone},
		roomName: "general",
	}
	sender := &fakeSender{}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{online: map[string]bool{"u1": true}}, sender, notifier)

	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "@alice @bob"))
	if len(sender.toUser) != 0 || len(notifier.sent) != 0 || len(emailed) != 0 {
		t.Fatalf("none preference and muted users must be suppressed")
	}
}

func TestResolve_MentionsPreferenceStillEmails(t *testing.T) {
	members := &fakeMembers{
		members:  []domain.User{member("u1", "alice", "alice@example.com")},
		prefs:    map[string]domain.Preference{"u1": domain.PreferenceMentions},
		roomName: "general",
	}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{}, &fakeSender{}, notifier)

	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "ping @alice"))
	if len(notifier.sent) != 1 {
		t.Fatalf("mentions preference must still email on mention")
	}
	if _, ok := emailed["u1"]; !ok {
		t.Fatalf("emailed set missing alice")
	}
}

func TestResolve_DuplicateDisplayNamesAllNotified(t *testing.T) {
	members := &fakeMembers{
		members: []domain.User{
			member("u1", "alex", "alex1@example.com"),
			member("u2", "alex", "alex2@example.com"),
		},
		roomName: "general",
	}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{}, &fakeSender{}, notifier)

	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "cc @alex"))
	if len(notifier.sent) != 2 {
		t.Fatalf("both members named alex should be emailed, got %d", len(notifier.sent))
	}
	if len(emailed) != 2 {
		t.Fatalf("emailed set should have both, got %v", emailed)
	}
}

func TestResolve_RepeatedMentionNotifiesOnce(t *testing.T) {
	members := &fakeMembers{
		members:  []domain.User{member("u1", "alice", "alice@example.com")},
		roomName: "general",
	}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{}, &fakeSender{}, notifier)

	r.Resolve(context.Background(), testMessage("u0", "sam", "@alice @alice @alice"))
	if len(notifier.sent) != 1 {
		t.Fatalf("repeated mention must email once, got %d", len(notifier.sent))
	}
}

func TestResolve_PreferenceLookupErrorSkipsUser(t *testing.T) {
	members := &fakeMembers{
		members:  []domain.User{member("u1", "alice", "alice@example.com")},
		prefErr:  errors.New("pg down"),
		roomName: "general",
	}
	notifier := &fakeNotifier{}
	sender := &fakeSender{}
	r := NewMentionResolver(members, fakePresence{online: map[string]bool{"u1": true}}, sender, notifier)

	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "@alice"))
	if len(sender.toUser) != 0 || len(notifier.sent) != 0 || len(emailed) != 0 {
		t.Fatalf("lookup failure must skip the user, not notify")
	}
}

func TestResolve_EmailBodyEscapesUserContent(t *testing.T) {
	members := &fakeMembers{
		members:  []domain.User{member("u1", "alice", "alice@example.com")},
		roomName: "<general>",
	}
	notifier := &fakeNotifier{}
	r := NewMentionResolver(members, fakePresence{}, &fakeSender{}, notifier)

	msg := testMessage("u0", "<b>sam</b>", `@alice <img src=x onerror=alert(1)>`)
	r.Resolve(context.Background(), msg)

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(notifier.sent))
	}
	body := notifier.sent[0].html
	if strings.Contains(body, "<img") || strings.Contains(body, "<b>sam</b>") || strings.Contains(body, "<general>") {
		t.Fatalf("raw user markup leaked into email body: %q", body)
	}
	if !strings.Contains(body, "&lt;img src=x onerror=alert(1)&gt;") {
		t.Fatalf("content missing or not escaped: %q", body)
	}
}

func TestResolve_EmailFailureNotInEmailedSet(t *testing.T) {
	members := &fakeMembers{
		members:  []domain.User{member("u1", "alice", "alice@example.com")},
		roomName: "general",
	}
	notifier := &fakeNotifier{failTo: map[string]bool{"alice@example.com": true}}
	r := NewMentionResolver(members, fakePresence{}, &fakeSender{}, notifier)

	emailed := r.Resolve(context.Background(), testMessage("u0", "sam", "@alice"))
	if len(emailed) != 0 {
		t.Fatalf("failed email must not count as delivered: %v", emailed)
	}
}
