package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

type sentEvent struct {
	roomID  string
	userID  string
	event   string
	payload any
}

type fakeSender struct {
	mu     sync.Mutex
	toRoom []sentEvent
	toUser []sentEvent
}

func (f *fakeSender) ToRoom(roomID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toRoom = append(f.toRoom, sentEvent{roomID: roomID, event: event, payload: payload})
}

func (f *fakeSender) ToUser(userID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toUser = append(f.toUser, sentEvent{userID: userID, event: event, payload: payload})
}

type fakePresence struct {
	online map[string]bool
}

func (f fakePresence) IsOnline(userID string) bool { return f.online[userID] }

var errStoreDown = errors.New("store down")

type fakeStore struct {
	failSave  bool
	saved     []domain.Message
	reactions []domain.Reaction
	reads     []ReadReceipt
	roomOf    map[string]string
}

func (f *fakeStore) SaveMessage(_ context.Context, roomID, userID, content string, emotion, avatarExpression, replyTo *string) (*domain.Message, error) {
	if f.failSave {
		return nil, errStoreDown
	}
	m := domain.Message{
		ID:               "m1",
		RoomID:           roomID,
		UserID:           userID,
		Content:          content,
		Emotion:          emotion,
		AvatarExpression: avatarExpression,
		ReplyTo:          replyTo,
		CreatedAt:        time.Now(),
		User:             domain.User{ID: userID, Name: "sender"},
	}
	f.saved = append(f.saved, m)
	return &m, nil
}

func (f *fakeStore) SaveReaction(_ context.Context, messageID, userID, emoji string) (*domain.Reaction, error) {
	if f.failSave {
		return nil, errStoreDown
	}
	rx := domain.Reaction{ID: "rx1", MessageID: messageID, UserID: userID, Emoji: emoji}
	f.reactions = append(f.reactions, rx)
	return &rx, nil
}

func (f *fakeStore) RoomOf(_ context.Context, messageID string) (string, error) {
	roomID, ok := f.roomOf[messageID]
	if !ok {
		return "", domain.ErrMessageNotFound
	}
	return roomID, nil
}

func (f *fakeStore) MarkRead(_ context.Context, messageID, userID string) error {
	if f.failSave {
		return errStoreDown
	}
	f.reads = append(f.reads, ReadReceipt{MessageID: messageID, UserID: userID})
	return nil
}

type fakeMembers struct {
	members  []domain.User
	prefs    map[string]domain.Preference // userID -> pref; absent means "all"
	prefErr  error
	roomName string
}

func (f *fakeMembers) ListMembers(context.Context, string) ([]domain.User, error) {
	return f.members, nil
}

func (f *fakeMembers) Preference(_ context.Context, userID, _ string) (domain.Preference, error) {
	if f.prefErr != nil {
		return "", f.prefErr
	}
	if p, ok := f.prefs[userID]; ok {
		return p, nil
	}
	return domain.PreferenceAll, nil
}

func (f *fakeMembers) RoomName(context.Context, string) (string, error) {
	if f.roomName == "" {
		return "", domain.ErrRoomNotFound
	}
	return f.roomName, nil
}

type email struct {
	to      string
	subject string
	html    string
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []email
	failTo map[string]bool
}

func (f *fakeNotifier) SendEmail(_ context.Context, to, subject, _, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTo[to] {
		return errors.New("smtp rejected")
	}
	f.sent = append(f.sent, email{to: to, subject: subject, html: html})
	return nil
}

type fakeEnricher struct {
	label string
	err   error
}

func (f fakeEnricher) DetectEmotion(context.Context, string) (string, error) {
	return f.label, f.err
}

type fakeScreener struct{ hits int }

func (f fakeScreener) Hits(string) int { return f.hits }

func strptr(s string) *string { return &s }
