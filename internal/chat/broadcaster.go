package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/domain"
)

const (
	storeTimeout  = 5 * time.Second
	enrichTimeout = 3 * time.Second
)

// Broadcaster is the send path: validate, persist, fan out, then hand the
// notification pipelines to the dispatcher. Persistence failures surface to
// the sender only; pipeline failures never reach the sender at all.
type Broadcaster struct {
	sender     Sender
	presence   Presence
	store      MessageStore
	dispatcher *Dispatcher
	mentions   *MentionResolver
	offline    *OfflineNotifier

	enricher   Enricher // optional
	screener   Screener // optional
	blockToxic bool
}

type BroadcasterOpts struct {
	Enricher   Enricher
	Screener   Screener
	BlockToxic bool
}

func NewBroadcaster(sender Sender, presence Presence, store MessageStore, dispatcher *Dispatcher, mentions *MentionResolver, offline *OfflineNotifier, opts BroadcasterOpts) *Broadcaster {
	return &Broadcaster{
		sender:     sender,
		presence:   presence,
		store:      store,
		dispatcher: dispatcher,
		mentions:   mentions,
		offline:    offline,
		enricher:   opts.Enricher,
		screener:   opts.Screener,
		blockToxic: opts.BlockToxic,
	}
}

type SendInput struct {
	SenderID         string
	RoomID           string
	Content          string
	Emotion          *string
	AvatarExpression *string
	ReplyTo          *string
}

func (b *Broadcaster) HandleSend(ctx context.Context, in SendInput) (*domain.Message, error) {
	if in.RoomID == "" || strings.TrimSpace(in.Content) == "" {
		return nil, domain.ErrInvalidMessage
	}
	if !b.presence.IsOnline(in.SenderID) {
		return nil, domain.ErrNotConnected
	}
	if b.screener != nil && b.blockToxic && b.screener.Hits(in.Content) > 0 {
		return nil, domain.ErrToxicContent
	}

	emotion := in.Emotion
	if emotion == nil && b.enricher != nil {
		ectx, cancel := context.WithTimeout(ctx, enrichTimeout)
		if label, err := b.enricher.DetectEmotion(ectx, in.Content); err == nil && label != "" {
			emotion = &label
		} else if err != nil {
			slog.Debug("emotion enrichment skipped", "err", err)
		}
		cancel()
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	msg, err := b.store.SaveMessage(sctx, in.RoomID, in.SenderID, in.Content, emotion, in.AvatarExpression, in.ReplyTo)
	if err != nil {
		return nil, err
	}

	// Whole-room fan-out, sender's other tabs included; clients dedupe
	// their own optimistic echo by message id.
	b.sender.ToRoom(msg.RoomID, EventNewMessage, msg)

	// Mentions run before the offline pass so the overlap policy can see
	// who was already emailed.
	b.dispatcher.Enqueue("notify:"+msg.ID, func(ctx context.Context) {
		emailed := b.mentions.Resolve(ctx, msg)
		b.offline.Notify(ctx, msg, emailed)
	})

	return msg, nil
}

func (b *Broadcaster) HandleReaction(ctx context.Context, userID, messageID, emoji string) (*domain.Reaction, error) {
	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	rx, err := b.store.SaveReaction(sctx, messageID, userID, emoji)
	if err != nil {
		return nil, err
	}
	roomID, err := b.store.RoomOf(sctx, messageID)
	if err != nil {
		return nil, err
	}

	b.sender.ToRoom(roomID, EventNewReaction, rx)
	return rx, nil
}

func (b *Broadcaster) HandleReadReceipt(ctx context.Context, roomID, messageID, userID string) error {
	if roomID == "" || messageID == "" || userID == "" {
		return domain.ErrInvalidMessage
	}

	sctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := b.store.MarkRead(sctx, messageID, userID); err != nil {
		return err
	}

	b.sender.ToRoom(roomID, EventMessageRead, ReadReceipt{MessageID: messageID, UserID: userID})
	return nil
}
