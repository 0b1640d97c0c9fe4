package service

import (
	"context"
	"strings"

	"github.com/cwrk-planet/chat-service/internal/domain"
	"github.com/cwrk-planet/chat-service/internal/postgres"
)

const maxMessageLen = 4000

type ChatService struct {
	messages  *postgres.MessageRepository
	reactions *postgres.ReactionRepository
}

func NewChatService(messages *postgres.MessageRepository, reactions *postgres.ReactionRepository) *ChatService {
	return &ChatService{messages: messages, reactions: reactions}
}

func (s *ChatService) SaveMessage(ctx context.Context, roomID, userID, content string, emotion, avatarExpression, replyTo *string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrInvalidMessage
	}
	if len(content) > maxMessageLen {
		return nil, domain.ErrMessageTooLong
	}
	return s.messages.Save(ctx, roomID, userID, content, emotion, avatarExpression, replyTo)
}

func (s *ChatService) SaveReaction(ctx context.Context, messageID, userID, emoji string) (*domain.Reaction, error) {
	if strings.TrimSpace(emoji) == "" || messageID == "" {
		return nil, domain.ErrInvalidMessage
	}
	return s.reactions.Save(ctx, messageID, userID, emoji)
}

func (s *ChatService) RoomOf(ctx context.Context, messageID string) (string, error) {
	return s.messages.RoomOf(ctx, messageID)
}

func (s *ChatService) MarkRead(ctx context.Context, messageID, userID string) error {
	return s.messages.MarkRead(ctx, messageID, userID)
}
