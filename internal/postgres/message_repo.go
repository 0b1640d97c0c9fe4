package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save appends a message and returns it with the sender profile joined,
// matching what the room broadcast carries.
func (r *MessageRepository) Save(ctx context.Context, roomID, userID, content string, emotion, avatarExpression, replyTo *string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx, `
		WITH m AS (
			INSERT INTO messages (room_id, user_id, content, emotion, avatar_expression, reply_to)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, room_id, user_id, content, emotion, avatar_expression, reply_to, pinned, created_at
		)
		SELECT m.id, m.room_id, m.user_id, m.content, m.emotion, m.avatar_expression,
		       m.reply_to, m.pinned, m.created_at,
		       u.name, u.email, u.image, u.notifications_muted
		FROM m JOIN users u ON u.id = m.user_id
	`, roomID, userID, content, emotion, avatarExpression, replyTo)

	var m domain.Message
	if err := row.Scan(
		&m.ID, &m.RoomID, &m.UserID, &m.Content, &m.Emotion, &m.AvatarExpression,
		&m.ReplyTo, &m.Pinned, &m.CreatedAt,
		&m.User.Name, &m.User.Email, &m.User.Image, &m.User.NotificationsMuted,
	); err != nil {
		return nil, err
	}
	m.User.ID = m.UserID
	return &m, nil
}

func (r *MessageRepository) RoomOf(ctx context.Context, messageID string) (string, error) {
	var roomID string
	err := r.db.QueryRow(ctx, `SELECT room_id FROM messages WHERE id=$1`, messageID).Scan(&roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrMessageNotFound
		}
		return "", err
	}
	return roomID, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, messageID, userID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_reads (message_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, messageID, userID)
	return err
}
