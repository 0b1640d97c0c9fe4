package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ReactionRepository struct {
	db *pgxpool.Pool
}

func NewReactionRepository(db *pgxpool.Pool) *ReactionRepository {
	return &ReactionRepository{db: db}
}

func (r *ReactionRepository) Save(ctx context.Context, messageID, userID, emoji string) (*domain.Reaction, error) {
	row := r.db.QueryRow(ctx, `
		WITH re AS (
			INSERT INTO reactions (message_id, user_id, emoji)
			VALUES ($1, $2, $3)
			RETURNING id, message_id, user_id, emoji, created_at
		)
		SELECT re.id, re.message_id, re.user_id, re.emoji, re.created_at,
		       u.name, u.email, u.image, u.notifications_muted
		FROM re JOIN users u ON u.id = re.user_id
	`, messageID, userID, emoji)

	var rx domain.Reaction
	if err := row.Scan(
		&rx.ID, &rx.MessageID, &rx.UserID, &rx.Emoji, &rx.CreatedAt,
		&rx.User.Name, &rx.User.Email, &rx.User.Image, &rx.User.NotificationsMuted,
	); err != nil {
		return nil, err
	}
	rx.User.ID = rx.UserID
	return &rx, nil
}
