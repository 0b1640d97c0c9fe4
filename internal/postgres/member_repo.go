package postgres

import (
	"context"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberRepository struct {
	db *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{db: db}
}

// ListByRoom returns persisted room membership. Live presence is a separate,
// in-memory concern.
func (r *MemberRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.name, u.email, u.image, u.notifications_muted
		FROM room_members rm
		JOIN users u ON u.id = rm.user_id
		WHERE rm.room_id = $1
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.NotificationsMuted); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
