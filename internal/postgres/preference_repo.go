package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PreferenceRepository struct {
	db *pgxpool.Pool
}

func NewPreferenceRepository(db *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the per (user, room) notification preference; absent rows
// default to "all". Written only by the CRUD layer.
func (r *PreferenceRepository) Get(ctx context.Context, userID, roomID string) (domain.Preference, error) {
	var raw string
	err := r.db.QueryRow(ctx, `
		SELECT preference FROM notification_preferences
		WHERE user_id=$1 AND room_id=$2
	`, userID, roomID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PreferenceAll, nil
		}
		return "", err
	}

	p := domain.Preference(raw)
	if !p.Valid() {
		return domain.PreferenceAll, nil
	}
	return p, nil
}
