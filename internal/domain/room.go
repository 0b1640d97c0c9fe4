package domain

import "time"

type Room struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	IsGroup   bool      `db:"is_group"`
	CreatedAt time.Time `db:"created_at"`
}
