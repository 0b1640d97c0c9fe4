package domain

import "time"

type Message struct {
	ID               string    `db:"id" json:"id"`
	RoomID           string    `db:"room_id" json:"roomId"`
	UserID           string    `db:"user_id" json:"userId"`
	Content          string    `db:"content" json:"content"`
	Emotion          *string   `db:"emotion" json:"emotion,omitempty"`
	AvatarExpression *string   `db:"avatar_expression" json:"avatarExpression,omitempty"`
	ReplyTo          *string   `db:"reply_to" json:"replyTo,omitempty"`
	Pinned           bool      `db:"pinned" json:"pinned"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`

	// Sender profile, joined by the store on create.
	User User `json:"user"`
}
