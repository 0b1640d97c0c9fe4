package domain

import "errors"

var (
	ErrInvalidMessage  = errors.New("invalid message")
	ErrNotConnected    = errors.New("sender has no live connection")
	ErrMessageNotFound = errors.New("message not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageTooLong  = errors.New("message too long")
	ErrToxicContent    = errors.New("message blocked by moderation")
	ErrInvalidToken    = errors.New("invalid access token")
)
