package ws

import "encoding/json"

// Event types carried in the envelope. Inbound names mirror what the web
// client emits; outbound names are what it listens for.
const (
	// client -> server
	TypeJoinRoom    = "join-room"
	TypeLeaveRoom   = "leave-room"
	TypeSendMessage = "send-message"
	TypeAddReaction = "add-reaction"
	TypeMessageRead = "message_read"
	TypeTyping      = "typing"
	TypeTranslate   = "translate-message"
	TypeSummarize   = "summarize-messages"

	// server -> client
	TypeNewMessage    = "new-message"
	TypeNewReaction   = "new-reaction"
	TypeOnlineUsers   = "online_users"
	TypeMention       = "mention-notification"
	TypeMessageError  = "message-error"
	TypeReactionError = "reaction-error"
	TypeTranslated    = "message-translated"
	TypeSummary       = "messages-summary"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type SendMessagePayload struct {
	ChatRoomID       string  `json:"chatRoomId"`
	Content          string  `json:"content"`
	Emotion          *string `json:"emotion,omitempty"`
	AvatarExpression *string `json:"avatarExpression,omitempty"`
	ReplyTo          *string `json:"replyTo,omitempty"`
}

type AddReactionPayload struct {
	MessageID string `json:"messageId"`
	Emoji     string `json:"emoji"`
}

type MessageReadPayload struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
}

type TranslatePayload struct {
	MessageID  string `json:"messageId,omitempty"`
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

type TranslatedPayload struct {
	MessageID  string `json:"messageId,omitempty"`
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

type SummarizePayload struct {
	RoomID string   `json:"roomId,omitempty"`
	Texts  []string `json:"texts"`
}

type SummaryPayload struct {
	RoomID  string `json:"roomId,omitempty"`
	Summary string `json:"summary"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// OnlineUsersPayload is the full per-room snapshot. Always the whole set, so
// a client that missed a delta self-corrects on the next change.
type OnlineUsersPayload struct {
	RoomID  string   `json:"roomId"`
	UserIDs []string `json:"userIds"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// decode re-marshals an envelope payload into a typed struct.
func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}
