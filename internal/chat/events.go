package chat

// Outbound event names. Kept byte-compatible with the web client.
const (
	EventNewMessage  = "new-message"
	EventNewReaction = "new-reaction"
	EventMessageRead = "message_read"
	EventMention     = "mention-notification"
)

type ReadReceipt struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
}

type MentionPayload struct {
	By      string `json:"by"`
	Message string `json:"message"`
}
