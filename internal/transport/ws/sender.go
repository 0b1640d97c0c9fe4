package ws

// RoomSender adapts the hub to the fan-out contract the send path expects.
// Event names pass straight through as envelope types.
type RoomSender struct {
	hub *Hub
}

func NewRoomSender(hub *Hub) *RoomSender {
	return &RoomSender{hub: hub}
}

func (s *RoomSender) ToRoom(roomID, event string, payload any) {
	s.hub.Broadcast(roomID, Message{Type: event, Payload: payload})
}

func (s *RoomSender) ToUser(userID, event string, payload any) {
	s.hub.SendToUser(userID, Message{Type: event, Payload: payload})
}
