package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/chat-service/internal/auth"
	"github.com/cwrk-planet/chat-service/internal/chat"
	"github.com/cwrk-planet/chat-service/internal/presence"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type Translator interface {
	TranslateTo(ctx context.Context, text, targetLang string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, texts []string) (string, error)
}

// Server owns the socket lifecycle: authenticate, register, pump events,
// and tear presence down when the socket dies. All room semantics live in
// the presence and chat packages; this layer only translates envelopes.
type Server struct {
	upgrader    websocket.Upgrader
	hub         *Hub
	registry    *presence.Registry
	index       *presence.Index
	broadcaster *chat.Broadcaster
	verifier    TokenVerifier
	translator  Translator // optional
	summarizer  Summarizer // optional

	pingEvery      time.Duration
	reconcileEvery time.Duration
}

func NewServer(hub *Hub, registry *presence.Registry, index *presence.Index, broadcaster *chat.Broadcaster, verifier TokenVerifier, pingEvery, reconcileEvery time.Duration) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	if reconcileEvery <= 0 {
		reconcileEvery = time.Minute
	}
	return &Server{
		hub:         hub,
		registry:    registry,
		index:       index,
		broadcaster: broadcaster,
		verifier:    verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery:      pingEvery,
		reconcileEvery: reconcileEvery,
	}
}

// WithTranslator enables the on-demand translate event.
func (s *Server) WithTranslator(t Translator) *Server {
	s.translator = t
	return s
}

// WithSummarizer enables the on-demand summary event.
func (s *Server) WithSummarizer(sum Summarizer) *Server {
	s.summarizer = sum
	return s
}

// WS endpoint: GET /ws?access_token=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("access_token"))
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimSpace(h[7:])
		}
	}
	if token == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	id, err := s.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid access_token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, uuid.NewString(), id.UserID, id.Name)
	s.connect(c)
	slog.Info("ws connected", "conn", c.ID(), "user", c.UserID())

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	s.disconnect(c)
	slog.Info("ws disconnected", "conn", c.ID(), "user", c.UserID())

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.ID(), "err", err)
	}
}

func (s *Server) connect(c Conn) {
	s.registry.Register(c.ID(), c.UserID())
	s.hub.Add(c)
}

// disconnect cascades a dead connection through presence: the user leaves
// exactly the rooms no other tab of theirs still has joined.
func (s *Server) disconnect(c Conn) {
	s.hub.Remove(c)

	userID, vacated, ok := s.registry.Unregister(c.ID())
	if !ok {
		return
	}
	for _, roomID := range vacated {
		if s.index.Leave(roomID, userID, s.registry) {
			s.broadcastOnline(roomID)
		}
	}
}

func (s *Server) handleJoin(c Conn, roomID string) {
	if roomID == "" {
		return
	}
	s.registry.MarkJoined(c.ID(), roomID)
	s.hub.Join(roomID, c)

	if s.index.Join(roomID, c.UserID()) {
		s.broadcastOnline(roomID)
		return
	}
	// set unchanged (another tab was already in), the new tab still needs
	// the current snapshot
	_ = c.Send(Message{Type: TypeOnlineUsers, Payload: OnlineUsersPayload{
		RoomID:  roomID,
		UserIDs: s.index.OnlineUsers(roomID),
	}})
}

func (s *Server) handleLeave(c Conn, roomID string) {
	if roomID == "" {
		return
	}
	s.hub.Leave(roomID, c)
	s.registry.MarkLeft(c.ID(), roomID)

	if s.index.Leave(roomID, c.UserID(), s.registry) {
		s.broadcastOnline(roomID)
	}
}

func (s *Server) handleSend(ctx context.Context, c Conn, p SendMessagePayload) {
	_, err := s.broadcaster.HandleSend(ctx, chat.SendInput{
		SenderID:         c.UserID(),
		RoomID:           p.ChatRoomID,
		Content:          p.Content,
		Emotion:          p.Emotion,
		AvatarExpression: p.AvatarExpression,
		ReplyTo:          p.ReplyTo,
	})
	if err != nil {
		slog.Warn("ws send failed", "user", c.UserID(), "room", p.ChatRoomID, "err", err)
		_ = c.Send(Message{Type: TypeMessageError, Payload: ErrorPayload{Error: err.Error()}})
	}
}

func (s *Server) handleReaction(ctx context.Context, c Conn, p AddReactionPayload) {
	if _, err := s.broadcaster.HandleReaction(ctx, c.UserID(), p.MessageID, p.Emoji); err != nil {
		slog.Warn("ws reaction failed", "user", c.UserID(), "message", p.MessageID, "err", err)
		_ = c.Send(Message{Type: TypeReactionError, Payload: ErrorPayload{Error: err.Error()}})
	}
}

func (s *Server) handleRead(ctx context.Context, c Conn, p MessageReadPayload) {
	if err := s.broadcaster.HandleReadReceipt(ctx, p.RoomID, p.MessageID, c.UserID()); err != nil {
		slog.Debug("ws read receipt failed", "user", c.UserID(), "message", p.MessageID, "err", err)
	}
}

// handleTranslate answers only the asking tab; nothing is persisted.
func (s *Server) handleTranslate(ctx context.Context, c Conn, p TranslatePayload) {
	if s.translator == nil || p.Text == "" || p.TargetLang == "" {
		return
	}
	text, err := s.translator.TranslateTo(ctx, p.Text, p.TargetLang)
	if err != nil {
		slog.Debug("ws translate failed", "user", c.UserID(), "err", err)
		return
	}
	_ = c.Send(Message{Type: TypeTranslated, Payload: TranslatedPayload{
		MessageID:  p.MessageID,
		Text:       text,
		TargetLang: p.TargetLang,
	}})
}

// handleSummarize answers only the asking tab; nothing is persisted.
func (s *Server) handleSummarize(ctx context.Context, c Conn, p SummarizePayload) {
	if s.summarizer == nil || len(p.Texts) == 0 {
		return
	}
	// bound the request the client can make us forward
	if len(p.Texts) > 200 {
		p.Texts = p.Texts[:200]
	}
	summary, err := s.summarizer.Summarize(ctx, p.Texts)
	if err != nil {
		slog.Debug("ws summarize failed", "user", c.UserID(), "err", err)
		return
	}
	_ = c.Send(Message{Type: TypeSummary, Payload: SummaryPayload{
		RoomID:  p.RoomID,
		Summary: summary,
	}})
}

func (s *Server) handleTyping(c Conn, p TypingPayload) {
	if p.RoomID == "" {
		return
	}
	p.UserName = c.UserName()
	s.hub.BroadcastExcept(p.RoomID, c, Message{Type: TypeTyping, Payload: p})
}

func (s *Server) dispatch(ctx context.Context, c Conn, msg Message) {
	switch msg.Type {
	case TypeJoinRoom:
		var p RoomPayload
		if decode(msg.Payload, &p) == nil {
			s.handleJoin(c, p.RoomID)
		}
	case TypeLeaveRoom:
		var p RoomPayload
		if decode(msg.Payload, &p) == nil {
			s.handleLeave(c, p.RoomID)
		}
	case TypeSendMessage:
		var p SendMessagePayload
		if decode(msg.Payload, &p) == nil {
			s.handleSend(ctx, c, p)
		}
	case TypeAddReaction:
		var p AddReactionPayload
		if decode(msg.Payload, &p) == nil {
			s.handleReaction(ctx, c, p)
		}
	case TypeMessageRead:
		var p MessageReadPayload
		if decode(msg.Payload, &p) == nil {
			s.handleRead(ctx, c, p)
		}
	case TypeTyping:
		var p TypingPayload
		if decode(msg.Payload, &p) == nil {
			s.handleTyping(c, p)
		}
	case TypeTranslate:
		var p TranslatePayload
		if decode(msg.Payload, &p) == nil {
			s.handleTranslate(ctx, c, p)
		}
	case TypeSummarize:
		var p SummarizePayload
		if decode(msg.Payload, &p) == nil {
			s.handleSummarize(ctx, c, p)
		}
	default:
		// ignore
	}
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		s.dispatch(ctx, c, msg)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func (s *Server) broadcastOnline(roomID string) {
	s.hub.Broadcast(roomID, Message{Type: TypeOnlineUsers, Payload: OnlineUsersPayload{
		RoomID:  roomID,
		UserIDs: s.index.OnlineUsers(roomID),
	}})
}

// ReconcileLoop periodically sweeps users with no live connection out of the
// online sets, then rebroadcasts the rooms that changed.
func (s *Server) ReconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(s.reconcileEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, roomID := range s.index.Reconcile(s.registry.IsOnline) {
				s.broadcastOnline(roomID)
			}
		case <-ctx.Done():
			return
		}
	}
}
