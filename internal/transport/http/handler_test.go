package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwrk-planet/chat-service/internal/auth"
	"github.com/cwrk-planet/chat-service/internal/presence"
	"github.com/cwrk-planet/chat-service/internal/transport/ws"
)

func newTestRouter(t *testing.T) (http.Handler, *presence.Registry, *presence.Index, string) {
	t.Helper()

	registry := presence.NewRegistry()
	index := presence.NewIndex()
	verifier := auth.NewVerifier("test-secret")
	wsServer := ws.NewServer(ws.NewHub(), registry, index, nil, verifier, 0, 0)

	token, err := verifier.Sign(auth.Identity{UserID: "u1", Name: "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	router := NewRouter(NewHandler(registry, index), wsServer, verifier, []string{"http://localhost:3000"})
	return router, registry, index, token
}

func TestHealthz(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestRoomOnlineRequiresAuth(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/r1/online", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/r1/online", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d", rec.Code)
	}
}

func TestRoomOnlineSnapshot(t *testing.T) {
	router, _, index, token := newTestRouter(t)
	index.Join("r1", "u2")
	index.Join("r1", "u1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/r1/online", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp OnlineUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.RoomID != "r1" || len(resp.UserIDs) != 2 || resp.UserIDs[0] != "u1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserOnline(t *testing.T) {
	router, registry, _, token := newTestRouter(t)
	registry.Register("c1", "u2")

	for _, tc := range []struct {
		userID string
		online bool
	}{
		{"u2", true},
		{"u3", false},
	} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/"+tc.userID+"/online", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)

		var resp UserOnlineResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Online != tc.online {
			t.Fatalf("user %s: online=%v, want %v", tc.userID, resp.Online, tc.online)
		}
	}
}

func TestWSUpgradeRejectsMissingToken(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}
}
