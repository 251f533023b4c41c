package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/engine"
	"github.com/tripwise/tripwise-go-sdk/gateway"
	"github.com/tripwise/tripwise-go-sdk/gateway/mock"
)

func newTestServer(gw gateway.Gateway) *Server {
	loop := engine.NewLoop(gw, engine.NewToolRegistry())
	return New(loop, Config{Addr: ":0", SystemPrompt: "You are a test assistant."})
}

func postChat(t *testing.T, handler http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatNewConversation(t *testing.T) {
	gw := mock.NewScripted(gateway.Turn{Text: "hello there"})
	srv := newTestServer(gw)

	rec := postChat(t, srv.Handler(), map[string]string{"message": "hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "hello there" {
		t.Fatalf("content %q", resp.Content)
	}
	// system, user, assistant.
	if len(resp.Conversation) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(resp.Conversation))
	}
	if resp.Conversation[0].Role != core.RoleSystem {
		t.Fatalf("first message role %s", resp.Conversation[0].Role)
	}
}

func TestChatContinuesConversation(t *testing.T) {
	gw := mock.NewScripted(
		gateway.Turn{Text: "first reply"},
		gateway.Turn{Text: "second reply"},
	)
	srv := newTestServer(gw)

	rec := postChat(t, srv.Handler(), map[string]string{"message": "first"})
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = postChat(t, srv.Handler(), chatRequest{Message: "second", Conversation: resp.Conversation})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "second reply" {
		t.Fatalf("content %q", resp.Content)
	}
	// system, user, assistant, user, assistant; the system prompt is not
	// duplicated on the second turn.
	if len(resp.Conversation) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(resp.Conversation))
	}
	systems := 0
	for _, msg := range resp.Conversation {
		if msg.Role == core.RoleSystem {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("expected exactly 1 system message, got %d", systems)
	}
}

func TestChatFatalIsGeneric500(t *testing.T) {
	// An empty script makes the first invocation fail with a gateway error.
	srv := newTestServer(mock.NewScripted())

	rec := postChat(t, srv.Handler(), map[string]string{"message": "hi"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to process request") {
		t.Fatalf("body %q", rec.Body)
	}
	if strings.Contains(rec.Body.String(), "script exhausted") {
		t.Fatal("internal error detail leaked to the client")
	}
}

func TestChatRejectsMissingMessage(t *testing.T) {
	srv := newTestServer(mock.NewScripted())
	rec := postChat(t, srv.Handler(), map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestChatRejectsGet(t *testing.T) {
	srv := newTestServer(mock.NewScripted())
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(mock.NewScripted())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body %q", rec.Body)
	}
}

func TestWebsocketChatKeepsConversation(t *testing.T) {
	lengths := make(chan int, 2)
	replies := []string{"first reply", "second reply"}
	calls := 0
	gw := mock.Func(func(ctx context.Context, conv []core.Message, tools []core.ToolDefinition) (*gateway.Turn, error) {
		lengths <- len(conv)
		reply := replies[calls]
		calls++
		return &gateway.Turn{Text: reply}, nil
	})
	srv := newTestServer(gw)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var reply wsReply
	if err := conn.WriteJSON(wsMessage{Message: "first"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Content != "first reply" {
		t.Fatalf("content %q", reply.Content)
	}

	if err := conn.WriteJSON(wsMessage{Message: "second"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Content != "second reply" {
		t.Fatalf("content %q", reply.Content)
	}

	// system+user on the first turn; the second must carry the exchange.
	if first := <-lengths; first != 2 {
		t.Fatalf("expected 2 messages in first invocation, got %d", first)
	}
	if second := <-lengths; second != 4 {
		t.Fatalf("expected 4 messages in second invocation, got %d", second)
	}
}
