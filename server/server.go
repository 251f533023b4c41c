// Package server exposes the assistant over HTTP: a JSON chat endpoint that
// carries the conversation back and forth, a health probe, and a websocket
// channel that keeps the conversation server-side per connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tripwise/tripwise-go-sdk/core"
	"github.com/tripwise/tripwise-go-sdk/engine"
)

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// SystemPrompt seeds every new conversation.
	SystemPrompt string
}

// Server routes chat requests into the loop.
type Server struct {
	loop         *engine.Loop
	systemPrompt string
	httpServer   *http.Server
	upgrader     websocket.Upgrader
}

// New creates a server around the loop.
func New(loop *engine.Loop, cfg Config) *Server {
	s := &Server{
		loop:         loop,
		systemPrompt: cfg.SystemPrompt,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] listening on %s", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type chatRequest struct {
	Message      string         `json:"message"`
	Conversation []core.Message `json:"conversation,omitempty"`
}

type chatResponse struct {
	Content      string         `json:"content"`
	Conversation []core.Message `json:"conversation"`
}

// handleChat runs one user turn. The client carries the conversation: it
// sends back what the previous response returned, and a missing or empty
// conversation starts a fresh one.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	res, err := s.runTurn(r.Context(), req.Conversation, req.Message)
	if err != nil || res.State == engine.StateFailed {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to process request"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Content:      res.Text,
		Conversation: res.Conversation,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type wsMessage struct {
	Message string `json:"message"`
}

type wsReply struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// handleWS runs a chat session over one websocket connection. The
// conversation lives server-side for the life of the connection.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var conversation []core.Message
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[SERVER] websocket read: %v", err)
			}
			return
		}
		if msg.Message == "" {
			continue
		}

		res, err := s.runTurn(r.Context(), conversation, msg.Message)
		if err != nil || res.State == engine.StateFailed {
			if writeErr := conn.WriteJSON(wsReply{Error: "Failed to process request"}); writeErr != nil {
				return
			}
			continue
		}
		conversation = res.Conversation

		if err := conn.WriteJSON(wsReply{Content: res.Text}); err != nil {
			return
		}
	}
}

// runTurn appends the user message to the conversation, seeding the system
// prompt when the conversation is new, and drives the loop to completion.
func (s *Server) runTurn(ctx context.Context, conversation []core.Message, message string) (*engine.Result, error) {
	var seed []core.Message
	if len(conversation) > 0 && conversation[0].Role == core.RoleSystem {
		seed = append(seed, conversation...)
	} else {
		seed = append(seed, core.SystemMessage(s.systemPrompt))
		seed = append(seed, conversation...)
	}
	seed = append(seed, core.UserMessage(message))
	return s.loop.Run(ctx, seed)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[SERVER] write response: %v", err)
	}
}
