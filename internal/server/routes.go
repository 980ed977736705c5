package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"arcade-server/internal/game"
)

func (s *Server) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/websocket", s.websocketHandler)

	// Wrap the mux with CORS middleware
	return s.corsMiddleware(mux)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Replace "*" with specific origins if needed
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"service": "arcade-server"}
	jsonResp, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(jsonResp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := json.Marshal(map[string]interface{}{
		"status":      "ok",
		"connections": s.connections.Count(),
		"rooms":       s.matchmaker.RoomCount(),
	})
	if err != nil {
		http.Error(w, "Failed to marshal health check response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(resp); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// session is the per-connection routing state: which room and seat the
// connection occupies. A connection binds to at most one room for its
// lifetime.
type session struct {
	room        *Room
	seat        int
	identity    string
	displayName string
}

func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	socket, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"}, // TODO: make environment-specific
	})
	if err != nil {
		http.Error(w, "Failed to open websocket", http.StatusInternalServerError)
		return
	}
	defer socket.Close(websocket.StatusGoingAway, "Server closing")

	ctx := r.Context()

	connectionID := uuid.New().String()
	log.Printf("New connection: %s", connectionID)
	s.connections.Add(connectionID, socket)

	sess := &session{}

	defer func() {
		s.connections.Remove(connectionID)
		s.limiter.RemoveConnection(connectionID)
		log.Printf("Connection closed: %s", connectionID)

		// Connection loss counts as leaving; Leave is idempotent, so a
		// repeated notification for a gone participant is a no-op.
		if sess.room != nil {
			if empty := sess.room.Leave(sess.identity); empty {
				s.matchmaker.Remove(sess.room)
				log.Printf("Room %s destroyed", sess.room.ID)
			}
		}
	}()

	for {
		msgType, data, err := socket.Read(ctx)
		if err != nil {
			log.Printf("Connection %s read error: %v", connectionID, err)
			return
		}

		if msgType != websocket.MessageText {
			log.Printf("Non-text input from %s", connectionID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Invalid JSON from %s: %v", connectionID, err)
			s.sendError(connectionID, "Invalid JSON")
			continue
		}

		if !s.limiter.Allow(connectionID) {
			s.sendError(connectionID, "RATE_LIMITED: Too many messages")
			continue
		}

		switch msg.Type {
		case "ping":
			s.broadcaster.SendTo(connectionID, "pong", struct{}{})

		case "join_request":
			s.handleJoinRequest(connectionID, sess, msg.Payload)

		case "move":
			s.handleMove(sess, msg.Payload)

		case "chat":
			s.handleChat(sess, msg.Payload)

		default:
			log.Printf("Unknown message type '%s' from %s", msg.Type, connectionID)
			s.sendError(connectionID, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) sendError(connectionID, msg string) {
	s.broadcaster.SendTo(connectionID, "error", ErrorMessage{Message: msg})
}

func (s *Server) handleJoinRequest(connectionID string, sess *session, payload json.RawMessage) {
	if sess.room != nil {
		s.sendError(connectionID, "ALREADY_IN_ROOM: Connection is already seated")
		return
	}

	var req JoinRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.sendError(connectionID, "Invalid join_request payload")
		return
	}

	if req.Identity == "" {
		s.sendError(connectionID, "IDENTITY_INVALID: Identity cannot be empty")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = "Anonymous"
	}

	kind, err := game.ParseKind(req.GameKind)
	if err != nil {
		s.sendError(connectionID, err.Error())
		return
	}

	room, seat, err := s.matchmaker.RequestMatch(kind, req.Identity, req.DisplayName, connectionID)
	if err != nil {
		s.sendError(connectionID, err.Error())
		return
	}

	sess.room = room
	sess.seat = seat
	sess.identity = req.Identity
	sess.displayName = req.DisplayName

	log.Printf("Connection %s seated in room %s (kind %s, seat %d)", connectionID, room.ID, kind, seat)
}

func (s *Server) handleMove(sess *session, payload json.RawMessage) {
	// Moves from unseated connections are dropped, not answered: a
	// malformed client must never affect other rooms.
	if sess.room == nil {
		return
	}

	var req MoveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	sess.room.SubmitMove(sess.seat, game.Move{Row: req.Row, Col: req.Col})
}

func (s *Server) handleChat(sess *session, payload json.RawMessage) {
	if sess.room == nil {
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	sess.room.Chat(sess.identity, req.Text)
}
