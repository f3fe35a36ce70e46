package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msto63/rallyscore/internal/volley/service"
	"github.com/msto63/rallyscore/pkg/core/apperror"
	"github.com/msto63/rallyscore/pkg/core/logging"
)

const (
	wsReadTimeout    = 120 * time.Second
	wsRequestTimeout = 10 * time.Second
)

// WebSocket upgrader with permissive settings for local scoreboards
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler serves rally resolution and match sessions over WebSocket
type WebSocketHandler struct {
	sessions Sessions
	logger   *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(sessions Sessions, logger *logging.Logger) *WebSocketHandler {
	if logger == nil {
		logger = logging.New("rallyscore-websocket")
	}
	return &WebSocketHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"`    // "resolve", "new_match", "rally", "undo", "history", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"`    // "result", "match", "outcome", "state", "history", "error", "pong"
	Payload interface{} `json:"payload"` // Response-specific payload
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection reads messages until the peer goes away. Messages are
// handled in order so replies never interleave.
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	h.logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error", "error", err)
			} else {
				h.logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		reqCtx, cancel := context.WithTimeout(ctx, wsRequestTimeout)
		h.sendResponse(conn, h.dispatch(reqCtx, msg))
		cancel()
	}
}

// dispatch handles one message and builds its reply
func (h *WebSocketHandler) dispatch(ctx context.Context, msg WSMessage) WSResponse {
	switch msg.Type {
	case "ping":
		return WSResponse{Type: "pong"}

	case "resolve":
		var req ResolveRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errorResponse(string(apperror.CodeInvalidInput), "Invalid resolve payload")
		}
		return WSResponse{Type: "result", Payload: resolve(h.sessions.Notation(), req)}

	case "new_match":
		var req service.NewMatchRequest
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return errorResponse(string(apperror.CodeInvalidInput), "Invalid new_match payload")
			}
		}
		m, err := h.sessions.NewMatch(ctx, req)
		if err != nil {
			return h.failure(err)
		}
		return WSResponse{Type: "match", Payload: m}

	case "rally":
		var req ApplyRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errorResponse(string(apperror.CodeInvalidInput), "Invalid rally payload")
		}
		resp, err := apply(ctx, h.sessions, req)
		if err != nil {
			return h.failure(err)
		}
		return WSResponse{Type: "outcome", Payload: resp}

	case "undo":
		var req MatchRequest
		if err := decodeMatchRequest(msg.Payload, &req); err != nil {
			return h.failure(err)
		}
		state, err := h.sessions.Undo(ctx, req.MatchID)
		if err != nil {
			return h.failure(err)
		}
		return WSResponse{Type: "state", Payload: state}

	case "history":
		var req MatchRequest
		if err := decodeMatchRequest(msg.Payload, &req); err != nil {
			return h.failure(err)
		}
		rallies, err := h.sessions.History(ctx, req.MatchID)
		if err != nil {
			return h.failure(err)
		}
		return WSResponse{Type: "history", Payload: rallies}

	default:
		return errorResponse("unknown_type", "Unknown message type: "+msg.Type)
	}
}

func decodeMatchRequest(payload json.RawMessage, req *MatchRequest) error {
	if err := json.Unmarshal(payload, req); err != nil {
		return apperror.Wrap(err, "invalid payload").WithCode(apperror.CodeInvalidInput)
	}
	return requireMatchID(*req)
}

// failure maps a service error to an error reply
func (h *WebSocketHandler) failure(err error) WSResponse {
	code := errorCode(err)
	if code == apperror.CodeInternal || code == apperror.CodeDatabaseError {
		h.logger.LogError(err)
	}
	return errorResponse(string(code), err.Error())
}

func errorResponse(code, message string) WSResponse {
	return WSResponse{
		Type: "error",
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// sendResponse sends a response message via WebSocket
func (h *WebSocketHandler) sendResponse(conn *websocket.Conn, resp WSResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "error", err)
	}
}
