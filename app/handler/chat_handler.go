package handler

import (
	"net/http"

	"agentcrew/internal/coordinator"
	"agentcrew/internal/model"
	"agentcrew/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins, production should use stricter checks
	},
}

// ChatHandler drives the coordinator over a WebSocket session: each
// text frame is one task request, each reply frame its outcome.
type ChatHandler struct {
	coord *coordinator.Coordinator
}

// NewChatHandler creates chat handler
func NewChatHandler(coord *coordinator.Coordinator) *ChatHandler {
	return &ChatHandler{coord: coord}
}

type chatError struct {
	Error string `json:"error"`
}

// Chat upgrades the connection and serves submit requests until the
// client disconnects.
// @Summary Interactive task session
// @Description WebSocket session, one JSON submit request per frame
// @Tags chat
// @Router /chat [get]
func (h *ChatHandler) Chat(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "failed to upgrade to websocket: %v", err)
		return
	}
	defer ws.Close()

	ctx := c.Request.Context()
	for {
		var req model.SubmitRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnCtx(ctx, "chat session closed unexpectedly: %v", err)
			}
			return
		}

		resp, err := h.coord.Submit(ctx, &req)
		if err != nil {
			if writeErr := ws.WriteJSON(chatError{Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}
		if err := ws.WriteJSON(resp); err != nil {
			return
		}
	}
}
