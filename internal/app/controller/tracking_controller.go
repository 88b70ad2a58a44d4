package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/pizza-delivery-backend/internal/errors"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
	ws "github.com/ikkim/pizza-delivery-backend/internal/websocket"
)

// TrackingController upgrades authenticated clients to a live order update stream.
type TrackingController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewTrackingController accepts upgrades from the given origins. Requests
// without an Origin header (non-browser clients) are always accepted.
func NewTrackingController(hub *ws.Hub, allowedOrigins []string) *TrackingController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &TrackingController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Connect opens the websocket
// GET /api/ws/orders?token=
func (ctrl *TrackingController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		errors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, ws.NewConn(conn), userID)
	ctrl.hub.Register(client)
	go client.Serve()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
