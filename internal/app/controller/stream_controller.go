package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/tableqr-backend/internal/middleware"
	"github.com/ikkim/tableqr-backend/internal/websocket"
)

// StreamController 매장별 실시간 스캔 이벤트 WebSocket
type StreamController struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
}

// NewStreamController allowedOrigins가 비어 있거나 "*"를 포함하면 모든 Origin 허용
func NewStreamController(hub *websocket.Hub, allowedOrigins []string) *StreamController {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return &StreamController{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// Stream GET .../qr-codes/stream
func (ctrl *StreamController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	restaurantID, _ := middleware.GetRestaurantID(c)
	operatorID, _ := middleware.GetOperatorID(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"restaurant_id": restaurantID,
			"error":         err.Error(),
		})
		return
	}

	client := websocket.NewClient(ctrl.hub, &websocket.Conn{Conn: conn}, operatorID, restaurantID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
