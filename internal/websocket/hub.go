package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/tableqr-backend/pkg/logger"
)

// Client 매장 대시보드 WebSocket 세션
type Client struct {
	Hub          *Hub
	Conn         *Conn
	OperatorID   uint
	RestaurantID uint
	Send         chan []byte
}

// NewClient Send 버퍼를 가진 클라이언트 생성
func NewClient(hub *Hub, conn *Conn, operatorID, restaurantID uint) *Client {
	return &Client{
		Hub:          hub,
		Conn:         conn,
		OperatorID:   operatorID,
		RestaurantID: restaurantID,
		Send:         make(chan []byte, 64),
	}
}

// Hub 매장별 WebSocket 구독 관리자
type Hub struct {
	// 매장별 세션 (RestaurantID -> set of *Client, 멀티 디바이스 지원)
	restaurants map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage 매장 단위 브로드캐스트 메시지
type BroadcastMessage struct {
	RestaurantID uint
	Message      []byte
}

// NewHub Hub 생성
func NewHub() *Hub {
	return &Hub{
		restaurants: make(map[uint]map[*Client]bool),
		register:    make(chan *Client, 256),
		unregister:  make(chan *Client, 256),
		broadcast:   make(chan *BroadcastMessage, 1024),
	}
}

// Run ctx가 끝날 때까지 등록/해제/브로드캐스트 처리
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			sessions, ok := h.restaurants[client.RestaurantID]
			if !ok {
				sessions = make(map[*Client]bool)
				h.restaurants[client.RestaurantID] = sessions
			}
			sessions[client] = true
			total := len(sessions)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"operator_id":    client.OperatorID,
				"restaurant_id":  client.RestaurantID,
				"total_sessions": total,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			var stalled []*Client
			for client := range h.restaurants[message.RestaurantID] {
				select {
				case client.Send <- message.Message:
				default:
					stalled = append(stalled, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range stalled {
				logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
					"operator_id":   client.OperatorID,
					"restaurant_id": client.RestaurantID,
				})
				h.remove(client)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.restaurants[client.RestaurantID]
	if !ok || !sessions[client] {
		return
	}
	delete(sessions, client)
	if len(sessions) == 0 {
		delete(h.restaurants, client.RestaurantID)
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"operator_id":        client.OperatorID,
		"restaurant_id":      client.RestaurantID,
		"remaining_sessions": len(sessions),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sessions := range h.restaurants {
		for client := range sessions {
			close(client.Send)
		}
		delete(h.restaurants, id)
	}
}

// PublishToRestaurant 매장 구독자 전체에 JSON 메시지 전송.
// 채널이 가득 차면 메시지를 버린다 (스캔 카운트는 DB가 기준)
func (h *Hub) PublishToRestaurant(restaurantID uint, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{RestaurantID: restaurantID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"restaurant_id": restaurantID,
		})
	}
	return nil
}

// Register 클라이언트 등록
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister 클라이언트 등록 해제
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SessionCount 매장의 현재 구독 세션 수
func (h *Hub) SessionCount(restaurantID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.restaurants[restaurantID])
}
