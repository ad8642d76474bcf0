package service

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// WSClient 表示一个已建立的订阅连接。
type WSClient struct {
	UserID uint
	Conn   *websocket.Conn
}

// LiveHub 向同一用户的所有在线连接推送最新的用户/日志快照。
// 订阅只做事后通知，核心读写路径不依赖它。
type LiveHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
}

// NewLiveHub 构造 LiveHub。
func NewLiveHub() *LiveHub {
	return &LiveHub{clients: make(map[uint]map[*WSClient]struct{})}
}

// Register 登记一个订阅连接。
func (h *LiveHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister 注销并关闭订阅连接。
func (h *LiveHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Broadcast 把载荷推送给该用户的全部连接，hub 为 nil 时为空操作。
func (h *LiveHub) Broadcast(userID uint, kind string, payload any) {
	if h == nil {
		return
	}

	msg, err := json.Marshal(map[string]any{"kind": kind, "data": payload})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		_ = c.Conn.WriteMessage(websocket.TextMessage, msg)
	}
}
