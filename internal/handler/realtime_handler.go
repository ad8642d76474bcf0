package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sipstreak/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveUpdates 升级为 WebSocket 并订阅当前用户的日志/资料快照。
func (a *API) LiveUpdates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &service.WSClient{UserID: userID, Conn: conn}
	a.hub.Register(client)

	// 周期 ping，穿透中间代理保活
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				a.hub.Unregister(client)
				return
			}
		}
	}()

	// 读循环在客户端断开时结束并注销
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			a.hub.Unregister(client)
			return
		}
	}
}
