package service

import (
	"time"

	"github.com/gorilla/websocket"

	"gap_bot/internal/modules/config"
	healthsvc "gap_bot/internal/modules/health/service"
)

// Client — WebSocket-стример закрытых баров одного инструмента.
type Client struct {
	cfg      *config.Config
	wsDialer *websocket.Dialer
	wsURL    string
	loc      *time.Location
	health   *healthsvc.State
}

func NewClient(cfg *config.Config, health *healthsvc.State) *Client {
	wsURL := cfg.Gateway.WSURL
	if wsURL == "" {
		wsURL = "wss://ws.okx.com:8443/ws/v5/business"
	}
	return &Client{
		cfg:      cfg,
		wsDialer: &websocket.Dialer{},
		wsURL:    wsURL,
		loc:      cfg.Location(),
		health:   health,
	}
}
