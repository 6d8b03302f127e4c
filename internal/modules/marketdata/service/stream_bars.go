package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"gap_bot/internal/models"
	"gap_bot/pkg/logger"
)

// StreamBars — поток закрытых баров по инструменту из конфига.
// Порядок доставки строгий: один read-loop, один канал — bar-closed события
// приходят в движок в том порядке, в каком их закрыла биржа.
func (c *Client) StreamBars(ctx context.Context, out chan<- models.Bar) {
	channel := "candle" + c.cfg.Timeframe

	for {
		logger.Info("[WS] connect %s %s", channel, c.cfg.InstID)
		conn, _, err := c.wsDialer.Dial(c.wsURL, nil)
		if err != nil {
			logger.Error("[WS] dial error %s: %v", channel, err)
			time.Sleep(time.Second)
			continue
		}

		sub := map[string]any{
			"op": "subscribe",
			"args": []map[string]string{{
				"channel": channel,
				"instId":  c.cfg.InstID,
			}},
		}
		if err := conn.WriteJSON(sub); err != nil {
			logger.Error("[WS] subscribe error %s: %v", channel, err)
			_ = conn.Close()
			continue
		}
		c.health.SetStreamConnected(true)

		// keepalive ping каждые 20s — иначе шлюз рвёт соединение
		stopPing := make(chan struct{})
		go func() {
			defer close(stopPing)
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteJSON(map[string]string{"op": "ping"})
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Error("[WS] read error %s: %v", channel, err)
				c.health.SetStreamConnected(false)
				_ = conn.Close()
				break
			}

			var frame struct {
				Arg struct {
					Channel string `json:"channel"`
					InstID  string `json:"instId"`
				} `json:"arg"`
				Data [][]string `json:"data"`
			}
			if err := json.Unmarshal(msg, &frame); err != nil {
				continue
			}
			if frame.Arg.Channel != channel || frame.Arg.InstID != c.cfg.InstID || len(frame.Data) == 0 {
				continue
			}

			for _, row := range frame.Data {
				// формат data: [ts, o, h, l, c, ..., confirm]
				if len(row) < 5 {
					continue
				}
				if row[len(row)-1] != "1" {
					continue // ждём закрытый бар
				}

				tsMs, err := strconv.ParseInt(row[0], 10, 64)
				if err != nil {
					continue
				}
				openUTC := time.UnixMilli(tsMs).UTC()

				open, err1 := strconv.ParseFloat(row[1], 64)
				high, err2 := strconv.ParseFloat(row[2], 64)
				low, err3 := strconv.ParseFloat(row[3], 64)
				closep, err4 := strconv.ParseFloat(row[4], 64)
				if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
					continue
				}
				if closep <= 0 {
					continue
				}

				bar := models.Bar{
					Open:          open,
					High:          high,
					Low:           low,
					Close:         closep,
					OpenTimeUTC:   openUTC,
					OpenTimeLocal: openUTC.In(c.loc),
				}

				c.health.TouchBar(openUTC)
				select {
				case out <- bar:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}
