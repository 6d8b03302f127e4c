package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"gap_bot/internal/models"
)

// PlaceStopOrder ставит отложенный trigger-ордер: активируется, когда цена
// доходит до triggerPx. label уходит в algoClOrdId, чтобы отличать свои ордера.
func (c *Client) PlaceStopOrder(
	ctx context.Context,
	instID string,
	side models.Side,
	size float64,
	triggerPx float64,
	label string,
) (string, error) { // algoId

	if size <= 0 {
		return "", fmt.Errorf("PlaceStopOrder: size <= 0")
	}
	if triggerPx <= 0 {
		return "", fmt.Errorf("PlaceStopOrder: triggerPx <= 0")
	}

	var sideStr, posSide string
	switch side {
	case models.SideBuy:
		sideStr, posSide = "buy", "long"
	case models.SideSell:
		sideStr, posSide = "sell", "short"
	default:
		return "", fmt.Errorf("PlaceStopOrder: unsupported side=%q", side)
	}

	body := map[string]string{
		"instId":      instID,
		"tdMode":      "cross",
		"side":        sideStr,
		"posSide":     posSide,
		"ordType":     "trigger",
		"sz":          formatSize(size),
		"triggerPx":   formatPrice(triggerPx),
		"orderPx":     "-1", // market по срабатыванию
		"algoClOrdId": label,
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("PlaceStopOrder marshal: %w", err)
	}

	const requestPath = "/api/v5/trade/order-algo"
	data, err := c.doSigned(ctx, http.MethodPost, requestPath, payload)
	if err != nil {
		return "", fmt.Errorf("PlaceStopOrder: %w", err)
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			AlgoId string `json:"algoId"`
			SCode  string `json:"sCode"`
			SMsg   string `json:"sMsg"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("PlaceStopOrder decode: %w; body=%s", err, string(data))
	}

	if len(r.Data) > 0 && r.Data[0].SCode != "0" {
		return "", fmt.Errorf(
			"PlaceStopOrder rejected: sCode=%s sMsg=%s RAW=%s",
			r.Data[0].SCode, r.Data[0].SMsg, string(data),
		)
	}
	if r.Code != "0" {
		return "", fmt.Errorf("PlaceStopOrder error: code=%s msg=%s RAW=%s", r.Code, r.Msg, string(data))
	}
	if len(r.Data) == 0 || r.Data[0].AlgoId == "" {
		return "", fmt.Errorf("PlaceStopOrder: empty algoId RAW=%s", string(data))
	}

	return r.Data[0].AlgoId, nil
}

// CancelStopOrder снимает отложенный trigger-ордер.
func (c *Client) CancelStopOrder(ctx context.Context, instID, algoID string) error {
	body := []map[string]string{{"instId": instID, "algoId": algoID}}
	payload, _ := sonic.Marshal(body)

	const requestPath = "/api/v5/trade/cancel-algos"
	data, err := c.doSigned(ctx, http.MethodPost, requestPath, payload)
	if err != nil {
		return fmt.Errorf("CancelStopOrder: %w", err)
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			AlgoId string `json:"algoId"`
			SCode  string `json:"sCode"`
			SMsg   string `json:"sMsg"`
		} `json:"data"`
	}
	_ = sonic.Unmarshal(data, &r)

	if r.Code != "0" {
		return fmt.Errorf("CancelStopOrder error: code=%s msg=%s RAW=%s", r.Code, r.Msg, string(data))
	}
	if len(r.Data) == 0 || r.Data[0].SCode != "0" {
		return fmt.Errorf("CancelStopOrder reject RAW=%s", string(data))
	}
	return nil
}

// PendingStopOrders — живые trigger-ордера по инструменту с нашим префиксом метки.
func (c *Client) PendingStopOrders(ctx context.Context, instID, labelPrefix string) ([]models.PendingOrder, error) {
	requestPath := "/api/v5/trade/orders-algo-pending?ordType=trigger&instId=" + instID

	data, err := c.doSigned(ctx, http.MethodGet, requestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("PendingStopOrders: %w", err)
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			AlgoId      string `json:"algoId"`
			InstId      string `json:"instId"`
			Side        string `json:"side"`
			Sz          string `json:"sz"`
			TriggerPx   string `json:"triggerPx"`
			AlgoClOrdId string `json:"algoClOrdId"`
			CTime       string `json:"cTime"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("PendingStopOrders decode: %w", err)
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("PendingStopOrders error: code=%s msg=%s", r.Code, r.Msg)
	}

	out := make([]models.PendingOrder, 0, len(r.Data))
	for _, d := range r.Data {
		if labelPrefix != "" && !strings.HasPrefix(d.AlgoClOrdId, labelPrefix) {
			continue
		}
		side := models.SideBuy
		if d.Side == "sell" {
			side = models.SideSell
		}
		out = append(out, models.PendingOrder{
			OrderID:   d.AlgoId,
			InstID:    d.InstId,
			Side:      side,
			Size:      parseF(d.Sz),
			TriggerPx: parseF(d.TriggerPx),
			Label:     d.AlgoClOrdId,
			CreatedAt: parseMillis(d.CTime),
		})
	}
	return out, nil
}

func parseMillis(s string) time.Time {
	ms := int64(parseF(s))
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
