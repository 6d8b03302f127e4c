package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"

	"gap_bot/internal/models"
)

// ExecuteMarketOrder открывает позицию по рынку. Возвращает ordId шлюза.
func (c *Client) ExecuteMarketOrder(
	ctx context.Context,
	instID string,
	side models.Side,
	size float64,
	label string,
) (string, error) {

	if size <= 0 {
		return "", fmt.Errorf("ExecuteMarketOrder: size <= 0")
	}

	var sideStr, posSide string
	switch side {
	case models.SideBuy:
		sideStr, posSide = "buy", "long"
	case models.SideSell:
		sideStr, posSide = "sell", "short"
	default:
		return "", fmt.Errorf("ExecuteMarketOrder: unsupported side=%q", side)
	}

	body := map[string]string{
		"instId":  instID,
		"tdMode":  "cross",
		"side":    sideStr,
		"posSide": posSide,
		"ordType": "market",
		"sz":      formatSize(size),
		"clOrdId": label,
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ExecuteMarketOrder marshal: %w", err)
	}

	const requestPath = "/api/v5/trade/order"
	data, err := c.doSigned(ctx, http.MethodPost, requestPath, payload)
	if err != nil {
		return "", fmt.Errorf("ExecuteMarketOrder: %w", err)
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			OrdId string `json:"ordId"`
			SCode string `json:"sCode"`
			SMsg  string `json:"sMsg"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return "", fmt.Errorf("ExecuteMarketOrder decode: %w; body=%s", err, string(data))
	}

	if len(r.Data) > 0 && r.Data[0].SCode != "0" {
		return "", fmt.Errorf(
			"ExecuteMarketOrder rejected: sCode=%s sMsg=%s RAW=%s",
			r.Data[0].SCode, r.Data[0].SMsg, string(data),
		)
	}
	if r.Code != "0" {
		return "", fmt.Errorf("ExecuteMarketOrder error: code=%s msg=%s RAW=%s", r.Code, r.Msg, string(data))
	}
	if len(r.Data) == 0 || r.Data[0].OrdId == "" {
		return "", fmt.Errorf("ExecuteMarketOrder: empty ordId RAW=%s", string(data))
	}

	return r.Data[0].OrdId, nil
}
