package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

// ModifyStopLossTakeProfit перевыставляет SL/TP позиции conditional-ордером
// в АБСОЛЮТНОЙ цене. Пипсовые модификации до исполнения могут уехать от
// целевого уровня, поэтому после реального фила уровни заново задаются ценой.
// sl/tp <= 0 — уровень не ставится. Возвращает algoId закрывающего ордера.
func (c *Client) ModifyStopLossTakeProfit(
	ctx context.Context,
	instID string,
	posSide string, // "long"/"short"
	size float64,
	sl float64,
	tp float64,
) (string, error) {

	if size <= 0 {
		return "", fmt.Errorf("ModifyStopLossTakeProfit: size <= 0")
	}

	var side string
	switch posSide {
	case "long":
		side = "sell"
	case "short":
		side = "buy"
	default:
		return "", fmt.Errorf("ModifyStopLossTakeProfit: unsupported posSide=%q", posSide)
	}

	body := map[string]string{
		"instId":  instID,
		"tdMode":  "cross",
		"side":    side,
		"posSide": posSide,
		"ordType": "oco",
		"sz":      formatSize(size),
	}
	if sl > 0 {
		body["slTriggerPx"] = formatPrice(sl)
		body["slOrdPx"] = "-1"
		body["slTriggerPxType"] = "last"
	}
	if tp > 0 {
		body["tpTriggerPx"] = formatPrice(tp)
		body["tpOrdPx"] = "-1"
		body["tpTriggerPxType"] = "last"
	}

	payload, err := sonic.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("ModifyStopLossTakeProfit marshal: %w", err)
	}

	const requestPath = "/api/v5/trade/order-algo"
	data, err := c.doSigned(ctx, http.MethodPost, requestPath, payload)
	if err != nil {
		return "", fmt.Errorf("ModifyStopLossTakeProfit: %w", err)
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
		return "", fmt.Errorf("ModifyStopLossTakeProfit error: code=%s msg=%s RAW=%s", r.Code, r.Msg, string(data))
	}
	if len(r.Data) == 0 || r.Data[0].SCode != "0" {
		return "", fmt.Errorf("ModifyStopLossTakeProfit reject RAW=%s", string(data))
	}
	return r.Data[0].AlgoId, nil
}
