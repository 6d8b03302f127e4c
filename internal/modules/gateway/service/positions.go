package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"

	"gap_bot/internal/models"
)

// OpenPositions — открытые позиции по инструменту.
func (c *Client) OpenPositions(ctx context.Context, instID string) ([]models.OpenPosition, error) {
	requestPath := "/api/v5/account/positions?instType=SWAP"
	if instID != "" {
		requestPath += "&instId=" + instID
	}

	data, err := c.doSigned(ctx, http.MethodGet, requestPath, nil)
	if err != nil {
		return nil, fmt.Errorf("OpenPositions: %w", err)
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			PosId       string `json:"posId"`
			InstId      string `json:"instId"`
			PosSide     string `json:"posSide"`
			Pos         string `json:"pos"`
			AvgPx       string `json:"avgPx"`
			Last        string `json:"last"`
			Upl         string `json:"upl"`
			RealizedPnl string `json:"realizedPnl"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("OpenPositions decode: %w", err)
	}
	if r.Code != "0" {
		return nil, fmt.Errorf("OpenPositions error: code=%s msg=%s", r.Code, r.Msg)
	}

	out := make([]models.OpenPosition, 0, len(r.Data))
	for _, d := range r.Data {
		sz := parseF(d.Pos)
		if sz == 0 {
			continue
		}
		out = append(out, models.OpenPosition{
			PositionID: d.PosId,
			InstID:     d.InstId,
			PosSide:    d.PosSide,
			Size:       sz,
			AvgEntry:   parseF(d.AvgPx),
			LastPx:     parseF(d.Last),
			UPL:        parseF(d.Upl),
			RealizedPL: parseF(d.RealizedPnl),
		})
	}
	return out, nil
}

// ClosePosition закрывает позицию по рынку целиком.
func (c *Client) ClosePosition(ctx context.Context, instID, posSide string) error {
	body := map[string]string{
		"instId":  instID,
		"mgnMode": "cross",
		"posSide": posSide,
	}
	payload, _ := sonic.Marshal(body)

	const requestPath = "/api/v5/trade/close-position"
	data, err := c.doSigned(ctx, http.MethodPost, requestPath, payload)
	if err != nil {
		return fmt.Errorf("ClosePosition: %w", err)
	}

	var r struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	}
	_ = sonic.Unmarshal(data, &r)
	if r.Code != "0" {
		return fmt.Errorf("ClosePosition error: code=%s msg=%s RAW=%s", r.Code, r.Msg, string(data))
	}
	return nil
}

func parseF(s string) float64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
