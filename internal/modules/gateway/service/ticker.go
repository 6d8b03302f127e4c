package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// BestBidAsk — текущие лучшие bid/ask по инструменту.
func (c *Client) BestBidAsk(ctx context.Context, instID string) (bid, ask float64, err error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/api/v5/market/ticker?instId="+url.QueryEscape(instID),
		nil,
	)
	if err != nil {
		return 0, 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return 0, 0, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var payload struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			BidPx string `json:"bidPx"`
			AskPx string `json:"askPx"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, 0, fmt.Errorf("decode: %w", err)
	}
	if payload.Code != "0" || len(payload.Data) == 0 {
		return 0, 0, fmt.Errorf("ticker error %s: %s", payload.Code, payload.Msg)
	}

	bid = parseF(payload.Data[0].BidPx)
	ask = parseF(payload.Data[0].AskPx)
	if bid <= 0 || ask <= 0 {
		return 0, 0, fmt.Errorf("ticker: bad bid/ask %q/%q", payload.Data[0].BidPx, payload.Data[0].AskPx)
	}
	return bid, ask, nil
}
