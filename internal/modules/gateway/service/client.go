package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"gap_bot/internal/modules/config"
)

// Client — подписанный HTTP-клиент биржевого шлюза (OKX-совместимый REST).
type Client struct {
	http    *http.Client
	baseURL string

	apiKey    string
	apiSecret string
	passph    string
}

func NewClient(cfg *config.Config) *Client {
	base := cfg.Gateway.BaseURL
	if base == "" {
		base = "https://www.okx.com"
	}
	return &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		baseURL:   base,
		apiKey:    cfg.Gateway.APIKey,
		apiSecret: cfg.Gateway.APISecret,
		passph:    cfg.Gateway.Passphrase,
	}
}

func (c *Client) sign(ts, method, requestPath, body string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(ts + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// doSigned выполняет подписанный запрос и возвращает тело ответа.
func (c *Client) doSigned(ctx context.Context, method, requestPath string, payload []byte) ([]byte, error) {
	ts := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	sign := c.sign(ts, method, requestPath, string(payload))

	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+requestPath, rd)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("OK-ACCESS-KEY", c.apiKey)
	req.Header.Set("OK-ACCESS-SIGN", sign)
	req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.passph)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

func formatPrice(px float64) string { return strconv.FormatFloat(px, 'f', -1, 64) }
func formatSize(sz float64) string  { return strconv.FormatFloat(sz, 'f', -1, 64) }
