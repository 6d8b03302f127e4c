package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"gap_bot/internal/models"
)

// GetInstrumentMeta тянет метаданные символа и приводит их к числам.
// PipSize берём как tickSz, PipValue — стоимость хода цены на 1.0
// на один контракт (эффективный номинал ctVal*ctMult).
func (c *Client) GetInstrumentMeta(ctx context.Context, instID string) (models.Instrument, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.baseURL+"/api/v5/public/instruments?instType=SWAP&instId="+url.QueryEscape(instID),
		nil,
	)
	if err != nil {
		return models.Instrument{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Instrument{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return models.Instrument{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var payload struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			InstID   string `json:"instId"`
			TickSz   string `json:"tickSz"`
			LotSz    string `json:"lotSz"`
			MinSz    string `json:"minSz"`
			MaxMktSz string `json:"maxMktSz"`
			CtVal    string `json:"ctVal"`
			CtMult   string `json:"ctMult"`
			State    string `json:"state"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Instrument{}, fmt.Errorf("decode: %w", err)
	}
	if payload.Code != "0" {
		return models.Instrument{}, fmt.Errorf("gateway error %s: %s", payload.Code, payload.Msg)
	}
	if len(payload.Data) == 0 {
		return models.Instrument{}, fmt.Errorf("instrument %s not found", instID)
	}

	inst := payload.Data[0]
	if inst.State != "" && inst.State != "live" {
		return models.Instrument{}, fmt.Errorf("instrument %s not live: state=%s", instID, inst.State)
	}

	parsePos := func(name, s string) (float64, error) {
		if s == "" {
			return 0, fmt.Errorf("%s empty", name)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return 0, fmt.Errorf("%s parse: %v (%q)", name, err, s)
		}
		return v, nil
	}

	lotSz, err := parsePos("lotSz", inst.LotSz)
	if err != nil {
		return models.Instrument{}, err
	}
	minSz, err := parsePos("minSz", inst.MinSz)
	if err != nil {
		return models.Instrument{}, err
	}
	tickSz, err := parsePos("tickSz", inst.TickSz)
	if err != nil {
		return models.Instrument{}, err
	}
	ctVal, err := parsePos("ctVal", inst.CtVal)
	if err != nil {
		return models.Instrument{}, err
	}

	ctMult := 1.0
	if inst.CtMult != "" {
		if v, e := strconv.ParseFloat(inst.CtMult, 64); e == nil && v > 0 {
			ctMult = v
		}
	}

	var maxSz float64
	if inst.MaxMktSz != "" {
		maxSz, _ = strconv.ParseFloat(inst.MaxMktSz, 64)
	}

	return models.Instrument{
		InstID:   inst.InstID,
		PipSize:  tickSz,
		PipValue: ctVal * ctMult,
		TickSize: tickSz,
		LotStep:  lotSz,
		MinSize:  minSz,
		MaxSize:  maxSz,
	}, nil
}
