package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bytedance/sonic"

	"trade_engine/internal/models"
)

// PositionMode reports whether the account is in one-way or hedge
// (dual-side) position mode.
func (c *Client) PositionMode(ctx context.Context) (models.PositionMode, error) {
	body, err := c.doSigned(ctx, http.MethodGet, "/fapi/v1/positionSide/dual", nil)
	if err != nil {
		return "", err
	}

	var payload dualSideResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	if payload.DualSidePosition {
		return models.PositionModeHedge, nil
	}
	return models.PositionModeSingleSided, nil
}

func (c *Client) SetPositionMode(ctx context.Context, mode models.PositionMode) error {
	dual := "false"
	if mode == models.PositionModeHedge {
		dual = "true"
	}

	params := url.Values{"dualSidePosition": {dual}}
	_, err := c.doSigned(ctx, http.MethodPost, "/fapi/v1/positionSide/dual", params)
	return err
}
