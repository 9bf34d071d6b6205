package qbt

import (
	"context"

	"github.com/qbtkit/qbt/request"
)

// TransferInfo returns global transfer statistics.
func (c *Client) TransferInfo(ctx context.Context) (*TransferInfo, error) {
	var info TransferInfo
	if err := c.do(ctx, OpTransferInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SpeedLimitsMode reports whether the alternative speed limits are active.
func (c *Client) SpeedLimitsMode(ctx context.Context) (bool, error) {
	var mode int
	if err := c.do(ctx, OpSpeedLimitsMode, nil, &mode); err != nil {
		return false, err
	}
	return mode == 1, nil
}

func (c *Client) ToggleSpeedLimitsMode(ctx context.Context) error {
	return c.do(ctx, OpToggleSpeedLimitsMode, nil, nil)
}

// GlobalDownloadLimit returns the global download limit in bytes/s; 0 is unlimited.
func (c *Client) GlobalDownloadLimit(ctx context.Context) (int64, error) {
	return c.limit(ctx, OpGlobalDownloadLimit)
}

// SetGlobalDownloadLimit sets the global download limit in bytes/s; 0 is unlimited.
func (c *Client) SetGlobalDownloadLimit(ctx context.Context, limit int64) error {
	return c.setGlobalLimit(ctx, OpSetGlobalDownloadLimit, limit)
}

// GlobalUploadLimit returns the global upload limit in bytes/s; 0 is unlimited.
func (c *Client) GlobalUploadLimit(ctx context.Context) (int64, error) {
	return c.limit(ctx, OpGlobalUploadLimit)
}

// SetGlobalUploadLimit sets the global upload limit in bytes/s; 0 is unlimited.
func (c *Client) SetGlobalUploadLimit(ctx context.Context, limit int64) error {
	return c.setGlobalLimit(ctx, OpSetGlobalUploadLimit, limit)
}

// BanPeers bans peers given as "host:port".
func (c *Client) BanPeers(ctx context.Context, peers []string) error {
	if err := c.checkVar(OpBanPeers, "peers", peers, tagPeers); err != nil {
		return err
	}
	return c.do(ctx, OpBanPeers, request.NewParams().SetList("peers", "|", peers), nil)
}

func (c *Client) limit(ctx context.Context, op Operation) (int64, error) {
	var limit int64
	if err := c.do(ctx, op, nil, &limit); err != nil {
		return 0, err
	}
	return limit, nil
}

func (c *Client) setGlobalLimit(ctx context.Context, op Operation, limit int64) error {
	if err := c.checkVar(op, "limit", limit, tagGlobalLimit); err != nil {
		return err
	}
	return c.do(ctx, op, request.NewParams().SetInt("limit", limit), nil)
}
