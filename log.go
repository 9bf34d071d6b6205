package qbt

import (
	"context"

	"github.com/qbtkit/qbt/request"
)

// MainLog returns main log entries after opts.LastKnownID.
func (c *Client) MainLog(ctx context.Context, opts MainLogOptions) ([]LogEntry, error) {
	params := request.NewParams().
		OptionalBool("normal", opts.Normal).
		OptionalBool("info", opts.Info).
		OptionalBool("warning", opts.Warning).
		OptionalBool("critical", opts.Critical).
		OptionalInt("last_known_id", opts.LastKnownID)

	var entries []LogEntry
	if err := c.do(ctx, OpMainLog, params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PeerLog returns peer log entries after lastKnownID; nil returns all.
func (c *Client) PeerLog(ctx context.Context, lastKnownID *int64) ([]PeerLogEntry, error) {
	params := request.NewParams().OptionalInt("last_known_id", lastKnownID)

	var entries []PeerLogEntry
	if err := c.do(ctx, OpPeerLog, params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
