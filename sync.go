package qbt

import (
	"context"

	"github.com/qbtkit/qbt/request"
)

// MainData returns the changes since response id rid. Zero requests a full
// snapshot; pass the returned Rid to the next call.
func (c *Client) MainData(ctx context.Context, rid int64) (*MainData, error) {
	if err := c.checkVar(OpMainData, "rid", rid, "gte=0"); err != nil {
		return nil, err
	}
	var data MainData
	if err := c.do(ctx, OpMainData, request.NewParams().SetInt("rid", rid), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// TorrentPeers returns the peer changes of one torrent since rid.
func (c *Client) TorrentPeers(ctx context.Context, hash string, rid int64) (*PeersData, error) {
	if err := c.checkVar(OpTorrentPeers, "hash", hash, tagHash); err != nil {
		return nil, err
	}
	if err := c.checkVar(OpTorrentPeers, "rid", rid, "gte=0"); err != nil {
		return nil, err
	}
	params := request.NewParams().Set("hash", hash).SetInt("rid", rid)

	var data PeersData
	if err := c.do(ctx, OpTorrentPeers, params, &data); err != nil {
		return nil, annotate(err, hash)
	}
	return &data, nil
}
