package qbt

import (
	"context"
	"strings"

	"github.com/qbtkit/qbt/request"
)

// tagList rejects empty tags and commas, the server's tag separator.
const tagList = "required,min=1,dive,required,excludesall=0x2C"

func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.do(ctx, OpTags, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// AddTags tags torrents, creating missing tags.
func (c *Client) AddTags(ctx context.Context, hashes, tags []string) error {
	if err := c.checkVar(OpAddTags, "tags", tags, tagList); err != nil {
		return err
	}
	return c.onHashes(ctx, OpAddTags, hashes, func(p *request.Params) {
		p.SetList("tags", ",", tags)
	})
}

// RemoveTags untags torrents. The tags themselves are kept.
func (c *Client) RemoveTags(ctx context.Context, hashes, tags []string) error {
	if err := c.checkVar(OpRemoveTags, "tags", tags, tagList); err != nil {
		return err
	}
	return c.onHashes(ctx, OpRemoveTags, hashes, func(p *request.Params) {
		p.SetList("tags", ",", tags)
	})
}

func (c *Client) CreateTags(ctx context.Context, tags []string) error {
	return c.globalTags(ctx, OpCreateTags, tags)
}

// DeleteTags deletes tags and removes them from every torrent.
func (c *Client) DeleteTags(ctx context.Context, tags []string) error {
	return c.globalTags(ctx, OpDeleteTags, tags)
}

func (c *Client) globalTags(ctx context.Context, op Operation, tags []string) error {
	if err := c.checkVar(op, "tags", tags, tagList); err != nil {
		return err
	}
	err := c.do(ctx, op, request.NewParams().SetList("tags", ",", tags), nil)
	return annotate(err, strings.Join(tags, ","))
}
