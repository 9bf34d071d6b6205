package qbt

import (
	"context"

	"github.com/qbtkit/qbt/request"
)

// Categories returns all categories by name.
func (c *Client) Categories(ctx context.Context) (map[string]Category, error) {
	categories := map[string]Category{}
	if err := c.do(ctx, OpCategories, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SetCategory assigns category to torrents. An empty category clears it.
func (c *Client) SetCategory(ctx context.Context, hashes []string, category string) error {
	return c.onHashes(ctx, OpSetCategory, hashes, func(p *request.Params) {
		p.Set("category", category)
	})
}

// CreateCategory creates a category. An empty savePath uses the default.
func (c *Client) CreateCategory(ctx context.Context, name, savePath string) error {
	return c.writeCategory(ctx, OpCreateCategory, name, savePath)
}

// EditCategory changes the save path of an existing category.
func (c *Client) EditCategory(ctx context.Context, name, savePath string) error {
	return c.writeCategory(ctx, OpEditCategory, name, savePath)
}

func (c *Client) RemoveCategories(ctx context.Context, names []string) error {
	if err := c.checkVar(OpRemoveCategories, "categories", names, tagNames); err != nil {
		return err
	}
	params := request.NewParams().SetList("categories", "\n", names)
	return c.do(ctx, OpRemoveCategories, params, nil)
}

func (c *Client) writeCategory(ctx context.Context, op Operation, name, savePath string) error {
	if err := c.checkVar(op, "category", name, tagRequired); err != nil {
		return err
	}
	params := request.NewParams().
		Set("category", name).
		Set("savePath", savePath)
	return annotate(c.do(ctx, op, params, nil), name)
}
