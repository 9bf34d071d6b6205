package qbt

import (
	"context"

	"github.com/qbtkit/qbt/request"
)

// Version returns the application version, e.g. "v5.0.0".
func (c *Client) Version(ctx context.Context) (string, error) {
	var v string
	if err := c.do(ctx, OpVersion, nil, &v); err != nil {
		return "", err
	}
	return v, nil
}

// WebAPIVersion returns the WebUI API version, e.g. "2.11.2".
func (c *Client) WebAPIVersion(ctx context.Context) (string, error) {
	var v string
	if err := c.do(ctx, OpWebAPIVersion, nil, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (c *Client) BuildInfo(ctx context.Context) (*BuildInfo, error) {
	var info BuildInfo
	if err := c.do(ctx, OpBuildInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Shutdown stops the remote application. The session is useless afterwards.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.do(ctx, OpShutdown, nil, nil)
}

// Preferences returns the application settings.
func (c *Client) Preferences(ctx context.Context) (*Preferences, error) {
	var raw map[string]any
	if err := c.do(ctx, OpPreferences, nil, &raw); err != nil {
		return nil, err
	}
	prefs, err := preferencesFromMap(raw)
	if err != nil {
		e := newOpError(OpPreferences, ErrorCodeDecodeError, "preferences do not match the expected types")
		e.Err = err
		return nil, e
	}
	return prefs, nil
}

// SetPreferences changes the given settings; keys absent from changes keep
// their current value.
func (c *Client) SetPreferences(ctx context.Context, changes map[string]any) error {
	if err := c.checkVar(OpSetPreferences, "changes", changes, "required,min=1"); err != nil {
		return err
	}
	payload, err := json.Marshal(changes)
	if err != nil {
		e := invalidParams(OpSetPreferences, "changes", "changes cannot be encoded as JSON")
		e.Err = err
		return e
	}
	return c.do(ctx, OpSetPreferences, request.NewParams().Set("json", string(payload)), nil)
}

// DefaultSavePath returns the default download directory.
func (c *Client) DefaultSavePath(ctx context.Context) (string, error) {
	var path string
	if err := c.do(ctx, OpDefaultSavePath, nil, &path); err != nil {
		return "", err
	}
	return path, nil
}

// DirectoryContents lists a directory on the server host. An empty mode
// lets the server pick its default.
func (c *Client) DirectoryContents(ctx context.Context, dirPath string, mode DirMode) ([]string, error) {
	if err := c.checkVar(OpDirectoryContents, "dirPath", dirPath, tagRequired); err != nil {
		return nil, err
	}
	if err := c.checkVar(OpDirectoryContents, "mode", string(mode), tagDirectoryMode); err != nil {
		return nil, err
	}
	params := request.NewParams().
		Set("dirPath", dirPath).
		OptionalString("mode", string(mode))

	var entries []string
	if err := c.do(ctx, OpDirectoryContents, params, &entries); err != nil {
		return nil, annotate(err, dirPath)
	}
	return entries, nil
}
