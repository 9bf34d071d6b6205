package qbt

import (
	"context"

	"github.com/qbtkit/qbt/request"
)

// CreateTorrent queues the creation of a torrent from a path on the server
// host. The server builds the file in the background; the returned task
// names the job.
func (c *Client) CreateTorrent(ctx context.Context, opts TorrentCreatorOptions) (*TorrentCreatorTask, error) {
	if err := c.checkStruct(OpCreateTorrent, opts); err != nil {
		return nil, err
	}
	params := request.NewParams().
		Set("sourcePath", opts.SourcePath).
		OptionalStringPtr("torrentFilePath", opts.TorrentFilePath).
		OptionalString("format", string(opts.Format)).
		OptionalInt("pieceSize", opts.PieceSize).
		OptionalBool("optimizeAlignment", opts.OptimizeAlignment).
		OptionalInt("paddedFileSizeLimit", opts.PaddedFileSizeLimit).
		OptionalBool("private", opts.Private).
		OptionalBool("startSeeding", opts.StartSeeding).
		OptionalStringPtr("comment", opts.Comment).
		OptionalStringPtr("source", opts.Source).
		OptionalList("trackers", "|", opts.Trackers).
		OptionalList("urlSeeds", "|", opts.URLSeeds)

	var task TorrentCreatorTask
	if err := c.do(ctx, OpCreateTorrent, params, &task); err != nil {
		return nil, annotate(err, opts.SourcePath)
	}
	if task.TaskID == "" {
		return nil, newOpError(OpCreateTorrent, ErrorCodeDecodeError, "server did not return a task id")
	}
	return &task, nil
}
