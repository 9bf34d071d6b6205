package qbt

import (
	"context"
	"strconv"
	"strings"

	"github.com/qbtkit/qbt/request"
)

// Torrents lists torrents matching opts.
func (c *Client) Torrents(ctx context.Context, opts TorrentListOptions) ([]Torrent, error) {
	if err := c.checkStruct(OpTorrents, opts); err != nil {
		return nil, err
	}
	params := request.NewParams().
		OptionalString("filter", string(opts.Filter)).
		OptionalStringPtr("category", opts.Category).
		OptionalStringPtr("tag", opts.Tag).
		OptionalString("sort", string(opts.Sort)).
		OptionalBool("reverse", opts.Reverse).
		OptionalInt("limit", opts.Limit).
		OptionalInt("offset", opts.Offset).
		OptionalList("hashes", "|", opts.Hashes)

	var torrents []Torrent
	if err := c.do(ctx, OpTorrents, params, &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// Torrent returns a single torrent, or a NOT_FOUND error when no torrent
// has that hash.
func (c *Client) Torrent(ctx context.Context, hash string) (*Torrent, error) {
	if err := c.checkVar(OpTorrents, "hash", hash, tagHash); err != nil {
		return nil, err
	}
	if hash == AllHashes {
		return nil, invalidParams(OpTorrents, "hash", "a single torrent hash is required")
	}
	torrents, err := c.Torrents(ctx, TorrentListOptions{Hashes: []string{hash}})
	if err != nil {
		return nil, annotate(err, hash)
	}
	if len(torrents) == 0 {
		e := newOpError(OpTorrents, ErrorCodeNotFound, "no torrent with this hash")
		e.Param = hash
		return nil, e
	}
	return &torrents[0], nil
}

func (c *Client) TorrentProperties(ctx context.Context, hash string) (*TorrentProperties, error) {
	var props TorrentProperties
	if err := c.byHash(ctx, OpTorrentProperties, hash, &props); err != nil {
		return nil, err
	}
	return &props, nil
}

func (c *Client) TorrentTrackers(ctx context.Context, hash string) ([]Tracker, error) {
	var trackers []Tracker
	if err := c.byHash(ctx, OpTorrentTrackers, hash, &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

func (c *Client) TorrentWebSeeds(ctx context.Context, hash string) ([]WebSeed, error) {
	var seeds []WebSeed
	if err := c.byHash(ctx, OpTorrentWebSeeds, hash, &seeds); err != nil {
		return nil, err
	}
	return seeds, nil
}

// TorrentFiles lists the files of a torrent. indexes restricts the result;
// nil returns every file.
func (c *Client) TorrentFiles(ctx context.Context, hash string, indexes []int) ([]TorrentContent, error) {
	if err := c.checkVar(OpTorrentFiles, "hash", hash, tagHash); err != nil {
		return nil, err
	}
	if err := c.checkVar(OpTorrentFiles, "indexes", indexes, "omitempty,dive,gte=0"); err != nil {
		return nil, err
	}
	params := request.NewParams().
		Set("hash", hash).
		OptionalList("indexes", "|", intsToStrings(indexes))

	var files []TorrentContent
	if err := c.do(ctx, OpTorrentFiles, params, &files); err != nil {
		return nil, annotate(err, hash)
	}
	return files, nil
}

func (c *Client) TorrentPieceStates(ctx context.Context, hash string) ([]PieceState, error) {
	var states []PieceState
	if err := c.byHash(ctx, OpTorrentPieceStates, hash, &states); err != nil {
		return nil, err
	}
	return states, nil
}

func (c *Client) TorrentPieceHashes(ctx context.Context, hash string) ([]string, error) {
	var hashes []string
	if err := c.byHash(ctx, OpTorrentPieceHashes, hash, &hashes); err != nil {
		return nil, err
	}
	return hashes, nil
}

func (c *Client) StopTorrents(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpStopTorrents, hashes, nil)
}

func (c *Client) StartTorrents(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpStartTorrents, hashes, nil)
}

// DeleteTorrents removes torrents, and their data when deleteFiles is set.
func (c *Client) DeleteTorrents(ctx context.Context, hashes []string, deleteFiles bool) error {
	return c.onHashes(ctx, OpDeleteTorrents, hashes, func(p *request.Params) {
		p.SetBool("deleteFiles", deleteFiles)
	})
}

func (c *Client) RecheckTorrents(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpRecheckTorrents, hashes, nil)
}

func (c *Client) ReannounceTorrents(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpReannounceTorrents, hashes, nil)
}

// AddTorrent adds torrents from URLs, magnet links or .torrent files in one
// request. A "Fails." answer is reported as CONFLICT.
func (c *Client) AddTorrent(ctx context.Context, opts AddTorrentOptions) error {
	if err := c.checkStruct(OpAddTorrent, opts); err != nil {
		return err
	}
	if len(opts.URLs) == 0 && len(opts.Files) == 0 {
		return invalidParams(OpAddTorrent, "urls", "at least one URL or torrent file is required")
	}
	for _, u := range opts.URLs {
		if strings.ContainsAny(u, "\r\n") {
			return invalidParams(OpAddTorrent, "urls", "URL contains a line break")
		}
		if isMagnet(u) {
			m, err := ParseMagnetLink(u)
			if err != nil || m.Hash == "" {
				e := invalidParams(OpAddTorrent, "urls", "magnet link has no info hash")
				e.Err = err
				return e
			}
		}
	}

	params := request.NewParams()
	for _, f := range opts.Files {
		params.AddFile("torrents", f.Filename, f.Data)
	}
	params.
		OptionalList("urls", "\n", opts.URLs).
		OptionalStringPtr("savepath", opts.SavePath).
		OptionalStringPtr("category", opts.Category).
		OptionalList("tags", ",", opts.Tags).
		OptionalBool("skip_checking", opts.SkipChecking).
		// stopped is the 5.x name, paused the 4.x one
		OptionalBool("stopped", opts.Stopped).
		OptionalBool("paused", opts.Stopped).
		OptionalString("contentLayout", string(opts.ContentLayout)).
		OptionalStringPtr("rename", opts.Rename).
		OptionalInt("upLimit", opts.UpLimit).
		OptionalInt("dlLimit", opts.DlLimit).
		OptionalFloat("ratioLimit", opts.RatioLimit).
		OptionalInt("seedingTimeLimit", opts.SeedingTimeLimit).
		OptionalBool("autoTMM", opts.AutoTMM).
		OptionalBool("sequentialDownload", opts.SequentialDownload).
		OptionalBool("firstLastPiecePrio", opts.FirstLastPiecePrio)

	var added bool
	if err := c.do(ctx, OpAddTorrent, params, &added); err != nil {
		return err
	}
	if !added {
		return newOpError(OpAddTorrent, ErrorCodeConflict, "server refused to add the torrent")
	}
	return nil
}

// AddTrackers adds tracker URLs to one torrent.
func (c *Client) AddTrackers(ctx context.Context, hash string, urls []string) error {
	if err := c.checkVar(OpAddTrackers, "urls", urls, tagNames); err != nil {
		return err
	}
	return c.onHash(ctx, OpAddTrackers, hash, func(p *request.Params) {
		p.SetList("urls", "\n", urls)
	})
}

// EditTracker replaces origURL with newURL. The server answers CONFLICT when
// newURL already exists and NOT_FOUND when origURL does not.
func (c *Client) EditTracker(ctx context.Context, hash, origURL, newURL string) error {
	if err := c.checkVar(OpEditTracker, "origUrl", origURL, tagRequired); err != nil {
		return err
	}
	if err := c.checkVar(OpEditTracker, "newUrl", newURL, tagRequired); err != nil {
		return err
	}
	return c.onHash(ctx, OpEditTracker, hash, func(p *request.Params) {
		p.Set("origUrl", origURL).Set("newUrl", newURL)
	})
}

func (c *Client) RemoveTrackers(ctx context.Context, hash string, urls []string) error {
	if err := c.checkVar(OpRemoveTrackers, "urls", urls, tagHashes); err != nil {
		return err
	}
	return c.onHash(ctx, OpRemoveTrackers, hash, func(p *request.Params) {
		p.SetList("urls", "|", urls)
	})
}

// AddPeers connects the torrents to peers given as "host:port".
func (c *Client) AddPeers(ctx context.Context, hashes, peers []string) error {
	if err := c.checkVar(OpAddPeers, "peers", peers, tagPeers); err != nil {
		return err
	}
	return c.onHashes(ctx, OpAddPeers, hashes, func(p *request.Params) {
		p.SetList("peers", "|", peers)
	})
}

// IncreasePriority moves torrents up the queue. Queueing must be enabled,
// otherwise the server answers CONFLICT.
func (c *Client) IncreasePriority(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpIncreasePriority, hashes, nil)
}

func (c *Client) DecreasePriority(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpDecreasePriority, hashes, nil)
}

func (c *Client) TopPriority(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpTopPriority, hashes, nil)
}

func (c *Client) BottomPriority(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpBottomPriority, hashes, nil)
}

// SetFilePriority sets the priority of the files with the given indexes.
func (c *Client) SetFilePriority(ctx context.Context, hash string, fileIDs []int, priority FilePriority) error {
	if err := c.checkVar(OpSetFilePriority, "id", fileIDs, tagFileIDs); err != nil {
		return err
	}
	if err := c.checkVar(OpSetFilePriority, "priority", int(priority), tagFilePriority); err != nil {
		return err
	}
	return c.onHash(ctx, OpSetFilePriority, hash, func(p *request.Params) {
		p.SetList("id", "|", intsToStrings(fileIDs)).SetInt("priority", int64(priority))
	})
}

// TorrentDownloadLimits returns the download limit of each torrent by hash.
func (c *Client) TorrentDownloadLimits(ctx context.Context, hashes []string) (map[string]int64, error) {
	return c.torrentLimits(ctx, OpTorrentDownloadLimits, hashes)
}

// SetTorrentDownloadLimit sets a per-torrent download limit in bytes/s.
func (c *Client) SetTorrentDownloadLimit(ctx context.Context, hashes []string, limit int64) error {
	return c.setTorrentLimit(ctx, OpSetTorrentDownloadLimit, hashes, limit)
}

func (c *Client) SetShareLimits(ctx context.Context, hashes []string, limits ShareLimits) error {
	if err := c.checkStruct(OpSetShareLimits, limits); err != nil {
		return err
	}
	return c.onHashes(ctx, OpSetShareLimits, hashes, func(p *request.Params) {
		p.SetFloat("ratioLimit", limits.RatioLimit).
			SetInt("seedingTimeLimit", limits.SeedingTimeLimit).
			SetInt("inactiveSeedingTimeLimit", limits.InactiveSeedingTimeLimit)
	})
}

// TorrentUploadLimits returns the upload limit of each torrent by hash.
func (c *Client) TorrentUploadLimits(ctx context.Context, hashes []string) (map[string]int64, error) {
	return c.torrentLimits(ctx, OpTorrentUploadLimits, hashes)
}

// SetTorrentUploadLimit sets a per-torrent upload limit in bytes/s.
func (c *Client) SetTorrentUploadLimit(ctx context.Context, hashes []string, limit int64) error {
	return c.setTorrentLimit(ctx, OpSetTorrentUploadLimit, hashes, limit)
}

// SetLocation moves torrent data. CONFLICT means the target is not writable.
func (c *Client) SetLocation(ctx context.Context, hashes []string, location string) error {
	if err := c.checkVar(OpSetLocation, "location", location, tagRequired); err != nil {
		return err
	}
	return c.onHashes(ctx, OpSetLocation, hashes, func(p *request.Params) {
		p.Set("location", location)
	})
}

// RenameTorrent changes the display name of a torrent.
func (c *Client) RenameTorrent(ctx context.Context, hash, name string) error {
	if err := c.checkVar(OpRenameTorrent, "name", name, tagRequired); err != nil {
		return err
	}
	return c.onHash(ctx, OpRenameTorrent, hash, func(p *request.Params) {
		p.Set("name", name)
	})
}

// RenameFile renames one file inside a torrent.
func (c *Client) RenameFile(ctx context.Context, hash, oldPath, newPath string) error {
	return c.renamePath(ctx, OpRenameFile, hash, oldPath, newPath)
}

// RenameFolder renames one folder inside a torrent.
func (c *Client) RenameFolder(ctx context.Context, hash, oldPath, newPath string) error {
	return c.renamePath(ctx, OpRenameFolder, hash, oldPath, newPath)
}

func (c *Client) SetAutoManagement(ctx context.Context, hashes []string, enable bool) error {
	return c.onHashes(ctx, OpSetAutoManagement, hashes, func(p *request.Params) {
		p.SetBool("enable", enable)
	})
}

func (c *Client) ToggleSequentialDownload(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpToggleSequentialDownload, hashes, nil)
}

func (c *Client) ToggleFirstLastPiecePriority(ctx context.Context, hashes []string) error {
	return c.onHashes(ctx, OpToggleFirstLastPiecePriority, hashes, nil)
}

func (c *Client) SetForceStart(ctx context.Context, hashes []string, value bool) error {
	return c.onHashes(ctx, OpSetForceStart, hashes, func(p *request.Params) {
		p.SetBool("value", value)
	})
}

func (c *Client) SetSuperSeeding(ctx context.Context, hashes []string, value bool) error {
	return c.onHashes(ctx, OpSetSuperSeeding, hashes, func(p *request.Params) {
		p.SetBool("value", value)
	})
}

// onHashes sends op for a hash list with optional extra fields.
func (c *Client) onHashes(ctx context.Context, op Operation, hashes []string, extra func(*request.Params)) error {
	if err := c.checkVar(op, "hashes", hashes, tagHashes); err != nil {
		return err
	}
	params := request.NewParams().SetList("hashes", "|", hashes)
	if extra != nil {
		extra(params)
	}
	return annotate(c.do(ctx, op, params, nil), strings.Join(hashes, "|"))
}

// onHash sends op for a single torrent with optional extra fields.
func (c *Client) onHash(ctx context.Context, op Operation, hash string, extra func(*request.Params)) error {
	if err := c.checkVar(op, "hash", hash, tagHash); err != nil {
		return err
	}
	params := request.NewParams().Set("hash", hash)
	if extra != nil {
		extra(params)
	}
	return annotate(c.do(ctx, op, params, nil), hash)
}

// byHash reads a single-torrent endpoint into out.
func (c *Client) byHash(ctx context.Context, op Operation, hash string, out any) error {
	if err := c.checkVar(op, "hash", hash, tagHash); err != nil {
		return err
	}
	return annotate(c.do(ctx, op, request.NewParams().Set("hash", hash), out), hash)
}

func (c *Client) torrentLimits(ctx context.Context, op Operation, hashes []string) (map[string]int64, error) {
	if err := c.checkVar(op, "hashes", hashes, tagHashes); err != nil {
		return nil, err
	}
	limits := map[string]int64{}
	params := request.NewParams().SetList("hashes", "|", hashes)
	if err := c.do(ctx, op, params, &limits); err != nil {
		return nil, annotate(err, strings.Join(hashes, "|"))
	}
	return limits, nil
}

func (c *Client) setTorrentLimit(ctx context.Context, op Operation, hashes []string, limit int64) error {
	if err := c.checkVar(op, "limit", limit, tagTorrentLimit); err != nil {
		return err
	}
	return c.onHashes(ctx, op, hashes, func(p *request.Params) {
		p.SetInt("limit", limit)
	})
}

func (c *Client) renamePath(ctx context.Context, op Operation, hash, oldPath, newPath string) error {
	if err := c.checkVar(op, "oldPath", oldPath, tagRequired); err != nil {
		return err
	}
	if err := c.checkVar(op, "newPath", newPath, tagRequired); err != nil {
		return err
	}
	return c.onHash(ctx, op, hash, func(p *request.Params) {
		p.Set("oldPath", oldPath).Set("newPath", newPath)
	})
}

func intsToStrings(values []int) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Itoa(v)
	}
	return out
}
