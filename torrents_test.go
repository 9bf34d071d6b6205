package qbt

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const torrentListBody = `[{
	"hash": "c9e15763f722f23e98a29decdfae341b98d53056",
	"name": "Cosmos Laundromat",
	"state": "stalledUP",
	"progress": 1,
	"size": 220135424,
	"category": "movies",
	"tags": "blender, open-movie",
	"f_l_piece_prio": true,
	"ratio": 1.25,
	"magnet_uri": "magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056&dn=Cosmos+Laundromat"
}]`

func TestTorrents(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/info", http.StatusOK, torrentListBody)
	client := f.loggedInClient()

	torrents, err := client.Torrents(context.Background(), TorrentListOptions{
		Filter:  FilterSeeding,
		Sort:    SortRatio,
		Reverse: Bool(true),
		Limit:   Int64(10),
		Hashes:  []string{"abc", "def"},
	})
	require.NoError(t, err)
	require.Len(t, torrents, 1)

	tor := torrents[0]
	assert.Equal(t, "Cosmos Laundromat", tor.Name)
	assert.Equal(t, "stalledUP", tor.State)
	assert.True(t, tor.FLPiecePrio)
	assert.InDelta(t, 1.25, tor.Ratio, 1e-9)
	assert.Equal(t, []string{"blender", "open-movie"}, tor.TagList())

	req := f.last("torrents/info")
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "seeding", req.Query.Get("filter"))
	assert.Equal(t, "ratio", req.Query.Get("sort"))
	assert.Equal(t, "true", req.Query.Get("reverse"))
	assert.Equal(t, "10", req.Query.Get("limit"))
	assert.Equal(t, "abc|def", req.Query.Get("hashes"))
	assert.NotContains(t, req.Query, "offset")
	assert.NotContains(t, req.Query, "category")
}

func TestTorrentsEmptyCategoryIsSent(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/info", http.StatusOK, `[]`)
	client := f.loggedInClient()

	_, err := client.Torrents(context.Background(), TorrentListOptions{Category: String("")})
	require.NoError(t, err)

	req := f.last("torrents/info")
	require.Contains(t, req.Query, "category")
	assert.Equal(t, "", req.Query.Get("category"))
}

func TestTorrentsValidation(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	sent := f.requestCount()

	_, err := client.Torrents(context.Background(), TorrentListOptions{Limit: Int64(-1)})
	ce := requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "Limit", ce.Param)

	_, err = client.Torrents(context.Background(), TorrentListOptions{Hashes: []string{"a|b"}})
	requireCode(t, err, ErrorCodeInvalidParameters)

	assert.Equal(t, sent, f.requestCount())
}

func TestTorrent(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/info", http.StatusOK, torrentListBody)
	client := f.loggedInClient()

	tor, err := client.Torrent(context.Background(), "c9e15763f722f23e98a29decdfae341b98d53056")
	require.NoError(t, err)
	assert.Equal(t, "Cosmos Laundromat", tor.Name)
	assert.Equal(t, "c9e15763f722f23e98a29decdfae341b98d53056", f.last("torrents/info").Query.Get("hashes"))

	m, err := tor.Magnet()
	require.NoError(t, err)
	assert.Equal(t, tor.Hash, m.Hash)
}

func TestTorrentNotFound(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/info", http.StatusOK, `[]`)
	client := f.loggedInClient()

	_, err := client.Torrent(context.Background(), "deadbeef")
	ce := requireCode(t, err, ErrorCodeNotFound)
	assert.Equal(t, "deadbeef", ce.Param)
	assert.Equal(t, OpTorrents, ce.Op)
}

func TestTorrentRejectsAllHashes(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	sent := f.requestCount()

	_, err := client.Torrent(context.Background(), AllHashes)
	requireCode(t, err, ErrorCodeInvalidParameters)

	_, err = client.Torrent(context.Background(), "")
	requireCode(t, err, ErrorCodeInvalidParameters)

	assert.Equal(t, sent, f.requestCount())
}

func TestTorrentDetails(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/properties", http.StatusOK, `{"save_path":"/downloads","piece_size":4194304,"share_ratio":0.5,"isPrivate":true}`)
	f.reply("torrents/trackers", http.StatusOK, `[{"url":"** [DHT] **","status":2,"tier":-1},{"url":"http://t.example/announce","status":2,"tier":0,"num_peers":12,"msg":""}]`)
	f.reply("torrents/webseeds", http.StatusOK, `[{"url":"http://mirror.example/file.iso"}]`)
	f.reply("torrents/files", http.StatusOK, `[{"index":0,"name":"demo/a.iso","size":42,"priority":6,"piece_range":[0,3]},{"index":3,"name":"demo/b.nfo","size":1,"priority":0}]`)
	f.reply("torrents/pieceStates", http.StatusOK, `[2,2,1,0]`)
	f.reply("torrents/pieceHashes", http.StatusOK, `["aa","bb"]`)
	client := f.loggedInClient()
	ctx := context.Background()

	props, err := client.TorrentProperties(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "/downloads", props.SavePath)
	assert.Equal(t, int64(4194304), props.PieceSize)
	assert.True(t, props.Private)
	assert.Equal(t, "abc", f.last("torrents/properties").Query.Get("hash"))

	trackers, err := client.TorrentTrackers(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, trackers, 2)
	assert.Equal(t, -1, trackers[0].Tier)
	assert.Equal(t, int64(12), trackers[1].NumPeers)

	seeds, err := client.TorrentWebSeeds(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []WebSeed{{URL: "http://mirror.example/file.iso"}}, seeds)

	files, err := client.TorrentFiles(ctx, "abc", []int{0, 3})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, PriorityHigh, files[0].Priority)
	assert.Equal(t, []int64{0, 3}, files[0].PieceRange)
	assert.Equal(t, PriorityDoNotDownload, files[1].Priority)
	assert.Equal(t, "0|3", f.last("torrents/files").Query.Get("indexes"))

	states, err := client.TorrentPieceStates(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []PieceState{PieceDownloaded, PieceDownloaded, PieceDownloading, PieceNotDownloaded}, states)

	hashes, err := client.TorrentPieceHashes(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "bb"}, hashes)
}

func TestTorrentFilesWithoutIndexes(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/files", http.StatusOK, `[]`)
	client := f.loggedInClient()

	_, err := client.TorrentFiles(context.Background(), "abc", nil)
	require.NoError(t, err)
	assert.NotContains(t, f.last("torrents/files").Query, "indexes")

	_, err = client.TorrentFiles(context.Background(), "abc", []int{-1})
	requireCode(t, err, ErrorCodeInvalidParameters)
}

func TestLifecycleOperations(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	ctx := context.Background()
	hashes := []string{"abc", "def"}

	calls := []struct {
		path string
		run  func() error
	}{
		{"torrents/stop", func() error { return client.StopTorrents(ctx, hashes) }},
		{"torrents/start", func() error { return client.StartTorrents(ctx, hashes) }},
		{"torrents/recheck", func() error { return client.RecheckTorrents(ctx, hashes) }},
		{"torrents/reannounce", func() error { return client.ReannounceTorrents(ctx, hashes) }},
		{"torrents/increasePrio", func() error { return client.IncreasePriority(ctx, hashes) }},
		{"torrents/decreasePrio", func() error { return client.DecreasePriority(ctx, hashes) }},
		{"torrents/topPrio", func() error { return client.TopPriority(ctx, hashes) }},
		{"torrents/bottomPrio", func() error { return client.BottomPriority(ctx, hashes) }},
		{"torrents/toggleSequentialDownload", func() error { return client.ToggleSequentialDownload(ctx, hashes) }},
		{"torrents/toggleFirstLastPiecePrio", func() error { return client.ToggleFirstLastPiecePriority(ctx, hashes) }},
	}

	for _, c := range calls {
		t.Run(c.path, func(t *testing.T) {
			require.NoError(t, c.run())
			req := f.last(c.path)
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "abc|def", req.Form.Get("hashes"))
			assert.Equal(t, "sid-1", req.Cookie)
		})
	}
}

func TestDeleteTorrents(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()

	require.NoError(t, client.DeleteTorrents(context.Background(), []string{AllHashes}, false))
	req := f.last("torrents/delete")
	assert.Equal(t, "all", req.Form.Get("hashes"))
	assert.Equal(t, "false", req.Form.Get("deleteFiles"))

	require.NoError(t, client.DeleteTorrents(context.Background(), []string{"abc"}, true))
	assert.Equal(t, "true", f.last("torrents/delete").Form.Get("deleteFiles"))
}

func TestHashListValidation(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	sent := f.requestCount()
	ctx := context.Background()

	for name, hashes := range map[string][]string{
		"nil":        nil,
		"empty":      {},
		"blank hash": {"abc", ""},
		"separator":  {"abc|def"},
	} {
		t.Run(name, func(t *testing.T) {
			err := client.StopTorrents(ctx, hashes)
			ce := requireCode(t, err, ErrorCodeInvalidParameters)
			assert.Equal(t, "hashes", ce.Param)
			assert.Equal(t, OpStopTorrents, ce.Op)
		})
	}
	assert.Equal(t, sent, f.requestCount())
}

func TestAddTorrentMultipart(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/add", http.StatusOK, "Ok.")
	client := f.loggedInClient()

	tf, err := NewTorrentFile("", []byte(demoTorrent))
	require.NoError(t, err)

	err = client.AddTorrent(context.Background(), AddTorrentOptions{
		URLs:          []string{"magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056", "http://example.com/b.torrent"},
		Files:         []*TorrentFile{tf},
		SavePath:      String("/downloads"),
		Tags:          []string{"linux", "iso"},
		Stopped:       Bool(true),
		ContentLayout: LayoutSubfolder,
		RatioLimit:    Float64(1.5),
		DlLimit:       Int64(-1),
	})
	require.NoError(t, err)

	req := f.last("torrents/add")
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Contains(t, req.ContentType, "multipart/form-data")
	assert.Equal(t, "magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056\nhttp://example.com/b.torrent", req.Form.Get("urls"))
	assert.Equal(t, "/downloads", req.Form.Get("savepath"))
	assert.Equal(t, "linux,iso", req.Form.Get("tags"))
	assert.Equal(t, "true", req.Form.Get("stopped"))
	assert.Equal(t, "true", req.Form.Get("paused"))
	assert.Equal(t, "Subfolder", req.Form.Get("contentLayout"))
	assert.Equal(t, "1.5", req.Form.Get("ratioLimit"))
	assert.Equal(t, "-1", req.Form.Get("dlLimit"))

	// unset options never reach the wire
	for _, absent := range []string{"category", "skip_checking", "rename", "upLimit", "autoTMM", "sequentialDownload"} {
		assert.NotContains(t, req.Form, absent)
	}

	assert.Equal(t, []byte(demoTorrent), req.Files["torrents"])
	assert.Equal(t, "demo.iso.torrent", req.FileNames["torrents"])
}

func TestAddTorrentFails(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/add", http.StatusOK, "Fails.")
	client := f.loggedInClient()

	err := client.AddTorrent(context.Background(), AddTorrentOptions{URLs: []string{"http://example.com/a.torrent"}})
	ce := requireCode(t, err, ErrorCodeConflict)
	assert.Equal(t, OpAddTorrent, ce.Op)
}

func TestAddTorrentUnsupportedMediaType(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/add", http.StatusUnsupportedMediaType, "")
	client := f.loggedInClient()

	err := client.AddTorrent(context.Background(), AddTorrentOptions{URLs: []string{"http://example.com/a.torrent"}})
	ce := requireCode(t, err, ErrorCodeDecodeError)
	assert.Equal(t, http.StatusUnsupportedMediaType, ce.StatusCode)
}

func TestAddTorrentValidation(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	sent := f.requestCount()
	ctx := context.Background()

	tests := []struct {
		name string
		opts AddTorrentOptions
	}{
		{"nothing to add", AddTorrentOptions{}},
		{"empty lists", AddTorrentOptions{URLs: []string{}, Files: []*TorrentFile{}}},
		{"blank url", AddTorrentOptions{URLs: []string{""}}},
		{"nil file", AddTorrentOptions{Files: []*TorrentFile{nil}}},
		{"url with newline", AddTorrentOptions{URLs: []string{"http://a.example/x\nhttp://b.example/y"}}},
		{"magnet without hash", AddTorrentOptions{URLs: []string{"magnet:?dn=nothing"}}},
		{"tag with comma", AddTorrentOptions{URLs: []string{"http://a.example/x"}, Tags: []string{"a,b"}}},
		{"bad layout", AddTorrentOptions{URLs: []string{"http://a.example/x"}, ContentLayout: "Flat"}},
		{"bad ratio", AddTorrentOptions{URLs: []string{"http://a.example/x"}, RatioLimit: Float64(-3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.AddTorrent(ctx, tt.opts)
			requireCode(t, err, ErrorCodeInvalidParameters)
		})
	}
	assert.Equal(t, sent, f.requestCount())
}

func TestTrackerOperations(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	ctx := context.Background()

	require.NoError(t, client.AddTrackers(ctx, "abc", []string{"http://t1.example/announce", "udp://t2.example:80"}))
	req := f.last("torrents/addTrackers")
	assert.Equal(t, "abc", req.Form.Get("hash"))
	assert.Equal(t, "http://t1.example/announce\nudp://t2.example:80", req.Form.Get("urls"))

	require.NoError(t, client.EditTracker(ctx, "abc", "http://old.example", "http://new.example"))
	req = f.last("torrents/editTracker")
	assert.Equal(t, "http://old.example", req.Form.Get("origUrl"))
	assert.Equal(t, "http://new.example", req.Form.Get("newUrl"))

	require.NoError(t, client.RemoveTrackers(ctx, "abc", []string{"http://t1.example/announce", "udp://t2.example:80"}))
	assert.Equal(t, "http://t1.example/announce|udp://t2.example:80", f.last("torrents/removeTrackers").Form.Get("urls"))

	f.reply("torrents/editTracker", http.StatusConflict, "")
	err := client.EditTracker(ctx, "abc", "http://old.example", "http://t1.example/announce")
	ce := requireCode(t, err, ErrorCodeConflict)
	assert.Equal(t, "abc", ce.Param)

	err = client.EditTracker(ctx, "abc", "", "http://new.example")
	ce = requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "origUrl", ce.Param)
}

func TestAddPeers(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()

	require.NoError(t, client.AddPeers(context.Background(), []string{"abc"}, []string{"10.0.0.1:6881", "[::1]:6881"}))
	req := f.last("torrents/addPeers")
	assert.Equal(t, "abc", req.Form.Get("hashes"))
	assert.Equal(t, "10.0.0.1:6881|[::1]:6881", req.Form.Get("peers"))

	err := client.AddPeers(context.Background(), []string{"abc"}, nil)
	requireCode(t, err, ErrorCodeInvalidParameters)
}

func TestSetFilePriority(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()

	require.NoError(t, client.SetFilePriority(context.Background(), "abc", []int{0, 2}, PriorityHigh))
	req := f.last("torrents/filePrio")
	assert.Equal(t, "abc", req.Form.Get("hash"))
	assert.Equal(t, "0|2", req.Form.Get("id"))
	assert.Equal(t, "6", req.Form.Get("priority"))

	sent := f.requestCount()
	err := client.SetFilePriority(context.Background(), "abc", []int{0}, FilePriority(3))
	ce := requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "priority", ce.Param)

	err = client.SetFilePriority(context.Background(), "abc", nil, PriorityNormal)
	ce = requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "id", ce.Param)
	assert.Equal(t, sent, f.requestCount())
}

func TestTorrentLimits(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/downloadLimit", http.StatusOK, `{"abc":1024,"def":0}`)
	f.reply("torrents/uploadLimit", http.StatusOK, `{"abc":-1}`)
	client := f.loggedInClient()
	ctx := context.Background()

	down, err := client.TorrentDownloadLimits(ctx, []string{"abc", "def"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"abc": 1024, "def": 0}, down)
	assert.Equal(t, "abc|def", f.last("torrents/downloadLimit").Form.Get("hashes"))

	up, err := client.TorrentUploadLimits(ctx, []string{"abc"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"abc": -1}, up)

	require.NoError(t, client.SetTorrentDownloadLimit(ctx, []string{"abc"}, 2048))
	assert.Equal(t, "2048", f.last("torrents/setDownloadLimit").Form.Get("limit"))

	require.NoError(t, client.SetTorrentUploadLimit(ctx, []string{"abc"}, -1))
	assert.Equal(t, "-1", f.last("torrents/setUploadLimit").Form.Get("limit"))

	err = client.SetTorrentUploadLimit(ctx, []string{"abc"}, -5)
	ce := requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "limit", ce.Param)
}

func TestSetShareLimits(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()

	err := client.SetShareLimits(context.Background(), []string{"abc"}, ShareLimits{
		RatioLimit:               1.5,
		SeedingTimeLimit:         -2,
		InactiveSeedingTimeLimit: -1,
	})
	require.NoError(t, err)

	req := f.last("torrents/setShareLimits")
	assert.Equal(t, "1.5", req.Form.Get("ratioLimit"))
	assert.Equal(t, "-2", req.Form.Get("seedingTimeLimit"))
	assert.Equal(t, "-1", req.Form.Get("inactiveSeedingTimeLimit"))

	err = client.SetShareLimits(context.Background(), []string{"abc"}, ShareLimits{RatioLimit: -3})
	requireCode(t, err, ErrorCodeInvalidParameters)
}

func TestTorrentSettings(t *testing.T) {
	f := newFakeQBittorrent(t)
	client := f.loggedInClient()
	ctx := context.Background()

	require.NoError(t, client.SetLocation(ctx, []string{"abc"}, "/data/done"))
	assert.Equal(t, "/data/done", f.last("torrents/setLocation").Form.Get("location"))

	require.NoError(t, client.RenameTorrent(ctx, "abc", "New Name"))
	req := f.last("torrents/rename")
	assert.Equal(t, "abc", req.Form.Get("hash"))
	assert.Equal(t, "New Name", req.Form.Get("name"))

	require.NoError(t, client.RenameFile(ctx, "abc", "demo/a.iso", "demo/b.iso"))
	req = f.last("torrents/renameFile")
	assert.Equal(t, "demo/a.iso", req.Form.Get("oldPath"))
	assert.Equal(t, "demo/b.iso", req.Form.Get("newPath"))

	require.NoError(t, client.RenameFolder(ctx, "abc", "demo", "demo2"))
	assert.Equal(t, "demo2", f.last("torrents/renameFolder").Form.Get("newPath"))

	require.NoError(t, client.SetAutoManagement(ctx, []string{"abc"}, true))
	assert.Equal(t, "true", f.last("torrents/setAutoManagement").Form.Get("enable"))

	require.NoError(t, client.SetForceStart(ctx, []string{"abc"}, false))
	assert.Equal(t, "false", f.last("torrents/setForceStart").Form.Get("value"))

	require.NoError(t, client.SetSuperSeeding(ctx, []string{AllHashes}, true))
	req = f.last("torrents/setSuperSeeding")
	assert.Equal(t, "all", req.Form.Get("hashes"))
	assert.Equal(t, "true", req.Form.Get("value"))
}

func TestTorrentSettingsErrors(t *testing.T) {
	f := newFakeQBittorrent(t)
	f.reply("torrents/setLocation", http.StatusConflict, "Cannot write to directory")
	f.reply("torrents/renameFile", http.StatusConflict, "")
	client := f.loggedInClient()
	ctx := context.Background()

	err := client.SetLocation(ctx, []string{"abc"}, "/readonly")
	ce := requireCode(t, err, ErrorCodeConflict)
	assert.Equal(t, "Cannot write to directory", ce.Body)

	err = client.RenameFile(ctx, "abc", "a", "b")
	requireCode(t, err, ErrorCodeConflict)

	err = client.SetLocation(ctx, []string{"abc"}, "")
	ce = requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "location", ce.Param)

	err = client.RenameFolder(ctx, "abc", "old", "")
	ce = requireCode(t, err, ErrorCodeInvalidParameters)
	assert.Equal(t, "newPath", ce.Param)
}
