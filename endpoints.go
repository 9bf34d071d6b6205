package qbt

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/qbtkit/qbt/request"
)

// Operation names one logical WebUI API action.
type Operation string

const (
	OpLogin  Operation = "auth.login"
	OpLogout Operation = "auth.logout"

	OpVersion           Operation = "app.version"
	OpWebAPIVersion     Operation = "app.webapiVersion"
	OpBuildInfo         Operation = "app.buildInfo"
	OpShutdown          Operation = "app.shutdown"
	OpPreferences       Operation = "app.preferences"
	OpSetPreferences    Operation = "app.setPreferences"
	OpDefaultSavePath   Operation = "app.defaultSavePath"
	OpDirectoryContents Operation = "app.getDirectoryContent"

	OpMainLog Operation = "log.main"
	OpPeerLog Operation = "log.peers"

	OpMainData     Operation = "sync.maindata"
	OpTorrentPeers Operation = "sync.torrentPeers"

	OpTransferInfo           Operation = "transfer.info"
	OpSpeedLimitsMode        Operation = "transfer.speedLimitsMode"
	OpToggleSpeedLimitsMode  Operation = "transfer.toggleSpeedLimitsMode"
	OpGlobalDownloadLimit    Operation = "transfer.downloadLimit"
	OpSetGlobalDownloadLimit Operation = "transfer.setDownloadLimit"
	OpGlobalUploadLimit      Operation = "transfer.uploadLimit"
	OpSetGlobalUploadLimit   Operation = "transfer.setUploadLimit"
	OpBanPeers               Operation = "transfer.banPeers"

	OpTorrents                     Operation = "torrents.info"
	OpTorrentProperties            Operation = "torrents.properties"
	OpTorrentTrackers              Operation = "torrents.trackers"
	OpTorrentWebSeeds              Operation = "torrents.webseeds"
	OpTorrentFiles                 Operation = "torrents.files"
	OpTorrentPieceStates           Operation = "torrents.pieceStates"
	OpTorrentPieceHashes           Operation = "torrents.pieceHashes"
	OpStopTorrents                 Operation = "torrents.stop"
	OpStartTorrents                Operation = "torrents.start"
	OpDeleteTorrents               Operation = "torrents.delete"
	OpRecheckTorrents              Operation = "torrents.recheck"
	OpReannounceTorrents           Operation = "torrents.reannounce"
	OpAddTorrent                   Operation = "torrents.add"
	OpAddTrackers                  Operation = "torrents.addTrackers"
	OpEditTracker                  Operation = "torrents.editTracker"
	OpRemoveTrackers               Operation = "torrents.removeTrackers"
	OpAddPeers                     Operation = "torrents.addPeers"
	OpIncreasePriority             Operation = "torrents.increasePrio"
	OpDecreasePriority             Operation = "torrents.decreasePrio"
	OpTopPriority                  Operation = "torrents.topPrio"
	OpBottomPriority               Operation = "torrents.bottomPrio"
	OpSetFilePriority              Operation = "torrents.filePrio"
	OpTorrentDownloadLimits        Operation = "torrents.downloadLimit"
	OpSetTorrentDownloadLimit      Operation = "torrents.setDownloadLimit"
	OpSetShareLimits               Operation = "torrents.setShareLimits"
	OpTorrentUploadLimits          Operation = "torrents.uploadLimit"
	OpSetTorrentUploadLimit        Operation = "torrents.setUploadLimit"
	OpSetLocation                  Operation = "torrents.setLocation"
	OpRenameTorrent                Operation = "torrents.rename"
	OpRenameFile                   Operation = "torrents.renameFile"
	OpRenameFolder                 Operation = "torrents.renameFolder"
	OpSetAutoManagement            Operation = "torrents.setAutoManagement"
	OpToggleSequentialDownload     Operation = "torrents.toggleSequentialDownload"
	OpToggleFirstLastPiecePriority Operation = "torrents.toggleFirstLastPiecePrio"
	OpSetForceStart                Operation = "torrents.setForceStart"
	OpSetSuperSeeding              Operation = "torrents.setSuperSeeding"

	OpCategories       Operation = "torrents.categories"
	OpSetCategory      Operation = "torrents.setCategory"
	OpCreateCategory   Operation = "torrents.createCategory"
	OpEditCategory     Operation = "torrents.editCategory"
	OpRemoveCategories Operation = "torrents.removeCategories"

	OpTags       Operation = "torrents.tags"
	OpAddTags    Operation = "torrents.addTags"
	OpRemoveTags Operation = "torrents.removeTags"
	OpCreateTags Operation = "torrents.createTags"
	OpDeleteTags Operation = "torrents.deleteTags"

	OpCreateTorrent Operation = "torrentcreator.addTask"
)

// ParamKind tells the request builder how a parameter travels.
type ParamKind int

const (
	ParamText ParamKind = iota
	ParamFile
)

// ParamSpec declares one parameter an endpoint accepts.
type ParamSpec struct {
	Name string
	Kind ParamKind
}

// Endpoint is the static HTTP description of one Operation.
type Endpoint struct {
	Op       Operation
	Method   string
	Path     string
	Encoding request.Encoding
	Params   []ParamSpec
	Result   Shape
}

func (e Endpoint) target() request.Target {
	return request.Target{Method: e.Method, Path: e.Path, Encoding: e.Encoding}
}

func (e Endpoint) param(name string) (ParamSpec, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// checkParams rejects fields the endpoint does not declare.
func (e Endpoint) checkParams(params *request.Params) error {
	for _, f := range params.Fields() {
		declared, ok := e.param(f.Name)
		if !ok {
			return fmt.Errorf("%s does not accept parameter %q", e.Op, f.Name)
		}
		if (declared.Kind == ParamFile) != (f.File != nil) {
			return fmt.Errorf("%s parameter %q has the wrong kind", e.Op, f.Name)
		}
	}
	return nil
}

const apiPrefix = "/api/v2/"

func textParams(names ...string) []ParamSpec {
	specs := make([]ParamSpec, len(names))
	for i, n := range names {
		specs[i] = ParamSpec{Name: n, Kind: ParamText}
	}
	return specs
}

func getOp(op Operation, path string, enc request.Encoding, result Shape, params ...ParamSpec) Endpoint {
	return Endpoint{Op: op, Method: http.MethodGet, Path: apiPrefix + path, Encoding: enc, Params: params, Result: result}
}

func postOp(op Operation, path string, enc request.Encoding, result Shape, params ...ParamSpec) Endpoint {
	return Endpoint{Op: op, Method: http.MethodPost, Path: apiPrefix + path, Encoding: enc, Params: params, Result: result}
}

const (
	encNone      = request.EncodingNone
	encQuery     = request.EncodingQuery
	encForm      = request.EncodingForm
	encMultipart = request.EncodingMultipart
)

var endpoints = []Endpoint{
	postOp(OpLogin, "auth/login", encForm, ShapeOkFails, textParams("username", "password")...),
	postOp(OpLogout, "auth/logout", encNone, ShapeUnit),

	getOp(OpVersion, "app/version", encNone, ShapeText),
	getOp(OpWebAPIVersion, "app/webapiVersion", encNone, ShapeText),
	getOp(OpBuildInfo, "app/buildInfo", encNone, ShapeObject),
	postOp(OpShutdown, "app/shutdown", encNone, ShapeUnit),
	getOp(OpPreferences, "app/preferences", encNone, ShapeObject),
	postOp(OpSetPreferences, "app/setPreferences", encForm, ShapeUnit, textParams("json")...),
	getOp(OpDefaultSavePath, "app/defaultSavePath", encNone, ShapeText),
	getOp(OpDirectoryContents, "app/getDirectoryContent", encQuery, ShapeArray, textParams("dirPath", "mode")...),

	getOp(OpMainLog, "log/main", encQuery, ShapeArray, textParams("normal", "info", "warning", "critical", "last_known_id")...),
	getOp(OpPeerLog, "log/peers", encQuery, ShapeArray, textParams("last_known_id")...),

	getOp(OpMainData, "sync/maindata", encQuery, ShapeObject, textParams("rid")...),
	getOp(OpTorrentPeers, "sync/torrentPeers", encQuery, ShapeObject, textParams("hash", "rid")...),

	getOp(OpTransferInfo, "transfer/info", encNone, ShapeObject),
	getOp(OpSpeedLimitsMode, "transfer/speedLimitsMode", encNone, ShapeNumber),
	postOp(OpToggleSpeedLimitsMode, "transfer/toggleSpeedLimitsMode", encNone, ShapeUnit),
	getOp(OpGlobalDownloadLimit, "transfer/downloadLimit", encNone, ShapeNumber),
	postOp(OpSetGlobalDownloadLimit, "transfer/setDownloadLimit", encForm, ShapeUnit, textParams("limit")...),
	getOp(OpGlobalUploadLimit, "transfer/uploadLimit", encNone, ShapeNumber),
	postOp(OpSetGlobalUploadLimit, "transfer/setUploadLimit", encForm, ShapeUnit, textParams("limit")...),
	postOp(OpBanPeers, "transfer/banPeers", encForm, ShapeUnit, textParams("peers")...),

	getOp(OpTorrents, "torrents/info", encQuery, ShapeArray,
		textParams("filter", "category", "tag", "sort", "reverse", "limit", "offset", "hashes")...),
	getOp(OpTorrentProperties, "torrents/properties", encQuery, ShapeObject, textParams("hash")...),
	getOp(OpTorrentTrackers, "torrents/trackers", encQuery, ShapeArray, textParams("hash")...),
	getOp(OpTorrentWebSeeds, "torrents/webseeds", encQuery, ShapeArray, textParams("hash")...),
	getOp(OpTorrentFiles, "torrents/files", encQuery, ShapeArray, textParams("hash", "indexes")...),
	getOp(OpTorrentPieceStates, "torrents/pieceStates", encQuery, ShapeArray, textParams("hash")...),
	getOp(OpTorrentPieceHashes, "torrents/pieceHashes", encQuery, ShapeArray, textParams("hash")...),
	postOp(OpStopTorrents, "torrents/stop", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpStartTorrents, "torrents/start", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpDeleteTorrents, "torrents/delete", encForm, ShapeUnit, textParams("hashes", "deleteFiles")...),
	postOp(OpRecheckTorrents, "torrents/recheck", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpReannounceTorrents, "torrents/reannounce", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpAddTorrent, "torrents/add", encMultipart, ShapeOkFails, append(
		[]ParamSpec{{Name: "torrents", Kind: ParamFile}},
		textParams("urls", "savepath", "category", "tags", "skip_checking", "stopped", "paused",
			"contentLayout", "rename", "upLimit", "dlLimit", "ratioLimit", "seedingTimeLimit",
			"autoTMM", "sequentialDownload", "firstLastPiecePrio")...)...),
	postOp(OpAddTrackers, "torrents/addTrackers", encForm, ShapeUnit, textParams("hash", "urls")...),
	postOp(OpEditTracker, "torrents/editTracker", encForm, ShapeUnit, textParams("hash", "origUrl", "newUrl")...),
	postOp(OpRemoveTrackers, "torrents/removeTrackers", encForm, ShapeUnit, textParams("hash", "urls")...),
	postOp(OpAddPeers, "torrents/addPeers", encForm, ShapeUnit, textParams("hashes", "peers")...),
	postOp(OpIncreasePriority, "torrents/increasePrio", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpDecreasePriority, "torrents/decreasePrio", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpTopPriority, "torrents/topPrio", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpBottomPriority, "torrents/bottomPrio", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpSetFilePriority, "torrents/filePrio", encForm, ShapeUnit, textParams("hash", "id", "priority")...),
	postOp(OpTorrentDownloadLimits, "torrents/downloadLimit", encForm, ShapeObject, textParams("hashes")...),
	postOp(OpSetTorrentDownloadLimit, "torrents/setDownloadLimit", encForm, ShapeUnit, textParams("hashes", "limit")...),
	postOp(OpSetShareLimits, "torrents/setShareLimits", encForm, ShapeUnit,
		textParams("hashes", "ratioLimit", "seedingTimeLimit", "inactiveSeedingTimeLimit")...),
	postOp(OpTorrentUploadLimits, "torrents/uploadLimit", encForm, ShapeObject, textParams("hashes")...),
	postOp(OpSetTorrentUploadLimit, "torrents/setUploadLimit", encForm, ShapeUnit, textParams("hashes", "limit")...),
	postOp(OpSetLocation, "torrents/setLocation", encForm, ShapeUnit, textParams("hashes", "location")...),
	postOp(OpRenameTorrent, "torrents/rename", encForm, ShapeUnit, textParams("hash", "name")...),
	postOp(OpRenameFile, "torrents/renameFile", encForm, ShapeUnit, textParams("hash", "oldPath", "newPath")...),
	postOp(OpRenameFolder, "torrents/renameFolder", encForm, ShapeUnit, textParams("hash", "oldPath", "newPath")...),
	postOp(OpSetAutoManagement, "torrents/setAutoManagement", encForm, ShapeUnit, textParams("hashes", "enable")...),
	postOp(OpToggleSequentialDownload, "torrents/toggleSequentialDownload", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpToggleFirstLastPiecePriority, "torrents/toggleFirstLastPiecePrio", encForm, ShapeUnit, textParams("hashes")...),
	postOp(OpSetForceStart, "torrents/setForceStart", encForm, ShapeUnit, textParams("hashes", "value")...),
	postOp(OpSetSuperSeeding, "torrents/setSuperSeeding", encForm, ShapeUnit, textParams("hashes", "value")...),

	getOp(OpCategories, "torrents/categories", encNone, ShapeObject),
	postOp(OpSetCategory, "torrents/setCategory", encForm, ShapeUnit, textParams("hashes", "category")...),
	postOp(OpCreateCategory, "torrents/createCategory", encForm, ShapeUnit, textParams("category", "savePath")...),
	postOp(OpEditCategory, "torrents/editCategory", encForm, ShapeUnit, textParams("category", "savePath")...),
	postOp(OpRemoveCategories, "torrents/removeCategories", encForm, ShapeUnit, textParams("categories")...),

	getOp(OpTags, "torrents/tags", encNone, ShapeArray),
	postOp(OpAddTags, "torrents/addTags", encForm, ShapeUnit, textParams("hashes", "tags")...),
	postOp(OpRemoveTags, "torrents/removeTags", encForm, ShapeUnit, textParams("hashes", "tags")...),
	postOp(OpCreateTags, "torrents/createTags", encForm, ShapeUnit, textParams("tags")...),
	postOp(OpDeleteTags, "torrents/deleteTags", encForm, ShapeUnit, textParams("tags")...),

	postOp(OpCreateTorrent, "torrentcreator/addTask", encForm, ShapeObject,
		textParams("sourcePath", "torrentFilePath", "format", "pieceSize", "optimizeAlignment",
			"paddedFileSizeLimit", "private", "startSeeding", "comment", "source", "trackers", "urlSeeds")...),
}

// supported lists every operation the client exposes.
var supported = []Operation{
	OpLogin, OpLogout,
	OpVersion, OpWebAPIVersion, OpBuildInfo, OpShutdown, OpPreferences, OpSetPreferences,
	OpDefaultSavePath, OpDirectoryContents,
	OpMainLog, OpPeerLog,
	OpMainData, OpTorrentPeers,
	OpTransferInfo, OpSpeedLimitsMode, OpToggleSpeedLimitsMode, OpGlobalDownloadLimit,
	OpSetGlobalDownloadLimit, OpGlobalUploadLimit, OpSetGlobalUploadLimit, OpBanPeers,
	OpTorrents, OpTorrentProperties, OpTorrentTrackers, OpTorrentWebSeeds, OpTorrentFiles,
	OpTorrentPieceStates, OpTorrentPieceHashes, OpStopTorrents, OpStartTorrents, OpDeleteTorrents,
	OpRecheckTorrents, OpReannounceTorrents, OpAddTorrent, OpAddTrackers, OpEditTracker,
	OpRemoveTrackers, OpAddPeers, OpIncreasePriority, OpDecreasePriority, OpTopPriority,
	OpBottomPriority, OpSetFilePriority, OpTorrentDownloadLimits, OpSetTorrentDownloadLimit,
	OpSetShareLimits, OpTorrentUploadLimits, OpSetTorrentUploadLimit, OpSetLocation,
	OpRenameTorrent, OpRenameFile, OpRenameFolder, OpSetAutoManagement,
	OpToggleSequentialDownload, OpToggleFirstLastPiecePriority, OpSetForceStart, OpSetSuperSeeding,
	OpCategories, OpSetCategory, OpCreateCategory, OpEditCategory, OpRemoveCategories,
	OpTags, OpAddTags, OpRemoveTags, OpCreateTags, OpDeleteTags,
	OpCreateTorrent,
}

var catalog map[Operation]Endpoint

func init() {
	c, err := buildCatalog(endpoints, supported)
	if err != nil {
		panic(fmt.Sprintf("qbt: invalid endpoint catalog: %v", err))
	}
	catalog = c
}

// buildCatalog indexes entries and checks that every operation in ops has
// exactly one well-formed entry.
func buildCatalog(entries []Endpoint, ops []Operation) (map[Operation]Endpoint, error) {
	c := make(map[Operation]Endpoint, len(entries))
	paths := make(map[string]Operation, len(entries))

	for _, e := range entries {
		if _, dup := c[e.Op]; dup {
			return nil, fmt.Errorf("duplicate entry for %s", e.Op)
		}
		if other, dup := paths[e.Path]; dup {
			return nil, fmt.Errorf("%s and %s share path %s", other, e.Op, e.Path)
		}
		if e.Method != http.MethodGet && e.Method != http.MethodPost {
			return nil, fmt.Errorf("%s: unsupported method %q", e.Op, e.Method)
		}
		if e.Encoding == request.EncodingNone && len(e.Params) > 0 {
			return nil, fmt.Errorf("%s: parameters declared without an encoding", e.Op)
		}
		if e.Encoding != request.EncodingNone && len(e.Params) == 0 {
			return nil, fmt.Errorf("%s: encoding %s without parameters", e.Op, e.Encoding)
		}

		names := make(map[string]bool, len(e.Params))
		for _, p := range e.Params {
			if names[p.Name] {
				return nil, fmt.Errorf("%s: duplicate parameter %q", e.Op, p.Name)
			}
			names[p.Name] = true
			if p.Kind == ParamFile && e.Encoding != request.EncodingMultipart {
				return nil, fmt.Errorf("%s: file parameter %q needs multipart encoding", e.Op, p.Name)
			}
		}

		c[e.Op] = e
		paths[e.Path] = e.Op
	}

	for _, op := range ops {
		if _, ok := c[op]; !ok {
			return nil, fmt.Errorf("no entry for %s", op)
		}
	}
	if len(c) != len(ops) {
		return nil, fmt.Errorf("catalog has %d entries for %d operations", len(c), len(ops))
	}
	return c, nil
}

// lookup returns the endpoint for op. A missing entry is a programming error.
func lookup(op Operation) Endpoint {
	e, ok := catalog[op]
	if !ok {
		panic(fmt.Sprintf("qbt: no endpoint for operation %s", op))
	}
	return e
}

// Operations returns every supported operation, sorted.
func Operations() []Operation {
	ops := make([]Operation, len(supported))
	copy(ops, supported)
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// EndpointFor returns a copy of the HTTP description of op. Changing it
// does not affect the client.
func EndpointFor(op Operation) (Endpoint, bool) {
	e, ok := catalog[op]
	if !ok {
		return Endpoint{}, false
	}
	e.Params = append([]ParamSpec(nil), e.Params...)
	return e, true
}
