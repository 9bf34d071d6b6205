package qbt

import (
	"fmt"
	"strconv"
)

// AllHashes addresses every torrent wherever a hash list is accepted.
const AllHashes = "all"

// Bool returns a pointer to v, for optional fields.
func Bool(v bool) *bool { return &v }

// String returns a pointer to v, for optional fields.
func String(v string) *string { return &v }

// Int64 returns a pointer to v, for optional fields.
func Int64(v int64) *int64 { return &v }

// Float64 returns a pointer to v, for optional fields.
func Float64(v float64) *float64 { return &v }

// TorrentFilter narrows torrents/info by state.
type TorrentFilter string

const (
	FilterAll                TorrentFilter = "all"
	FilterDownloading        TorrentFilter = "downloading"
	FilterSeeding            TorrentFilter = "seeding"
	FilterCompleted          TorrentFilter = "completed"
	FilterStopped            TorrentFilter = "stopped"
	FilterActive             TorrentFilter = "active"
	FilterInactive           TorrentFilter = "inactive"
	FilterRunning            TorrentFilter = "running"
	FilterStalled            TorrentFilter = "stalled"
	FilterStalledUploading   TorrentFilter = "stalled_uploading"
	FilterStalledDownloading TorrentFilter = "stalled_downloading"
	FilterErrored            TorrentFilter = "errored"
)

func (f TorrentFilter) String() string { return string(f) }

// TorrentSort is the field torrents/info sorts by.
type TorrentSort string

const (
	SortAddedOn      TorrentSort = "added_on"
	SortCompletionOn TorrentSort = "completion_on"
	SortDlspeed      TorrentSort = "dlspeed"
	SortEta          TorrentSort = "eta"
	SortName         TorrentSort = "name"
	SortPriority     TorrentSort = "priority"
	SortProgress     TorrentSort = "progress"
	SortRatio        TorrentSort = "ratio"
	SortSize         TorrentSort = "size"
	SortState        TorrentSort = "state"
	SortUpspeed      TorrentSort = "upspeed"
)

func (s TorrentSort) String() string { return string(s) }

// FilePriority is the download priority of a single file.
type FilePriority int

const (
	PriorityDoNotDownload FilePriority = 0
	PriorityNormal        FilePriority = 1
	PriorityHigh          FilePriority = 6
	PriorityMaximal       FilePriority = 7
)

func (p FilePriority) String() string {
	switch p {
	case PriorityDoNotDownload:
		return "do-not-download"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityMaximal:
		return "maximal"
	default:
		return "priority(" + strconv.Itoa(int(p)) + ")"
	}
}

// LogType is the severity bit of a main log entry.
type LogType int

const (
	LogNormal   LogType = 1
	LogInfo     LogType = 2
	LogWarning  LogType = 4
	LogCritical LogType = 8
)

func (t LogType) String() string {
	switch t {
	case LogNormal:
		return "normal"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogCritical:
		return "critical"
	default:
		return fmt.Sprintf("log(%d)", int(t))
	}
}

// ContentLayout controls the folder layout of added torrents.
type ContentLayout string

const (
	LayoutOriginal    ContentLayout = "Original"
	LayoutSubfolder   ContentLayout = "Subfolder"
	LayoutNoSubfolder ContentLayout = "NoSubfolder"
)

func (l ContentLayout) String() string { return string(l) }

// DirMode selects what app/getDirectoryContent lists.
type DirMode string

const (
	DirModeDirs  DirMode = "dirs"
	DirModeFiles DirMode = "files"
	DirModeAll   DirMode = "all"
)

func (m DirMode) String() string { return string(m) }

// TorrentFormat is the metainfo version a created torrent uses.
type TorrentFormat string

const (
	FormatV1     TorrentFormat = "v1"
	FormatV2     TorrentFormat = "v2"
	FormatHybrid TorrentFormat = "hybrid"
)

func (f TorrentFormat) String() string { return string(f) }

// ConnectionStatus is the daemon's view of its connectivity.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusFirewalled   ConnectionStatus = "firewalled"
	StatusDisconnected ConnectionStatus = "disconnected"
)

func (s ConnectionStatus) String() string { return string(s) }

// PieceState is the state of one piece in torrents/pieceStates.
type PieceState int

const (
	PieceNotDownloaded PieceState = 0
	PieceDownloading   PieceState = 1
	PieceDownloaded    PieceState = 2
)

// TorrentListOptions filters torrents/info. Nil and empty fields are not sent.
type TorrentListOptions struct {
	Filter   TorrentFilter
	Category *string
	Tag      *string
	Sort     TorrentSort
	Reverse  *bool
	Limit    *int64 `validate:"omitnil,gte=0"`
	Offset   *int64
	Hashes   []string `validate:"omitempty,dive,required,excludesall=0x7C"`
}

// MainLogOptions selects the main log severities. Nil flags keep the
// server default of true.
type MainLogOptions struct {
	Normal      *bool
	Info        *bool
	Warning     *bool
	Critical    *bool
	LastKnownID *int64
}

// AddTorrentOptions describes torrents/add. At least one URL or file is
// required. Only set fields are sent.
type AddTorrentOptions struct {
	URLs               []string       `validate:"dive,required"`
	Files              []*TorrentFile `validate:"dive,required"`
	SavePath           *string
	Category           *string
	Tags               []string `validate:"dive,required,excludesall=0x2C"`
	SkipChecking       *bool
	Stopped            *bool
	ContentLayout      ContentLayout `validate:"omitempty,oneof=Original Subfolder NoSubfolder"`
	Rename             *string
	UpLimit            *int64   `validate:"omitnil,gte=-1"`
	DlLimit            *int64   `validate:"omitnil,gte=-1"`
	RatioLimit         *float64 `validate:"omitnil,gte=-2"`
	SeedingTimeLimit   *int64   `validate:"omitnil,gte=-2"`
	AutoTMM            *bool
	SequentialDownload *bool
	FirstLastPiecePrio *bool
}

// ShareLimits are the seeding limits of torrents/setShareLimits. -2 means
// the global limit and -1 means no limit.
type ShareLimits struct {
	RatioLimit               float64 `validate:"gte=-2"`
	SeedingTimeLimit         int64   `validate:"gte=-2"`
	InactiveSeedingTimeLimit int64   `validate:"gte=-2"`
}

// TorrentCreatorOptions describes torrentcreator/addTask. SourcePath is a
// file or directory on the server host. Only set fields are sent.
type TorrentCreatorOptions struct {
	SourcePath string `validate:"required"`
	// TorrentFilePath is where the server writes the .torrent file.
	TorrentFilePath *string
	Format          TorrentFormat `validate:"omitempty,oneof=v1 v2 hybrid"`
	// PieceSize is in bytes; 0 lets the server choose.
	PieceSize         *int64 `validate:"omitnil,gte=0"`
	OptimizeAlignment *bool
	// PaddedFileSizeLimit is in bytes; -1 disables it.
	PaddedFileSizeLimit *int64 `validate:"omitnil,gte=-1"`
	Private             *bool
	StartSeeding        *bool
	Comment             *string
	Source              *string
	Trackers            []string `validate:"dive,required,excludesall=0x7C"`
	URLSeeds            []string `validate:"dive,required,excludesall=0x7C"`
}
