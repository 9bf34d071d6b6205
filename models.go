package qbt

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// BuildInfo describes the libraries the remote daemon was built with.
type BuildInfo struct {
	Qt         string `json:"qt"`
	Libtorrent string `json:"libtorrent"`
	Boost      string `json:"boost"`
	OpenSSL    string `json:"openssl"`
	Zlib       string `json:"zlib"`
	Bitness    int    `json:"bitness"`
}

// Preferences is a typed view of the most used application settings. Raw
// keeps every key the server returned, including those without a field here.
type Preferences struct {
	Locale                    string  `json:"locale"`
	SavePath                  string  `json:"save_path"`
	TempPathEnabled           bool    `json:"temp_path_enabled"`
	TempPath                  string  `json:"temp_path"`
	AutoTMMEnabled            bool    `json:"auto_tmm_enabled"`
	TorrentContentLayout      string  `json:"torrent_content_layout"`
	AddStoppedEnabled         bool    `json:"add_stopped_enabled"`
	PreallocateAll            bool    `json:"preallocate_all"`
	IncompleteFilesExt        bool    `json:"incomplete_files_ext"`
	QueueingEnabled           bool    `json:"queueing_enabled"`
	MaxActiveDownloads        int     `json:"max_active_downloads"`
	MaxActiveUploads          int     `json:"max_active_uploads"`
	MaxActiveTorrents         int     `json:"max_active_torrents"`
	MaxActiveCheckingTorrents int     `json:"max_active_checking_torrents"`
	DlLimit                   int64   `json:"dl_limit"`
	UpLimit                   int64   `json:"up_limit"`
	AltDlLimit                int64   `json:"alt_dl_limit"`
	AltUpLimit                int64   `json:"alt_up_limit"`
	SchedulerEnabled          bool    `json:"scheduler_enabled"`
	MaxRatioEnabled           bool    `json:"max_ratio_enabled"`
	MaxRatio                  float64 `json:"max_ratio"`
	MaxSeedingTimeEnabled     bool    `json:"max_seeding_time_enabled"`
	MaxSeedingTime            int64   `json:"max_seeding_time"`
	ListenPort                int     `json:"listen_port"`
	UPnP                      bool    `json:"upnp"`
	DHT                       bool    `json:"dht"`
	PeX                       bool    `json:"pex"`
	LSD                       bool    `json:"lsd"`
	Encryption                int     `json:"encryption"`
	AnonymousMode             bool    `json:"anonymous_mode"`
	MaxConnec                 int     `json:"max_connec"`
	MaxConnecPerTorrent       int     `json:"max_connec_per_torrent"`
	MaxUploads                int     `json:"max_uploads"`
	MaxUploadsPerTorrent      int     `json:"max_uploads_per_torrent"`
	AddTrackersEnabled        bool    `json:"add_trackers_enabled"`
	AddTrackers               string  `json:"add_trackers"`
	WebUIAddress              string  `json:"web_ui_address"`
	WebUIPort                 int     `json:"web_ui_port"`
	WebUIUsername             string  `json:"web_ui_username"`
	BypassLocalAuth           bool    `json:"bypass_local_auth"`
	BypassAuthSubnetWhitelist string  `json:"bypass_auth_subnet_whitelist"`

	Raw map[string]any `json:"-"`
}

// preferencesFromMap fills a Preferences from the decoded JSON object.
func preferencesFromMap(raw map[string]any) (*Preferences, error) {
	prefs := &Preferences{Raw: raw}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           prefs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "building preferences decoder")
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "decoding preferences")
	}
	return prefs, nil
}

// LogEntry is one line of the main log.
type LogEntry struct {
	ID        int64   `json:"id"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp"`
	Type      LogType `json:"type"`
}

// PeerLogEntry is one line of the peer ban log.
type PeerLogEntry struct {
	ID        int64  `json:"id"`
	IP        string `json:"ip"`
	Timestamp int64  `json:"timestamp"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason"`
}

// MainData is one sync/maindata snapshot or delta relative to Rid.
type MainData struct {
	Rid               int64               `json:"rid"`
	FullUpdate        bool                `json:"full_update"`
	Torrents          map[string]Torrent  `json:"torrents"`
	TorrentsRemoved   []string            `json:"torrents_removed"`
	Categories        map[string]Category `json:"categories"`
	CategoriesRemoved []string            `json:"categories_removed"`
	Tags              []string            `json:"tags"`
	TagsRemoved       []string            `json:"tags_removed"`
	Trackers          map[string][]string `json:"trackers"`
	ServerState       *ServerState        `json:"server_state"`
}

// ServerState is the global section of MainData.
type ServerState struct {
	AlltimeDl            int64            `json:"alltime_dl"`
	AlltimeUl            int64            `json:"alltime_ul"`
	AverageTimeQueue     int64            `json:"average_time_queue"`
	ConnectionStatus     ConnectionStatus `json:"connection_status"`
	DHTNodes             int64            `json:"dht_nodes"`
	DlInfoData           int64            `json:"dl_info_data"`
	DlInfoSpeed          int64            `json:"dl_info_speed"`
	DlRateLimit          int64            `json:"dl_rate_limit"`
	FreeSpaceOnDisk      int64            `json:"free_space_on_disk"`
	GlobalRatio          string           `json:"global_ratio"`
	QueuedIOJobs         int64            `json:"queued_io_jobs"`
	Queueing             bool             `json:"queueing"`
	RefreshInterval      int64            `json:"refresh_interval"`
	TotalPeerConnections int64            `json:"total_peer_connections"`
	UpInfoData           int64            `json:"up_info_data"`
	UpInfoSpeed          int64            `json:"up_info_speed"`
	UpRateLimit          int64            `json:"up_rate_limit"`
	UseAltSpeedLimits    bool             `json:"use_alt_speed_limits"`
	UseSubcategories     bool             `json:"use_subcategories"`
}

// PeersData is one sync/torrentPeers snapshot or delta.
type PeersData struct {
	Rid          int64           `json:"rid"`
	FullUpdate   bool            `json:"full_update"`
	ShowFlags    bool            `json:"show_flags"`
	Peers        map[string]Peer `json:"peers"`
	PeersRemoved []string        `json:"peers_removed"`
}

// Peer is a connected peer, keyed by "ip:port" in PeersData.
type Peer struct {
	Client      string  `json:"client"`
	Connection  string  `json:"connection"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	DlSpeed     int64   `json:"dl_speed"`
	Downloaded  int64   `json:"downloaded"`
	Files       string  `json:"files"`
	Flags       string  `json:"flags"`
	FlagsDesc   string  `json:"flags_desc"`
	IP          string  `json:"ip"`
	PeerID      string  `json:"peer_id_client"`
	Port        int     `json:"port"`
	Progress    float64 `json:"progress"`
	Relevance   float64 `json:"relevance"`
	UpSpeed     int64   `json:"up_speed"`
	Uploaded    int64   `json:"uploaded"`
}

// TransferInfo represents global transfer information.
type TransferInfo struct {
	DlInfoSpeed      int64            `json:"dl_info_speed"`
	DlInfoData       int64            `json:"dl_info_data"`
	UpInfoSpeed      int64            `json:"up_info_speed"`
	UpInfoData       int64            `json:"up_info_data"`
	DlRateLimit      int64            `json:"dl_rate_limit"`
	UpRateLimit      int64            `json:"up_rate_limit"`
	DHTNodes         int64            `json:"dht_nodes"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
}

// Torrent is one entry of torrents/info.
type Torrent struct {
	AddedOn           int64   `json:"added_on"`
	AmountLeft        int64   `json:"amount_left"`
	AutoTMM           bool    `json:"auto_tmm"`
	Availability      float64 `json:"availability"`
	Category          string  `json:"category"`
	Completed         int64   `json:"completed"`
	CompletionOn      int64   `json:"completion_on"`
	ContentPath       string  `json:"content_path"`
	DlLimit           int64   `json:"dl_limit"`
	Dlspeed           int64   `json:"dlspeed"`
	Downloaded        int64   `json:"downloaded"`
	DownloadedSession int64   `json:"downloaded_session"`
	Eta               int64   `json:"eta"`
	FLPiecePrio       bool    `json:"f_l_piece_prio"`
	ForceStart        bool    `json:"force_start"`
	Hash              string  `json:"hash"`
	InfoHashV1        string  `json:"infohash_v1"`
	InfoHashV2        string  `json:"infohash_v2"`
	LastActivity      int64   `json:"last_activity"`
	MagnetURI         string  `json:"magnet_uri"`
	MaxRatio          float64 `json:"max_ratio"`
	MaxSeedingTime    int64   `json:"max_seeding_time"`
	Name              string  `json:"name"`
	NumComplete       int64   `json:"num_complete"`
	NumIncomplete     int64   `json:"num_incomplete"`
	NumLeechs         int64   `json:"num_leechs"`
	NumSeeds          int64   `json:"num_seeds"`
	Priority          int64   `json:"priority"`
	Progress          float64 `json:"progress"`
	Ratio             float64 `json:"ratio"`
	RatioLimit        float64 `json:"ratio_limit"`
	SavePath          string  `json:"save_path"`
	SeedingTime       int64   `json:"seeding_time"`
	SeedingTimeLimit  int64   `json:"seeding_time_limit"`
	SeqDl             bool    `json:"seq_dl"`
	Size              int64   `json:"size"`
	State             string  `json:"state"`
	SuperSeeding      bool    `json:"super_seeding"`
	Tags              string  `json:"tags"`
	TimeActive        int64   `json:"time_active"`
	TotalSize         int64   `json:"total_size"`
	Tracker           string  `json:"tracker"`
	UpLimit           int64   `json:"up_limit"`
	Uploaded          int64   `json:"uploaded"`
	UploadedSession   int64   `json:"uploaded_session"`
	Upspeed           int64   `json:"upspeed"`
}

// TagList splits the comma separated Tags field.
func (t Torrent) TagList() []string {
	if strings.TrimSpace(t.Tags) == "" {
		return nil
	}
	parts := strings.Split(t.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Magnet parses MagnetURI.
func (t Torrent) Magnet() (*MagnetLink, error) {
	return ParseMagnetLink(t.MagnetURI)
}

// TorrentProperties is the detail view of a single torrent.
type TorrentProperties struct {
	SavePath               string  `json:"save_path"`
	CreationDate           int64   `json:"creation_date"`
	PieceSize              int64   `json:"piece_size"`
	Comment                string  `json:"comment"`
	TotalWasted            int64   `json:"total_wasted"`
	TotalUploaded          int64   `json:"total_uploaded"`
	TotalUploadedSession   int64   `json:"total_uploaded_session"`
	TotalDownloaded        int64   `json:"total_downloaded"`
	TotalDownloadedSession int64   `json:"total_downloaded_session"`
	UpLimit                int64   `json:"up_limit"`
	DlLimit                int64   `json:"dl_limit"`
	TimeElapsed            int64   `json:"time_elapsed"`
	SeedingTime            int64   `json:"seeding_time"`
	NbConnections          int64   `json:"nb_connections"`
	NbConnectionsLimit     int64   `json:"nb_connections_limit"`
	ShareRatio             float64 `json:"share_ratio"`
	AdditionDate           int64   `json:"addition_date"`
	CompletionDate         int64   `json:"completion_date"`
	CreatedBy              string  `json:"created_by"`
	DlSpeedAvg             int64   `json:"dl_speed_avg"`
	DlSpeed                int64   `json:"dl_speed"`
	Eta                    int64   `json:"eta"`
	LastSeen               int64   `json:"last_seen"`
	Peers                  int64   `json:"peers"`
	PeersTotal             int64   `json:"peers_total"`
	PiecesHave             int64   `json:"pieces_have"`
	PiecesNum              int64   `json:"pieces_num"`
	Reannounce             int64   `json:"reannounce"`
	Seeds                  int64   `json:"seeds"`
	SeedsTotal             int64   `json:"seeds_total"`
	TotalSize              int64   `json:"total_size"`
	UpSpeedAvg             int64   `json:"up_speed_avg"`
	UpSpeed                int64   `json:"up_speed"`
	Private                bool    `json:"isPrivate"`
}

// Tracker is one tracker of a torrent. The DHT, PeX and LSD pseudo
// trackers are included by the server.
type Tracker struct {
	URL           string `json:"url"`
	Status        int    `json:"status"`
	Tier          int    `json:"tier"`
	NumPeers      int64  `json:"num_peers"`
	NumSeeds      int64  `json:"num_seeds"`
	NumLeeches    int64  `json:"num_leeches"`
	NumDownloaded int64  `json:"num_downloaded"`
	Msg           string `json:"msg"`
}

// WebSeed is an HTTP source of a torrent.
type WebSeed struct {
	URL string `json:"url"`
}

// TorrentContent is one file of a torrent.
type TorrentContent struct {
	Index        int          `json:"index"`
	Name         string       `json:"name"`
	Size         int64        `json:"size"`
	Progress     float64      `json:"progress"`
	Priority     FilePriority `json:"priority"`
	IsSeed       bool         `json:"is_seed"`
	PieceRange   []int64      `json:"piece_range"`
	Availability float64      `json:"availability"`
}

// TorrentCreatorTask identifies a torrent creation job queued on the server.
type TorrentCreatorTask struct {
	TaskID string `json:"taskID"`
}

// Category is a torrent category.
type Category struct {
	Name     string `json:"name"`
	SavePath string `json:"savePath"`
}
