package qbt

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // BitTorrent v1 info hashes are SHA-1
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/jackpal/bencode-go"
	"github.com/pkg/errors"
)

// TorrentFile is a .torrent metainfo payload ready for torrents/add.
type TorrentFile struct {
	// Filename is the multipart file name sent to the server.
	Filename string
	Data     []byte

	// Name is the info dictionary name.
	Name string
	// InfoHash is the hex v1 info hash.
	InfoHash string
}

type infoDict struct {
	Name        string `bencode:"name"`
	PieceLength int64  `bencode:"piece length"`
}

// NewTorrentFile checks that data is bencoded metainfo with an info
// dictionary and records its name and info hash.
func NewTorrentFile(filename string, data []byte) (*TorrentFile, error) {
	if len(data) == 0 {
		return nil, errors.New("empty torrent data")
	}

	decoded, err := bencode.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding metainfo")
	}
	meta, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, errors.New("metainfo is not a dictionary")
	}
	info, ok := meta["info"].(map[string]interface{})
	if !ok {
		return nil, errors.New("metainfo has no info dictionary")
	}

	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, info); err != nil {
		return nil, errors.Wrap(err, "encoding info dictionary")
	}
	sum := sha1.Sum(buf.Bytes()) //nolint:gosec

	var dict infoDict
	if err := bencode.Unmarshal(bytes.NewReader(buf.Bytes()), &dict); err != nil {
		return nil, errors.Wrap(err, "reading info dictionary")
	}

	if filename == "" {
		filename = dict.Name + ".torrent"
	}

	return &TorrentFile{
		Filename: filename,
		Data:     data,
		Name:     dict.Name,
		InfoHash: hex.EncodeToString(sum[:]),
	}, nil
}

// LoadTorrentFile reads and checks a .torrent file from disk.
func LoadTorrentFile(path string) (*TorrentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return NewTorrentFile(filepath.Base(path), data)
}
