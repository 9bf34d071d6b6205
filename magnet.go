package qbt

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const magnetPrefix = "magnet:?"

// MagnetLink holds the fields of a magnet URI.
type MagnetLink struct {
	Hash             string
	DisplayName      string
	Trackers         []string
	ExactLength      string
	ExactSource      string
	Keywords         string
	AcceptableSource string
}

// ParseMagnetLink extracts information from a magnet link
func ParseMagnetLink(magnetURI string) (*MagnetLink, error) {
	if !strings.HasPrefix(magnetURI, magnetPrefix) {
		return nil, errors.New("invalid magnet link format")
	}

	values, err := url.ParseQuery(strings.TrimPrefix(magnetURI, magnetPrefix))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse magnet link query")
	}

	magnet := &MagnetLink{
		DisplayName:      values.Get("dn"),
		Trackers:         values["tr"],
		ExactLength:      values.Get("xl"),
		ExactSource:      values.Get("xs"),
		Keywords:         values.Get("kt"),
		AcceptableSource: values.Get("as"),
	}

	// btih (v1) wins over btmh (v2) when both are present
	for _, xt := range values["xt"] {
		switch {
		case strings.HasPrefix(xt, "urn:btih:"):
			magnet.Hash = strings.TrimPrefix(xt, "urn:btih:")
		case strings.HasPrefix(xt, "urn:btmh:") && magnet.Hash == "":
			magnet.Hash = strings.TrimPrefix(xt, "urn:btmh:")
		case magnet.Hash == "":
			magnet.Hash = xt
		}
	}

	return magnet, nil
}

// isMagnet reports whether s looks like a magnet URI.
func isMagnet(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "magnet:")
}
