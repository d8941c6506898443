package scrape

import (
	"net/url"
	"regexp"
	"strings"
)

const maxPublicationIDLength = 200

var (
	unsafeIDChars  = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// PublicationID derives the storage identifier of a page from its URL: host
// and path joined with underscores, with every other character replaced and
// the result capped at 200 bytes. The same URL always yields the same ID.
func PublicationID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrEmptyURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.ReplaceAll(strings.TrimRight(u.Path, "/"), "/", "_")
	id := unsafeIDChars.ReplaceAllString(u.Host+path, "_")
	id = underscoreRuns.ReplaceAllString(id, "_")
	if len(id) > maxPublicationIDLength {
		id = id[:maxPublicationIDLength]
	}
	id = strings.TrimRight(id, "_")
	if id == "" {
		return "", ErrEmptyURL
	}
	return id, nil
}
