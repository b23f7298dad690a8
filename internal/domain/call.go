package domain

import (
	"net/url"
	"strings"
)

// Call describes one request to the speaker API. An empty Room addresses
// the API globally instead of a single room.
type Call struct {
	Room string
	Path string
}

func RoomCall(room, path string) Call {
	return Call{Room: room, Path: path}
}

// URLPath renders the call as it appears after the host, with the room
// name percent-encoded.
func (c Call) URLPath() string {
	var b strings.Builder
	b.WriteString("/")
	if c.Room != "" {
		b.WriteString(url.PathEscape(c.Room))
		b.WriteString("/")
	}
	b.WriteString(c.Path)
	return b.String()
}

func (c Call) String() string {
	return c.URLPath()
}
