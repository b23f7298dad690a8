package domain

import "fmt"

// Command is the classified form of a scanned code. The set of variants is
// closed: only types in this package implement it.
type Command interface {
	commandMarker()
	String() string
}

type TransportOp string

const (
	TransportPlayPause TransportOp = "playpause"
	TransportNext      TransportOp = "next"
	TransportPrevious  TransportOp = "previous"
)

type Service string

const (
	ServiceAppleMusic  Service = "applemusic"
	ServiceAmazonMusic Service = "amazonmusic"
	ServiceSpotify     Service = "spotify"
	ServiceAldiLife    Service = "aldilife"
	ServiceNapster     Service = "napster"
)

// APIPath is the first path segment the speaker API uses for the service.
func (s Service) APIPath() string {
	if s == ServiceAldiLife {
		return "aldilifemusic"
	}
	return string(s)
}

type LibraryKind string

const (
	LibraryAlbum LibraryKind = "album"
	LibrarySong  LibraryKind = "song"
)

type CollectionKind string

const (
	CollectionFavorite CollectionKind = "favorite"
	CollectionPlaylist CollectionKind = "playlist"
)

type Transport struct {
	Op TransportOp
}

type SetQueueMode struct {
	Mode QueueMode
}

type SwitchRoom struct {
	Room string
}

// Speak asks the speaker to say Phrase. An empty Room means the current room.
type Speak struct {
	Room   string
	Phrase string
}

// RoomAction is a generic two-segment request passed through to the current room.
type RoomAction struct {
	Path string
}

type StreamingTrack struct {
	Service Service
	URI     string
}

type LibrarySearch struct {
	Kind  LibraryKind
	Query string
}

type FavoriteOrPlaylist struct {
	Kind CollectionKind
	Name string
}

type TuneIn struct {
	Action  string
	Station string
}

// Unrecognized carries the raw code and the reason classification failed.
type Unrecognized struct {
	Raw string
	Err error
}

func (Transport) commandMarker()          {}
func (SetQueueMode) commandMarker()       {}
func (SwitchRoom) commandMarker()         {}
func (Speak) commandMarker()              {}
func (RoomAction) commandMarker()         {}
func (StreamingTrack) commandMarker()     {}
func (LibrarySearch) commandMarker()      {}
func (FavoriteOrPlaylist) commandMarker() {}
func (TuneIn) commandMarker()             {}
func (Unrecognized) commandMarker()       {}

func (c Transport) String() string    { return fmt.Sprintf("Transport(%s)", c.Op) }
func (c SetQueueMode) String() string { return fmt.Sprintf("SetQueueMode(%s)", c.Mode) }
func (c SwitchRoom) String() string   { return fmt.Sprintf("SwitchRoom(%q)", c.Room) }
func (c Speak) String() string        { return fmt.Sprintf("Speak(room=%q, phrase=%q)", c.Room, c.Phrase) }
func (c RoomAction) String() string   { return fmt.Sprintf("RoomAction(%s)", c.Path) }
func (c StreamingTrack) String() string {
	return fmt.Sprintf("StreamingTrack(%s, %s)", c.Service, c.URI)
}
func (c LibrarySearch) String() string {
	return fmt.Sprintf("LibrarySearch(%s, %q)", c.Kind, c.Query)
}
func (c FavoriteOrPlaylist) String() string {
	return fmt.Sprintf("FavoriteOrPlaylist(%s, %q)", c.Kind, c.Name)
}
func (c TuneIn) String() string { return fmt.Sprintf("TuneIn(%s/%s)", c.Action, c.Station) }
func (c Unrecognized) String() string {
	if c.Err != nil {
		return fmt.Sprintf("Unrecognized(%q: %v)", c.Raw, c.Err)
	}
	return fmt.Sprintf("Unrecognized(%q)", c.Raw)
}
