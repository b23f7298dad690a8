package domain

import "strings"

// CommandPrefix marks control codes. Codes with this prefix are never
// suppressed as duplicates.
const CommandPrefix = "cmd:"

const (
	roomPrefix     = "cmd:room"
	sayPrefix      = "cmd:say"
	libraryPrefix  = "lib:"
	favoritePrefix = "favorite:"
	playlistPrefix = "playlist:"
	tuneInPrefix   = "tunein:"
)

var literalCommands = map[string]Command{
	"cmd:playpause": Transport{Op: TransportPlayPause},
	"cmd:next":      Transport{Op: TransportNext},
	"cmd:previous":  Transport{Op: TransportPrevious},
	"cmd:queue":     SetQueueMode{Mode: BuildQueue},
	"cmd:unqueue":   SetQueueMode{Mode: PlayAndClear},
	"cmd:playqueue": SetQueueMode{Mode: PlayAndQueue},
}

var streamingServices = []Service{
	ServiceAppleMusic,
	ServiceAmazonMusic,
	ServiceSpotify,
	ServiceAldiLife,
	ServiceNapster,
}

func IsCommandCode(code string) bool {
	return strings.HasPrefix(code, CommandPrefix)
}

// Classify maps a scanned code to a Command. It never fails: codes that
// match no rule, or match a rule's prefix without its required fields,
// come back as Unrecognized with a *ClassificationError.
func Classify(raw string) Command {
	code := strings.TrimSpace(raw)
	if code == "" {
		return unrecognized(raw)
	}

	if cmd, ok := literalCommands[code]; ok {
		return cmd
	}

	if IsCommandCode(code) {
		return classifyControl(code)
	}

	for _, svc := range streamingServices {
		prefix := string(svc) + ":"
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		uri := strings.TrimPrefix(code, prefix)
		if uri == "" {
			return malformed(code, string(svc), "missing track reference")
		}
		return StreamingTrack{Service: svc, URI: uri}
	}

	switch {
	case strings.HasPrefix(code, libraryPrefix):
		return classifyLibrary(code)
	case strings.HasPrefix(code, favoritePrefix):
		return classifyCollection(code, CollectionFavorite, favoritePrefix)
	case strings.HasPrefix(code, playlistPrefix):
		return classifyCollection(code, CollectionPlaylist, playlistPrefix)
	case strings.HasPrefix(code, tuneInPrefix):
		return classifyTuneIn(code)
	}

	return unrecognized(code)
}

func classifyControl(code string) Command {
	switch {
	case strings.HasPrefix(code, roomPrefix):
		return classifyRoom(code)
	case strings.HasPrefix(code, sayPrefix):
		return classifySay(code)
	}

	parts := strings.Split(code, ":")
	if len(parts) != 3 {
		return unrecognized(code)
	}
	if parts[1] == "" || parts[2] == "" {
		return malformed(code, "action", "empty path segment")
	}
	return RoomAction{Path: parts[1] + "/" + parts[2]}
}

// classifyRoom requires exactly cmd:room|<room>.
func classifyRoom(code string) Command {
	rest, ok := strings.CutPrefix(code, roomPrefix+"|")
	if !ok {
		return malformed(code, "room", "missing '|' delimiter")
	}
	if rest == "" {
		return malformed(code, "room", "missing room name")
	}
	if strings.Contains(rest, "|") {
		return malformed(code, "room", "unexpected extra '|' segment")
	}
	return SwitchRoom{Room: rest}
}

// classifySay requires exactly cmd:say|<room>|<phrase>; the room may be empty.
func classifySay(code string) Command {
	rest, ok := strings.CutPrefix(code, sayPrefix+"|")
	if !ok {
		return malformed(code, "say", "missing '|' delimiter")
	}
	parts := strings.Split(rest, "|")
	switch {
	case len(parts) < 2:
		return malformed(code, "say", "expected cmd:say|<room>|<phrase>")
	case len(parts) > 2:
		return malformed(code, "say", "unexpected extra '|' segment")
	case parts[1] == "":
		return malformed(code, "say", "missing phrase")
	}
	return Speak{Room: parts[0], Phrase: parts[1]}
}

func classifyLibrary(code string) Command {
	kind, query, ok := strings.Cut(strings.TrimPrefix(code, libraryPrefix), "|")
	if !ok {
		return malformed(code, "library", "missing '|' delimiter")
	}
	if query == "" {
		return malformed(code, "library", "missing search query")
	}
	if kind == string(LibraryAlbum) {
		return LibrarySearch{Kind: LibraryAlbum, Query: query}
	}
	return LibrarySearch{Kind: LibrarySong, Query: query}
}

func classifyCollection(code string, kind CollectionKind, prefix string) Command {
	name := strings.TrimPrefix(code, prefix)
	if name == "" {
		return malformed(code, string(kind), "missing name")
	}
	return FavoriteOrPlaylist{Kind: kind, Name: name}
}

func classifyTuneIn(code string) Command {
	parts := strings.Split(code, ":")
	if len(parts) != 3 {
		return malformed(code, "tunein", "expected tunein:<action>:<station>")
	}
	if parts[1] == "" || parts[2] == "" {
		return malformed(code, "tunein", "empty path segment")
	}
	return TuneIn{Action: parts[1], Station: parts[2]}
}

func unrecognized(code string) Command {
	return Unrecognized{
		Raw: code,
		Err: &ClassificationError{Code: code, Err: ErrUnrecognized},
	}
}

func malformed(code, rule, reason string) Command {
	return Unrecognized{
		Raw: code,
		Err: &ClassificationError{Code: code, Rule: rule, Reason: reason, Err: ErrMalformed},
	}
}
