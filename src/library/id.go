package library

import "strings"

// Queue identifiers are tagged strings: the source is encoded in a fixed
// prefix so that any component can dispatch on it without a side lookup.
//
// Local ids carry no prefix, a historical default from before the other two
// sources existed. Local raw ids are decimal numbers and therefore never
// collide with the reserved prefixes.
const (
	subsonicIDPrefix = "nd:"
	spotifyIDPrefix  = "spotify:"
)

// EncodeID builds the queue identifier for a raw source-local id.
func EncodeID(source Source, rawID string) string {
	switch source {
	case SourceSubsonic:
		return subsonicIDPrefix + rawID
	case SourceSpotify:
		return spotifyIDPrefix + rawID
	default:
		return rawID
	}
}

// DecodeID splits a queue identifier into its source and raw source-local
// id. Identifiers without a recognized prefix belong to the local store.
func DecodeID(id string) (Source, string) {
	if rawID, ok := strings.CutPrefix(id, subsonicIDPrefix); ok {
		return SourceSubsonic, rawID
	}
	if rawID, ok := strings.CutPrefix(id, spotifyIDPrefix); ok {
		return SourceSpotify, rawID
	}
	return SourceLocal, id
}
