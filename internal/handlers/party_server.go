// internal/handlers/party_server.go
package handlers

import (
	"github.com/partylabs/ideasthesia/internal/kv"
	"github.com/partylabs/ideasthesia/internal/party"
)

// PartyServer bundles the directory service with the websocket feed that
// announces directory changes. Handlers close over it.
type PartyServer struct {
	Directory *party.Directory
	Feed      *DirectoryFeed
}

// NewPartyServer wires a directory over the given key-value backend and hooks
// the change feed into it. listLimit bounds how many records a listing scans.
func NewPartyServer(backend kv.Store, listLimit int) *PartyServer {
	feed := NewDirectoryFeed()
	dir := party.NewDirectory(party.NewStore(backend), listLimit)
	dir.OnChange = feed.Notify
	return &PartyServer{
		Directory: dir,
		Feed:      feed,
	}
}
