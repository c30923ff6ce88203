// internal/party/party.go
package party

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// recordVersion is the current on-wire schema version for serialized parties.
// Bump it when the record layout changes; Decode rejects versions it does not know.
const recordVersion = 1

// Party is a named game lobby. The zero value is not usable; construct with New
// or Decode. A Party held by a request is a transient working copy; the
// canonical bytes live in the store.
type Party struct {
	Name string
	ID   uuid.UUID

	// CurrentlyPlaying is the player whose session is considered active. It is
	// set to the first player added and never reassigned afterwards.
	CurrentlyPlaying string
	Closed           bool

	players map[string]struct{}
}

// New returns an open Party with a fresh id and an empty player set.
func New(name string) *Party {
	return &Party{
		Name:    name,
		ID:      uuid.New(),
		players: make(map[string]struct{}),
	}
}

// AddPlayer adds a player to the set. Adding a player twice is a no-op.
// The first player ever added becomes CurrentlyPlaying.
func (p *Party) AddPlayer(playerID string) {
	if p.players == nil {
		p.players = make(map[string]struct{})
	}
	if len(p.players) == 0 && p.CurrentlyPlaying == "" {
		p.CurrentlyPlaying = playerID
	}
	p.players[playerID] = struct{}{}
}

// RemovePlayer removes a player from the set; unknown players are ignored.
// The party closes itself only when a removal actually empties the set.
func (p *Party) RemovePlayer(playerID string) {
	if _, ok := p.players[playerID]; !ok {
		return
	}
	delete(p.players, playerID)
	if len(p.players) == 0 {
		p.Closed = true
	}
}

// Close marks the party as finished. Idempotent.
func (p *Party) Close() {
	p.Closed = true
}

// Clone returns a deep copy suitable for mutation while the original serves
// as the compare-and-swap baseline.
func (p *Party) Clone() *Party {
	c := &Party{
		Name:             p.Name,
		ID:               p.ID,
		CurrentlyPlaying: p.CurrentlyPlaying,
		Closed:           p.Closed,
		players:          make(map[string]struct{}, len(p.players)),
	}
	for id := range p.players {
		c.players[id] = struct{}{}
	}
	return c
}

// HasPlayer reports whether playerID is in the party.
func (p *Party) HasPlayer(playerID string) bool {
	_, ok := p.players[playerID]
	return ok
}

// NumPlayers returns the size of the player set.
func (p *Party) NumPlayers() int {
	return len(p.players)
}

// Players returns the player set as a sorted slice. Sorting keeps Encode
// deterministic, which the store's compare-and-swap relies on.
func (p *Party) Players() []string {
	out := make([]string, 0, len(p.players))
	for id := range p.players {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// record is the versioned wire form of a Party.
type record struct {
	Version          int       `json:"v"`
	Name             string    `json:"name"`
	ID               uuid.UUID `json:"id"`
	Players          []string  `json:"players"`
	CurrentlyPlaying string    `json:"currently_playing,omitempty"`
	Closed           bool      `json:"closed"`
}

// Encode serializes the party into its versioned record form. For any party p,
// Decode(Encode(p)) reproduces p, and encoding the same state twice yields
// identical bytes.
func (p *Party) Encode() ([]byte, error) {
	rec := record{
		Version:          recordVersion,
		Name:             p.Name,
		ID:               p.ID,
		Players:          p.Players(),
		CurrentlyPlaying: p.CurrentlyPlaying,
		Closed:           p.Closed,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode party %q: %w", p.Name, err)
	}
	return data, nil
}

// Decode parses a stored record back into a Party. Bytes that do not parse,
// carry an unknown version, or are missing the name or id come back as a
// *CorruptRecordError so callers can tell corruption apart from absence.
func Decode(data []byte) (*Party, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CorruptRecordError{Err: err}
	}
	if rec.Version != recordVersion {
		return nil, &CorruptRecordError{Name: rec.Name, Err: fmt.Errorf("unknown record version %d", rec.Version)}
	}
	if rec.Name == "" || rec.ID == uuid.Nil {
		return nil, &CorruptRecordError{Name: rec.Name, Err: fmt.Errorf("record is missing name or id")}
	}

	p := &Party{
		Name:             rec.Name,
		ID:               rec.ID,
		CurrentlyPlaying: rec.CurrentlyPlaying,
		Closed:           rec.Closed,
		players:          make(map[string]struct{}, len(rec.Players)),
	}
	for _, id := range rec.Players {
		p.players[id] = struct{}{}
	}
	return p, nil
}
