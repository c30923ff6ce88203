// internal/party/directory.go
package party

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partylabs/ideasthesia/internal/kv"
)

// DefaultListLimit caps how many party records a single listing reads from
// the store.
const DefaultListLimit = 100

// CreateStatus is the outcome of a create request.
type CreateStatus string

const (
	// StatusCreated means no record existed and a new party was written.
	StatusCreated CreateStatus = "created"
	// StatusRecreated means a closed record existed and was replaced by a
	// brand-new party under the same name.
	StatusRecreated CreateStatus = "recreated"
	// StatusExists means an open party already holds the name; nothing was
	// written and the caller should route the user to the join flow.
	StatusExists CreateStatus = "exists"
)

// CreateResult reports what a create request did, with a flash-style message
// ready for display.
type CreateResult struct {
	Status  CreateStatus `json:"status"`
	Message string       `json:"message"`
	Party   *Party       `json:"-"`
}

// DisplayRecord is the read-only projection of a party used for listing.
// Never persisted.
type DisplayRecord struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
	Link    string   `json:"link"`
}

// JoinLink builds the shareable URL path for a party id. The id is the stable
// public handle for the party; the path shape is a presentation convention.
func JoinLink(id uuid.UUID) string {
	return fmt.Sprintf("/games/ideasthesia/%s", id)
}

// Directory orchestrates the create, join and list flows over a Store. The
// acting player is always an explicit argument, never ambient state.
//
// Writes go through the store's compare-and-swap; a write that loses to a
// concurrent one re-runs the decision once before giving up. Under the
// original last-writer-wins semantics two racing creates could silently drop
// one creator's record; here the loser re-observes the winner instead.
type Directory struct {
	store     *Store
	listLimit int

	// OnChange, when set, runs after every successful write to the store.
	// The websocket feed uses it to push fresh rosters.
	OnChange func()
}

// NewDirectory builds a Directory; listLimit <= 0 falls back to
// DefaultListLimit.
func NewDirectory(store *Store, listLimit int) *Directory {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &Directory{store: store, listLimit: listLimit}
}

// Create applies the name-collision policy for a party named name, created by
// playerID:
//
//   - no record: create a new party containing only the creator
//   - closed record: replace it with a brand-new party (fresh id), telling
//     the user the previous game under that name had ended
//   - open record: refuse, leaving the stored record untouched
func (d *Directory) Create(ctx context.Context, name, playerID string) (*CreateResult, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	for attempt := 0; attempt < 2; attempt++ {
		prev, err := d.store.Get(ctx, name)
		switch {
		case errors.Is(err, ErrNotFound):
			prev = nil
		case err != nil:
			return nil, err
		case !prev.Closed:
			return &CreateResult{
				Status:  StatusExists,
				Message: fmt.Sprintf("A game named %s already exists. Redirecting you to join page...", name),
				Party:   prev,
			}, nil
		}

		p := New(name)
		p.AddPlayer(playerID)
		if err := d.store.PutIf(ctx, p, prev); err != nil {
			if errors.Is(err, kv.ErrModified) {
				continue
			}
			return nil, err
		}
		d.notify()

		if prev != nil {
			return &CreateResult{
				Status:  StatusRecreated,
				Message: fmt.Sprintf("Re-creating a game (named %s). Click now on the right game to join the game.", name),
				Party:   p,
			}, nil
		}
		return &CreateResult{
			Status:  StatusCreated,
			Message: fmt.Sprintf("Creating a game (named %s). Please join manually.", name),
			Party:   p,
		}, nil
	}

	// Lost the race twice; whoever won holds the name now.
	return &CreateResult{
		Status:  StatusExists,
		Message: fmt.Sprintf("A game named %s already exists. Redirecting you to join page...", name),
	}, nil
}

// Join adds playerID to the open party under name. Joining a party the player
// is already in is a no-op that still succeeds; a closed party refuses with
// ErrClosed, leaving its record untouched.
func (d *Directory) Join(ctx context.Context, name, playerID string) (*Party, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		prev, err := d.store.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		if prev.Closed {
			return nil, ErrClosed
		}
		p := prev.Clone()
		p.AddPlayer(playerID)
		if err := d.store.PutIf(ctx, p, prev); err != nil {
			if errors.Is(err, kv.ErrModified) {
				lastErr = err
				continue
			}
			return nil, err
		}
		d.notify()
		return p, nil
	}
	return nil, lastErr
}

// Leave removes playerID from the party under name. Removing the last player
// closes the party; the closed record stays in the store so the name can be
// re-created later.
func (d *Directory) Leave(ctx context.Context, name, playerID string) (*Party, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		prev, err := d.store.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		p := prev.Clone()
		p.RemovePlayer(playerID)
		if err := d.store.PutIf(ctx, p, prev); err != nil {
			if errors.Is(err, kv.ErrModified) {
				lastErr = err
				continue
			}
			return nil, err
		}
		d.notify()
		return p, nil
	}
	return nil, lastErr
}

// List projects up to the configured number of stored parties into display
// records. Order follows the store's enumeration order.
func (d *Directory) List(ctx context.Context) ([]DisplayRecord, error) {
	parties, err := d.store.ListAll(ctx, d.listLimit)
	if err != nil {
		return nil, err
	}
	roster := make([]DisplayRecord, 0, len(parties))
	for _, p := range parties {
		roster = append(roster, DisplayRecord{
			Name:    p.Name,
			Players: p.Players(),
			Link:    JoinLink(p.ID),
		})
	}
	return roster, nil
}

// FindByID scans the directory for the open party whose id matches. The id is
// the join-link handle, so a stale link to a replaced or closed party comes
// back ErrNotFound. The lookup only sees records within the directory's list
// limit: there is no secondary index by id, so a record beyond the single
// scan pass is not reachable through its link.
func (d *Directory) FindByID(ctx context.Context, id uuid.UUID) (*Party, error) {
	parties, err := d.store.ListAll(ctx, d.listLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range parties {
		if p.ID == id && !p.Closed {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (d *Directory) notify() {
	if d.OnChange != nil {
		d.OnChange()
	}
}
