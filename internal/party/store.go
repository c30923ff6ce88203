// internal/party/store.go
package party

import (
	"context"
	"errors"
	"fmt"

	"github.com/partylabs/ideasthesia/internal/kv"
)

// KeyPrefix namespaces party records inside the shared key-value store.
// Record keys look like "party-chess".
const KeyPrefix = "party-"

// Store owns the canonical serialized bytes of every party. All reads hand
// out fresh working copies; nothing returned from Store shares state.
type Store struct {
	kv kv.Store
}

// NewStore wraps a key-value backend.
func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// Key returns the store key for a party name.
func Key(name string) string {
	return KeyPrefix + name
}

// Get fetches and decodes the record under name. Absence is ErrNotFound;
// bytes that do not decode surface as a *CorruptRecordError.
func (s *Store) Get(ctx context.Context, name string) (*Party, error) {
	data, err := s.kv.Get(ctx, Key(name))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p, err := Decode(data)
	if err != nil {
		var corrupt *CorruptRecordError
		if errors.As(err, &corrupt) && corrupt.Name == "" {
			corrupt.Name = name
		}
		return nil, err
	}
	return p, nil
}

// Put writes the party unconditionally, overwriting whatever is at the key.
func (s *Store) Put(ctx context.Context, p *Party) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, Key(p.Name), data)
}

// PutIf writes the party only if the record under its name still matches
// prev; prev == nil requires the key to be absent. A concurrent change comes
// back as kv.ErrModified. This relies on Encode being deterministic for a
// given state.
func (s *Store) PutIf(ctx context.Context, p *Party, prev *Party) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	var old []byte
	if prev != nil {
		if old, err = prev.Encode(); err != nil {
			return err
		}
	}
	return s.kv.SetIfUnchanged(ctx, Key(p.Name), old, data)
}

// ListAll enumerates up to limit party records in a single scan plus batch
// read. Order is whatever the backend returned. Keys deleted between the scan
// and the batch read are skipped; a corrupt record fails the whole listing.
func (s *Store) ListAll(ctx context.Context, limit int) ([]*Party, error) {
	keys, err := s.kv.Scan(ctx, KeyPrefix, limit)
	if err != nil {
		return nil, err
	}
	vals, err := s.kv.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	parties := make([]*Party, 0, len(vals))
	for i, data := range vals {
		if data == nil {
			continue
		}
		p, err := Decode(data)
		if err != nil {
			var corrupt *CorruptRecordError
			if errors.As(err, &corrupt) && corrupt.Name == "" {
				corrupt.Name = keys[i]
			}
			return nil, fmt.Errorf("listing parties: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, nil
}
