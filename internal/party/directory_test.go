// internal/party/directory_test.go
package party

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/partylabs/ideasthesia/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T) (*Directory, *Store) {
	t.Helper()
	s := NewStore(kv.NewMemory())
	return NewDirectory(s, 0), s
}

func TestCreateNewParty(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	res, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)
	assert.Contains(t, res.Message, "chess")

	stored, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice"}, stored.Players())
	assert.Equal(t, "alice", stored.CurrentlyPlaying)
	assert.False(t, stored.Closed)
}

func TestCreateRejectsEmptyName(t *testing.T) {
	d, _ := newTestDirectory(t)

	_, err := d.Create(context.Background(), "", "alice")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestCreateConflictLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	first, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	originalID := first.Party.ID

	res, err := d.Create(ctx, "chess", "bob")
	require.NoError(t, err)
	assert.Equal(t, StatusExists, res.Status)

	stored, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	assert.Equal(t, originalID, stored.ID, "open party must not be overwritten")
	assert.ElementsMatch(t, []string{"alice"}, stored.Players())
}

func TestCreateRecreatesClosedParty(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	first, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	oldID := first.Party.ID

	closed, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	closed.Close()
	require.NoError(t, s.Put(ctx, closed))

	res, err := d.Create(ctx, "chess", "bob")
	require.NoError(t, err)
	assert.Equal(t, StatusRecreated, res.Status)
	assert.Contains(t, res.Message, "Re-creating")

	stored, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	assert.NotEqual(t, oldID, stored.ID, "recreation must mint a fresh id")
	assert.ElementsMatch(t, []string{"bob"}, stored.Players(), "only the new creator joins the fresh party")
	assert.False(t, stored.Closed)

	_, err = d.FindByID(ctx, oldID)
	assert.ErrorIs(t, err, ErrNotFound, "old id must no longer be reachable")
}

func TestCreateSurfacesCorruptRecord(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory()
	d := NewDirectory(NewStore(backend), 0)

	require.NoError(t, backend.Set(ctx, Key("chess"), []byte("junk")))

	_, err := d.Create(ctx, "chess", "alice")
	var corrupt *CorruptRecordError
	assert.ErrorAs(t, err, &corrupt)
}

func TestJoinAddsPlayer(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	_, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)

	p, err := d.Join(ctx, "chess", "bob")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, p.Players())
	assert.Equal(t, "alice", p.CurrentlyPlaying, "joining must not change the active player")

	stored, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, stored.Players())
}

func TestJoinClosedPartyRefused(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	_, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	_, err = d.Leave(ctx, "chess", "alice")
	require.NoError(t, err)

	var fired int
	d.OnChange = func() { fired++ }

	_, err = d.Join(ctx, "chess", "bob")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, fired, "a refused join must not announce a change")

	stored, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	assert.True(t, stored.Closed)
	assert.Empty(t, stored.Players(), "the ended record must stay member-free")
}

func TestJoinUnknownParty(t *testing.T) {
	d, _ := newTestDirectory(t)

	_, err := d.Join(context.Background(), "ghost", "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaveLastPlayerClosesParty(t *testing.T) {
	ctx := context.Background()
	d, s := newTestDirectory(t)

	_, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)

	p, err := d.Leave(ctx, "chess", "alice")
	require.NoError(t, err)
	assert.True(t, p.Closed)

	stored, err := s.Get(ctx, "chess")
	require.NoError(t, err)
	assert.True(t, stored.Closed, "closed record stays in the store for later re-creation")
}

func TestListProjectsDisplayRecords(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)

	_, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	_, err = d.Join(ctx, "chess", "bob")
	require.NoError(t, err)
	_, err = d.Create(ctx, "poker", "carol")
	require.NoError(t, err)

	roster, err := d.List(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	byName := map[string]DisplayRecord{}
	for _, rec := range roster {
		byName[rec.Name] = rec
	}
	require.Contains(t, byName, "chess")
	require.Contains(t, byName, "poker")
	assert.ElementsMatch(t, []string{"alice", "bob"}, byName["chess"].Players)
	assert.ElementsMatch(t, []string{"carol"}, byName["poker"].Players)
	assert.Contains(t, byName["chess"].Link, "/games/ideasthesia/")
}

func TestListHonorsLimit(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory(NewStore(kv.NewMemory()), 2)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		_, err := d.Create(ctx, name, "alice")
		require.NoError(t, err)
	}

	roster, err := d.List(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(roster), 2)
}

func TestFindByID(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)

	res, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)

	p, err := d.FindByID(ctx, res.Party.ID)
	require.NoError(t, err)
	assert.Equal(t, "chess", p.Name)

	_, err = d.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByIDSkipsClosedParty(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)

	res, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	oldID := res.Party.ID

	_, err = d.Leave(ctx, "chess", "alice")
	require.NoError(t, err)

	_, err = d.FindByID(ctx, oldID)
	assert.ErrorIs(t, err, ErrNotFound, "an ended game's link must stop resolving")
}

func TestJoinLink(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "/games/ideasthesia/"+id.String(), JoinLink(id))
}

func TestOnChangeFiresOnWrites(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDirectory(t)

	var fired int
	d.OnChange = func() { fired++ }

	_, err := d.Create(ctx, "chess", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	_, err = d.Join(ctx, "chess", "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, fired)

	// Conflicts write nothing, so they announce nothing.
	_, err = d.Create(ctx, "chess", "carol")
	require.NoError(t, err)
	assert.Equal(t, 2, fired)

	_, err = d.Leave(ctx, "chess", "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, fired)
}
