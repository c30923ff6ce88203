// internal/party/party_test.go
package party

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParty(t *testing.T) {
	p := New("chess")

	assert.Equal(t, "chess", p.Name)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.Closed)
	assert.Empty(t, p.CurrentlyPlaying)
	assert.Equal(t, 0, p.NumPlayers())
}

func TestAddPlayerSetsFirstAsCurrentlyPlaying(t *testing.T) {
	p := New("chess")

	p.AddPlayer("alice")
	assert.Equal(t, "alice", p.CurrentlyPlaying)

	p.AddPlayer("bob")
	p.AddPlayer("carol")
	assert.Equal(t, "alice", p.CurrentlyPlaying, "later additions must not steal the active slot")
	assert.Equal(t, 3, p.NumPlayers())
}

func TestAddPlayerIdempotent(t *testing.T) {
	p := New("chess")
	p.AddPlayer("alice")
	p.AddPlayer("alice")

	assert.Equal(t, 1, p.NumPlayers())
	assert.True(t, p.HasPlayer("alice"))
}

func TestRemovePlayerAutoCloses(t *testing.T) {
	p := New("chess")
	p.AddPlayer("alice")
	p.AddPlayer("bob")

	p.RemovePlayer("bob")
	assert.False(t, p.Closed, "removing a non-last player must not close the party")

	p.RemovePlayer("alice")
	assert.True(t, p.Closed, "removing the last player must close the party")
}

func TestRemovePlayerFromEmptySetKeepsPartyOpen(t *testing.T) {
	p := New("chess")

	p.RemovePlayer("nobody")
	assert.False(t, p.Closed, "a removal that empties nothing must not close the party")
	assert.Equal(t, 0, p.NumPlayers())
}

func TestRemovePlayerIdempotent(t *testing.T) {
	p := New("chess")
	p.AddPlayer("alice")
	p.AddPlayer("bob")

	p.RemovePlayer("nobody")
	assert.Equal(t, 2, p.NumPlayers())
	assert.False(t, p.Closed)
}

func TestCloseIdempotent(t *testing.T) {
	p := New("chess")
	p.AddPlayer("alice")

	p.Close()
	require.True(t, p.Closed)

	p.Close()
	assert.True(t, p.Closed)
	assert.Equal(t, 1, p.NumPlayers())
	assert.Equal(t, "alice", p.CurrentlyPlaying)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := New("backgammon")
	p.AddPlayer("zoe")
	p.AddPlayer("alice")
	p.AddPlayer("mallory")
	p.Close()

	data, err := p.Encode()
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.CurrentlyPlaying, got.CurrentlyPlaying)
	assert.Equal(t, p.Closed, got.Closed)
	assert.ElementsMatch(t, p.Players(), got.Players())
}

func TestEncodeDeterministic(t *testing.T) {
	p := New("chess")
	p.AddPlayer("bob")
	p.AddPlayer("alice")

	a, err := p.Encode()
	require.NoError(t, err)
	b, err := p.Encode()
	require.NoError(t, err)

	assert.Equal(t, a, b, "same state must encode to identical bytes")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a party record"))

	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode([]byte(`{"v":99,"name":"chess","id":"8d7f58d0-53bd-4ba5-8a37-f5c0a2808a3d","players":[],"closed":false}`))

	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, corrupt.Error(), "version")
}

func TestDecodeRejectsMissingID(t *testing.T) {
	_, err := Decode([]byte(`{"v":1,"name":"chess","players":["alice"],"closed":false}`))

	var corrupt *CorruptRecordError
	require.ErrorAs(t, err, &corrupt)
}
