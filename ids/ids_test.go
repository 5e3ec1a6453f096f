package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestH64Stability(t *testing.T) {
	a := H64Strings("fname:Alice", "lname:Smith")
	b := H64Strings("fname:Alice", "lname:Smith")
	assert.Equal(t, a, b)
}

func TestH64OrderSensitive(t *testing.T) {
	a := H64Strings("a", "b")
	b := H64Strings("b", "a")
	assert.NotEqual(t, a, b)
}

func TestEmptySequenceHash(t *testing.T) {
	assert.Equal(t, EmptySequenceHash, H64Strings())
	assert.Equal(t, Hash(H64Seed), H64Strings())
}

func TestH64HashesDistinctFromH64Bytes(t *testing.T) {
	h := H64Strings("x")
	viaHashes := H64Hashes(h)
	assert.NotEqual(t, H64Bytes([]byte("x")), viaHashes)
}

func TestEncodeDecodeID(t *testing.T) {
	buf := make([]byte, IDSize)
	require.NoError(t, EncodeID(buf, ID(12345)))
	got, err := DecodeID(buf)
	require.NoError(t, err)
	assert.Equal(t, ID(12345), got)
}

func TestEncodeIDRejectsOverflow(t *testing.T) {
	buf := make([]byte, IDSize)
	err := EncodeID(buf, MaxID+1)
	assert.Error(t, err)
}

func TestEncodeDecodeHash(t *testing.T) {
	buf := make([]byte, HashSize)
	EncodeHash(buf, SentinelHash)
	got, err := DecodeHash(buf)
	require.NoError(t, err)
	assert.Equal(t, SentinelHash, got)
}

func TestEncodeDecodeMatchID(t *testing.T) {
	buf := make([]byte, MatchIDSize)
	EncodeMatchID(buf, MatchID(7))
	got, err := DecodeMatchID(buf)
	require.NoError(t, err)
	assert.Equal(t, MatchID(7), got)
}

func TestSentinelHashIsMaxUint64(t *testing.T) {
	assert.Equal(t, Hash(0xFFFFFFFFFFFFFFFF), SentinelHash)
}
