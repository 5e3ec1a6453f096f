package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcc-systems/Medley/ids"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Hash2ID:  filepath.Join(dir, "hash2id.db"),
		ID2Hash:  filepath.Join(dir, "id2hash.db"),
		Match2ID: filepath.Join(dir, "match2id.db"),
		ID2Match: filepath.Join(dir, "id2match.db"),
	}
}

func TestBuildAllAndReadBack(t *testing.T) {
	paths := testPaths(t)

	hashRows := []HashIDRow{
		{ID: 1, Hash: 1000},
		{ID: 2, Hash: 1000},
		{ID: 2, Hash: 2000},
	}
	matchRows := []MatchIDRow{
		{MatchID: 1, ID: 1},
		{MatchID: 1, ID: 2},
	}

	require.NoError(t, BuildAll(paths, hashRows, matchRows))

	idsForHash, err := ReadHash2ID(paths.Hash2ID, 1000)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ids.ID{1, 2}, idsForHash)

	hashesForID, err := ReadID2Hash(paths.ID2Hash, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ids.Hash{1000, 2000}, hashesForID)

	idsForMatch, err := ReadMatch2ID(paths.Match2ID, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ids.ID{1, 2}, idsForMatch)

	matchesForID, err := ReadID2Match(paths.ID2Match, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []ids.MatchID{1}, matchesForID)
}

func TestBuildIsOverwriteNotMerge(t *testing.T) {
	paths := testPaths(t)

	require.NoError(t, BuildHash2ID(paths.Hash2ID, []HashIDRow{{ID: 1, Hash: 111}}))
	require.NoError(t, BuildHash2ID(paths.Hash2ID, []HashIDRow{{ID: 2, Hash: 222}}))

	gone, err := ReadHash2ID(paths.Hash2ID, 111)
	require.NoError(t, err)
	assert.Empty(t, gone)

	present, err := ReadHash2ID(paths.Hash2ID, 222)
	require.NoError(t, err)
	assert.Equal(t, []ids.ID{2}, present)
}

func TestReadMissingIndexErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadHash2ID(filepath.Join(dir, "absent.db"), 1)
	assert.Error(t, err)
}

func TestReadUnknownKeyReturnsEmpty(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, BuildHash2ID(paths.Hash2ID, []HashIDRow{{ID: 1, Hash: 111}}))

	out, err := ReadHash2ID(paths.Hash2ID, 999)
	require.NoError(t, err)
	assert.Empty(t, out)
}
