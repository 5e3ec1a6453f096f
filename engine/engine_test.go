package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcc-systems/Medley/hasher"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/index"
	"github.com/hpcc-systems/Medley/query"
)

func testPaths(t *testing.T) index.Paths {
	t.Helper()
	dir := t.TempDir()
	return index.Paths{
		Hash2ID:  filepath.Join(dir, "hash2id.db"),
		ID2Hash:  filepath.Join(dir, "id2hash.db"),
		Match2ID: filepath.Join(dir, "match2id.db"),
		ID2Match: filepath.Join(dir, "id2match.db"),
	}
}

func TestBuildAllIndexesAndFindRelatedByIds(t *testing.T) {
	paths := testPaths(t)

	rows := []Row{
		{ID: 1, Record: hasher.MapRecord{"fname": "Alice", "lname": "Smith"}},
		{ID: 2, Record: hasher.MapRecord{"fname": "Alice", "lname": "Smith"}},
		{ID: 3, Record: hasher.MapRecord{"fname": "Bob", "lname": "Jones"}},
	}

	err := BuildAllIndexes(BuildInput{
		Rows:            rows,
		DirectiveTexts:  []string{"fname,lname"},
		MaxEditDistance: 0,
		Paths:           paths,
	})
	require.NoError(t, err)

	related, err := FindRelatedByIds([]ids.ID{1}, paths)
	require.NoError(t, err)

	var foundIDs []ids.ID
	for _, r := range related {
		foundIDs = append(foundIDs, r.ID)
	}
	assert.ElementsMatch(t, []ids.ID{1, 2}, foundIDs)
}

func TestBuildAllIndexesDistinctRecordsStayUnrelated(t *testing.T) {
	paths := testPaths(t)

	rows := []Row{
		{ID: 1, Record: hasher.MapRecord{"fname": "Alice", "lname": "Smith"}},
		{ID: 2, Record: hasher.MapRecord{"fname": "Bob", "lname": "Jones"}},
	}
	require.NoError(t, BuildAllIndexes(BuildInput{
		Rows:           rows,
		DirectiveTexts: []string{"fname,lname"},
		Paths:          paths,
	}))

	related, err := FindRelatedByIds([]ids.ID{1}, paths)
	require.NoError(t, err)
	assert.Equal(t, []ids.ID{1}, idsOf(related))
}

func TestFindRelatedByExampleAgainstBuiltIndex(t *testing.T) {
	paths := testPaths(t)

	rows := []Row{
		{ID: 1, Record: hasher.MapRecord{"fname": "Alice", "lname": "Smith"}},
	}
	require.NoError(t, BuildAllIndexes(BuildInput{
		Rows:           rows,
		DirectiveTexts: []string{"fname,lname"},
		Paths:          paths,
	}))

	example := []hasher.Record{hasher.MapRecord{"fname": "Alice", "lname": "Smith"}}
	out, err := FindRelatedByExample(example, []string{"fname,lname"}, 0, paths)
	require.NoError(t, err)
	assert.Equal(t, []ids.ID{1}, out)
}

func TestBuildAllIndexesRejectsBadDirective(t *testing.T) {
	paths := testPaths(t)
	err := BuildAllIndexes(BuildInput{
		Rows:           []Row{{ID: 1, Record: hasher.MapRecord{}}},
		DirectiveTexts: []string{"&"},
		Paths:          paths,
	})
	assert.Error(t, err)
}

func idsOf(related []query.Related) []ids.ID {
	out := make([]ids.ID, 0, len(related))
	for _, r := range related {
		out = append(out, r.ID)
	}
	return out
}
