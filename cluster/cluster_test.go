package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcc-systems/Medley/errors"
	"github.com/hpcc-systems/Medley/ids"
)

func unlimitedMemory() (uint64, error) {
	return 1 << 40, nil
}

func newTestBuilder() *Builder {
	return &Builder{AvailableMemory: unlimitedMemory}
}

func TestBuildSingletonsGetDistinctMatchIDs(t *testing.T) {
	rows := []Row{
		{ID: 1, Fingerprint: 100},
		{ID: 2, Fingerprint: 200},
	}
	result, err := newTestBuilder().Build(rows)
	require.NoError(t, err)
	assert.NotEqual(t, result[1], result[2])
}

func TestBuildSharedFingerprintMergesIDs(t *testing.T) {
	rows := []Row{
		{ID: 1, Fingerprint: 100},
		{ID: 2, Fingerprint: 100},
	}
	result, err := newTestBuilder().Build(rows)
	require.NoError(t, err)
	assert.Equal(t, result[1], result[2])
}

func TestBuildTransitiveChainMerges(t *testing.T) {
	// 1-2 share fp 100; 2-3 share fp 200: 1, 2, and 3 must all collapse.
	rows := []Row{
		{ID: 1, Fingerprint: 100},
		{ID: 2, Fingerprint: 100},
		{ID: 2, Fingerprint: 200},
		{ID: 3, Fingerprint: 200},
	}
	result, err := newTestBuilder().Build(rows)
	require.NoError(t, err)
	assert.Equal(t, result[1], result[2])
	assert.Equal(t, result[2], result[3])
}

func TestBuildMatchIDsAreDenseStartingAtOne(t *testing.T) {
	rows := []Row{
		{ID: 10, Fingerprint: 1},
		{ID: 20, Fingerprint: 2},
		{ID: 30, Fingerprint: 3},
	}
	result, err := newTestBuilder().Build(rows)
	require.NoError(t, err)

	seen := make(map[ids.MatchID]struct{})
	for _, m := range result {
		assert.NotEqual(t, ids.MatchID(0), m)
		seen[m] = struct{}{}
	}
	assert.Len(t, seen, 3)
	for i := 1; i <= 3; i++ {
		_, ok := seen[ids.MatchID(i)]
		assert.True(t, ok, "matchingId %d must be assigned", i)
	}
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	rows := []Row{
		{ID: 5, Fingerprint: 1},
		{ID: 3, Fingerprint: 1},
		{ID: 8, Fingerprint: 2},
	}
	first, err := newTestBuilder().Build(rows)
	require.NoError(t, err)
	second, err := newTestBuilder().Build(rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildOutOfMemoryReturnsClusterOutOfMemoryError(t *testing.T) {
	b := &Builder{AvailableMemory: func() (uint64, error) { return 0, nil }}
	_, err := b.Build([]Row{{ID: 1, Fingerprint: 1}})
	require.ErrorIs(t, err, errors.ErrClusterOutOfMemory)
}

func TestBuildWorksAboveThresholdWithMultipleWorkers(t *testing.T) {
	b := &Builder{AvailableMemory: unlimitedMemory, PairThreshold: 10, Workers: 3}
	rows := make([]Row, 0, 40)
	for i := 0; i < 20; i++ {
		rows = append(rows, Row{ID: ids.ID(i), Fingerprint: ids.Hash(i % 4)})
	}
	result, err := b.Build(rows)
	require.NoError(t, err)
	assert.Len(t, result, 20)
}
