// Package cluster implements the cluster builder (component C5): turning
// the (id, fingerprint) relation produced by the record hasher into a
// dense id -> matchingId assignment where every id sharing a fingerprint
// with another, directly or transitively, ends up under the same
// matchingId.
//
// The algorithm is an in-memory disjoint-set forest with path
// compression and union-by-lowest-root, rather than the distributed
// chain-reduction sketched for a multi-worker shuffle: a single process
// holding the whole (id, fingerprint) relation in memory can compute the
// same equivalence classes directly, and building the partitioned
// version on top of a forest this small is wasted complexity. Grouping
// by fingerprint is still fanned out across a worker pool once the
// relation is large enough to be worth the overhead.
package cluster

import (
	"sort"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hpcc-systems/Medley/errors"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/logger"
)

// Row is one (id, fingerprint) tuple from the record hasher.
type Row struct {
	ID          ids.ID
	Fingerprint ids.Hash
}

// DefaultPairThreshold is the row count above which the fingerprint
// grouping phase is split across a worker pool instead of run on a
// single goroutine. Below it, the overhead of fanning out exceeds the
// benefit.
const DefaultPairThreshold = 1_000_000

// MinFreeBytesPerRow is a conservative per-row memory budget used by the
// pre-flight capacity check. It is intentionally generous: the forest
// itself is a handful of map entries per distinct id.
const MinFreeBytesPerRow = 256

// Builder computes matching ids from a hasher's output relation.
type Builder struct {
	// PairThreshold overrides DefaultPairThreshold; zero means use the
	// default.
	PairThreshold int
	// Workers overrides the worker pool size used once PairThreshold is
	// exceeded; zero means use runtime-appropriate default of 4.
	Workers int
	// AvailableMemory reports currently-available memory in bytes. It is
	// overridable for tests; the zero value uses gopsutil.
	AvailableMemory func() (uint64, error)
}

// NewBuilder returns a Builder configured with production defaults.
func NewBuilder() *Builder {
	return &Builder{
		AvailableMemory: systemAvailableMemory,
	}
}

func systemAvailableMemory() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, errors.Wrap(err, "cluster: reading system memory")
	}
	return vm.Available, nil
}

func (b *Builder) pairThreshold() int {
	if b.PairThreshold > 0 {
		return b.PairThreshold
	}
	return DefaultPairThreshold
}

func (b *Builder) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return 4
}

// Build computes the id -> matchingId assignment for rows. matchingId
// values are densely numbered starting at 1; 0 is never assigned. The
// result is deterministic for a given input relation, independent of
// worker count (P7, idempotence).
func (b *Builder) Build(rows []Row) (map[ids.ID]ids.MatchID, error) {
	if err := b.checkCapacity(len(rows)); err != nil {
		return nil, err
	}

	groups := b.groupByFingerprint(rows)

	forest := newUnionFind()
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		first := group[0]
		for _, other := range group[1:] {
			forest.union(first, other)
		}
	}

	return b.assignMatchIDs(forest, rows), nil
}

func (b *Builder) checkCapacity(rowCount int) error {
	if b.AvailableMemory == nil {
		return nil
	}
	available, err := b.AvailableMemory()
	if err != nil {
		logger.Warnw("cluster: could not determine available memory, proceeding without a capacity check", "error", err)
		return nil
	}
	required := uint64(rowCount) * MinFreeBytesPerRow
	if available < required {
		return errors.Wrapf(errors.ErrClusterOutOfMemory,
			"cluster: need ~%d bytes for %d rows, only %d available", required, rowCount, available)
	}
	return nil
}

// groupByFingerprint partitions rows into [] of ids sharing a
// fingerprint. Above the pair threshold the partitioning work is fanned
// out across a worker pool; the per-worker partial maps are merged
// serially afterward so the result is identical regardless of worker
// count.
func (b *Builder) groupByFingerprint(rows []Row) map[ids.Hash][]ids.ID {
	if len(rows) < b.pairThreshold() {
		return groupByFingerprintSerial(rows)
	}

	workers := b.workers()
	shardSize := (len(rows) + workers - 1) / workers
	partials := make([]map[ids.Hash][]ids.ID, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * shardSize
		end := start + shardSize
		if start >= len(rows) {
			partials[w] = map[ids.Hash][]ids.ID{}
			continue
		}
		if end > len(rows) {
			end = len(rows)
		}
		wg.Add(1)
		go func(idx int, shard []Row) {
			defer wg.Done()
			partials[idx] = groupByFingerprintSerial(shard)
		}(w, rows[start:end])
	}
	wg.Wait()

	merged := make(map[ids.Hash][]ids.ID)
	for _, partial := range partials {
		for h, group := range partial {
			merged[h] = append(merged[h], group...)
		}
	}
	return merged
}

func groupByFingerprintSerial(rows []Row) map[ids.Hash][]ids.ID {
	groups := make(map[ids.Hash][]ids.ID)
	for _, r := range rows {
		groups[r.Fingerprint] = append(groups[r.Fingerprint], r.ID)
	}
	return groups
}

// assignMatchIDs numbers every distinct root found by the forest, in
// ascending root order, starting at 1, then maps every observed id to
// its root's number. Numbering by sorted root value (rather than
// discovery order) keeps the assignment stable across worker counts and
// row orderings.
func (b *Builder) assignMatchIDs(forest *unionFind, rows []Row) map[ids.ID]ids.MatchID {
	rootSet := make(map[ids.ID]struct{})
	idSet := make(map[ids.ID]struct{})
	for _, r := range rows {
		idSet[r.ID] = struct{}{}
		rootSet[forest.find(r.ID)] = struct{}{}
	}

	roots := make([]ids.ID, 0, len(rootSet))
	for root := range rootSet {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	numberOf := make(map[ids.ID]ids.MatchID, len(roots))
	for i, root := range roots {
		numberOf[root] = ids.MatchID(i + 1)
	}

	result := make(map[ids.ID]ids.MatchID, len(idSet))
	for id := range idSet {
		result[id] = numberOf[forest.find(id)]
	}
	return result
}

// unionFind is a disjoint-set forest over ids.ID with path compression
// and union-by-lowest-root (the root of a merged tree is always the
// smaller of the two ids, so canonical representatives are deterministic
// and independent of union order).
type unionFind struct {
	parent map[ids.ID]ids.ID
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[ids.ID]ids.ID)}
}

func (u *unionFind) find(x ids.ID) ids.ID {
	root, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if root == x {
		return x
	}
	canonical := u.find(root)
	u.parent[x] = canonical
	return canonical
}

func (u *unionFind) union(a, b ids.ID) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
