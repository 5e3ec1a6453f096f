// Package query implements the query engine (component C7): the two
// read-side entry points over a published set of index files.
package query

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/hpcc-systems/Medley/directive"
	"github.com/hpcc-systems/Medley/hasher"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/index"
	"github.com/hpcc-systems/Medley/logger"
)

// Related is one {givenId, id} pair returned by FindRelatedByIds.
type Related struct {
	GivenID ids.ID
	ID      ids.ID
}

// DefaultFanoutLimit is the per-key row count above which a lookup is
// reported as an IndexLookupOverflow warning. It is not a failure: the
// join still completes with every row found.
const DefaultFanoutLimit = 10_000

// Engine answers queries against a published set of index files.
type Engine struct {
	Paths       index.Paths
	FanoutLimit int

	warnLimiter *rate.Limiter
}

// NewEngine returns an Engine reading from paths, with overflow warnings
// throttled to at most one per second so a pathologically fan-out-heavy
// query doesn't flood the log.
func NewEngine(paths index.Paths) *Engine {
	return &Engine{
		Paths:       paths,
		warnLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (e *Engine) fanoutLimit() int {
	if e.FanoutLimit > 0 {
		return e.FanoutLimit
	}
	return DefaultFanoutLimit
}

func (e *Engine) warnIfOverFanout(indexName string, count int) {
	if count <= e.fanoutLimit() {
		return
	}
	if e.warnLimiter == nil || e.warnLimiter.Allow() {
		logger.Warnw("index lookup exceeded configured fanout limit",
			"index", indexName, "count", count, "limit", e.fanoutLimit())
	}
}

// FindRelatedByIds runs Q1: for each given id, walk ID2Hash -> Hash2ID ->
// ID2Match -> Match2ID and return the deduped {givenId, id} pairs.
func (e *Engine) FindRelatedByIds(givenIDs []ids.ID) ([]Related, error) {
	var out []Related
	seen := make(map[Related]struct{})

	for _, given := range givenIDs {
		hashes, err := index.ReadID2Hash(e.Paths.ID2Hash, given)
		if err != nil {
			return nil, err
		}
		e.warnIfOverFanout("ID2Hash", len(hashes))

		candidates := make(map[ids.ID]struct{})
		for _, h := range hashes {
			idsForHash, err := index.ReadHash2ID(e.Paths.Hash2ID, h)
			if err != nil {
				return nil, err
			}
			e.warnIfOverFanout("Hash2ID", len(idsForHash))
			for _, c := range idsForHash {
				candidates[c] = struct{}{}
			}
		}

		matchIDs := make(map[ids.MatchID]struct{})
		for c := range candidates {
			ms, err := index.ReadID2Match(e.Paths.ID2Match, c)
			if err != nil {
				return nil, err
			}
			e.warnIfOverFanout("ID2Match", len(ms))
			for _, m := range ms {
				matchIDs[m] = struct{}{}
			}
		}

		for m := range matchIDs {
			finalIDs, err := index.ReadMatch2ID(e.Paths.Match2ID, m)
			if err != nil {
				return nil, err
			}
			e.warnIfOverFanout("Match2ID", len(finalIDs))
			for _, id := range finalIDs {
				r := Related{GivenID: given, ID: id}
				if _, ok := seen[r]; ok {
					continue
				}
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}

	return out, nil
}

// FindRelatedByExample runs Q2: hash example records through the same C4
// pipeline used at build time, probe Hash2ID with the resulting
// fingerprints, then map through ID2Match and Match2ID to the final id
// set. Callers typically pass editDistance = 0 at query time to avoid
// over-fuzzing the probe.
func (e *Engine) FindRelatedByExample(records []hasher.Record, plan directive.Plan, editDistance int) ([]ids.ID, error) {
	fingerprints := make(map[ids.Hash]struct{})
	for _, rec := range records {
		for _, fp := range hasher.HashRecord(ids.ID(0), rec, plan, editDistance) {
			fingerprints[fp.Hash] = struct{}{}
		}
	}

	candidates := make(map[ids.ID]struct{})
	for h := range fingerprints {
		idsForHash, err := index.ReadHash2ID(e.Paths.Hash2ID, h)
		if err != nil {
			return nil, err
		}
		e.warnIfOverFanout("Hash2ID", len(idsForHash))
		for _, id := range idsForHash {
			candidates[id] = struct{}{}
		}
	}

	matchIDs := make(map[ids.MatchID]struct{})
	for id := range candidates {
		ms, err := index.ReadID2Match(e.Paths.ID2Match, id)
		if err != nil {
			return nil, err
		}
		e.warnIfOverFanout("ID2Match", len(ms))
		for _, m := range ms {
			matchIDs[m] = struct{}{}
		}
	}

	finalSeen := make(map[ids.ID]struct{})
	var out []ids.ID
	for m := range matchIDs {
		finalIDs, err := index.ReadMatch2ID(e.Paths.Match2ID, m)
		if err != nil {
			return nil, err
		}
		e.warnIfOverFanout("Match2ID", len(finalIDs))
		for _, id := range finalIDs {
			if _, ok := finalSeen[id]; ok {
				continue
			}
			finalSeen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}
