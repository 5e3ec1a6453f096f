// Package engine exposes Medley's caller-facing API: buildAllIndexes,
// findRelatedByIds, and findRelatedByExample, wiring the directive
// parser, record hasher, cluster builder, index writer, and query engine
// into the two end-to-end operations described by the design.
package engine

import (
	"github.com/google/uuid"

	"github.com/hpcc-systems/Medley/cluster"
	"github.com/hpcc-systems/Medley/directive"
	"github.com/hpcc-systems/Medley/errors"
	"github.com/hpcc-systems/Medley/hasher"
	"github.com/hpcc-systems/Medley/ids"
	"github.com/hpcc-systems/Medley/index"
	"github.com/hpcc-systems/Medley/logger"
	"github.com/hpcc-systems/Medley/query"
)

// Row is one source record paired with its caller-supplied entity id.
type Row struct {
	ID     ids.ID
	Record hasher.Record
}

// BuildInput bundles everything BuildAllIndexes needs: the source rows,
// the directive text (one or more alternatives, OR-combined), the
// maximum edit distance, and the four destination index paths.
type BuildInput struct {
	Rows            []Row
	DirectiveTexts  []string
	MaxEditDistance int
	Paths           index.Paths
}

// BuildAllIndexes runs the full index-build pipeline: parse the
// directive, hash every row, cluster the resulting fingerprints, and
// publish all four index files.
func BuildAllIndexes(input BuildInput) error {
	buildID := uuid.New().String()
	logger.Infow("starting index build", "build_id", buildID, "rows", len(input.Rows))

	plan, err := directive.Parse(input.DirectiveTexts...)
	if err != nil {
		return errorWithBuildID(err, buildID)
	}

	var hashRows []index.HashIDRow
	for _, row := range input.Rows {
		for _, fp := range hasher.HashRecord(row.ID, row.Record, plan, input.MaxEditDistance) {
			hashRows = append(hashRows, index.HashIDRow{ID: fp.EntityID, Hash: fp.Hash})
		}
	}
	hashRows = dedupeHashRows(hashRows)
	logger.Infow("hashed records", "build_id", buildID, "rows", len(input.Rows), "fingerprints", len(hashRows))

	clusterRows := make([]cluster.Row, len(hashRows))
	for i, hr := range hashRows {
		clusterRows[i] = cluster.Row{ID: hr.ID, Fingerprint: hr.Hash}
	}

	matchByID, err := cluster.NewBuilder().Build(clusterRows)
	if err != nil {
		return errorWithBuildID(err, buildID)
	}

	matchRows := make([]index.MatchIDRow, 0, len(matchByID))
	for id, m := range matchByID {
		matchRows = append(matchRows, index.MatchIDRow{MatchID: m, ID: id})
	}
	logger.Infow("clustered fingerprints", "build_id", buildID, "distinct matching ids", distinctMatchIDs(matchByID))

	if err := index.BuildAll(input.Paths, hashRows, matchRows); err != nil {
		return errorWithBuildID(err, buildID)
	}
	logger.Infow("published indexes", "build_id", buildID)
	return nil
}

// errorWithBuildID tags a build failure with the build id it happened
// in, so a failure reported days later in a log aggregator can still be
// correlated back to the run that produced it.
func errorWithBuildID(err error, buildID string) error {
	return errors.Wrapf(err, "build %s", buildID)
}

// FindRelatedByIds runs Q1 against a published index set.
func FindRelatedByIds(queryIDs []ids.ID, paths index.Paths) ([]query.Related, error) {
	return query.NewEngine(paths).FindRelatedByIds(queryIDs)
}

// FindRelatedByExample runs Q2 against a published index set. Callers
// typically pass editDistance = 0 to avoid over-fuzzing the probe.
func FindRelatedByExample(records []hasher.Record, directiveTexts []string, editDistance int, paths index.Paths) ([]ids.ID, error) {
	plan, err := directive.Parse(directiveTexts...)
	if err != nil {
		return nil, err
	}
	return query.NewEngine(paths).FindRelatedByExample(records, plan, editDistance)
}

func dedupeHashRows(rows []index.HashIDRow) []index.HashIDRow {
	type key struct {
		id   ids.ID
		hash ids.Hash
	}
	seen := make(map[key]struct{}, len(rows))
	out := make([]index.HashIDRow, 0, len(rows))
	for _, r := range rows {
		k := key{r.ID, r.Hash}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func distinctMatchIDs(m map[ids.ID]ids.MatchID) int {
	seen := make(map[ids.MatchID]struct{}, len(m))
	for _, v := range m {
		seen[v] = struct{}{}
	}
	return len(seen)
}
