package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpcc-systems/Medley/directive"
	"github.com/hpcc-systems/Medley/ids"
)

func mustParse(t *testing.T, texts ...string) directive.Plan {
	t.Helper()
	plan, err := directive.Parse(texts...)
	require.NoError(t, err)
	return plan
}

func TestHashRecordIsStableAcrossRuns(t *testing.T) {
	plan := mustParse(t, "fname,lname;city")
	rec := MapRecord{"fname": "Alice", "lname": "Smith", "city": "Springfield"}

	a := HashRecord(ids.ID(1), rec, plan, 1)
	b := HashRecord(ids.ID(1), rec, plan, 1)

	setA := toHashSet(a)
	setB := toHashSet(b)
	assert.Equal(t, setA, setB)
}

func TestHashRecordEmitsAtLeastOneFingerprint(t *testing.T) {
	plan := mustParse(t, "fname,lname")
	rec := MapRecord{"fname": "", "lname": ""}
	out := HashRecord(ids.ID(1), rec, plan, 0)
	assert.NotEmpty(t, out)
}

func TestHashRecordDedupesAcrossAlternatives(t *testing.T) {
	plan := mustParse(t, "fname;lname", "fname;lname")
	rec := MapRecord{"fname": "Alice", "lname": "Smith"}
	out := HashRecord(ids.ID(1), rec, plan, 0)

	seen := make(map[ids.Hash]int)
	for _, fp := range out {
		seen[fp.Hash]++
	}
	for h, count := range seen {
		assert.Equal(t, 1, count, "fingerprint %v duplicated", h)
	}
}

func TestHashRecordRequiredGroupChangesEveryFingerprint(t *testing.T) {
	plan := mustParse(t, "&postal;fname,lname")
	recA := MapRecord{"postal": "90210", "fname": "Alice", "lname": "Smith"}
	recB := MapRecord{"postal": "10001", "fname": "Alice", "lname": "Smith"}

	outA := toHashSet(HashRecord(ids.ID(1), recA, plan, 0))
	outB := toHashSet(HashRecord(ids.ID(2), recB, plan, 0))

	for h := range outA {
		_, collision := outB[h]
		assert.False(t, collision, "different required group must change every fingerprint")
	}
}

func TestHashRecordExpandProducesMoreFingerprintsThanNoExpand(t *testing.T) {
	plan0 := mustParse(t, "fname%0,lname")
	plan2 := mustParse(t, "fname%2,lname")
	rec := MapRecord{"fname": "Alice", "lname": "Smith"}

	out0 := HashRecord(ids.ID(1), rec, plan0, 0)
	out2 := HashRecord(ids.ID(1), rec, plan2, 0)
	assert.Greater(t, len(out2), len(out0))
}

func TestHashRecordAbsentFieldTreatedAsEmpty(t *testing.T) {
	plan := mustParse(t, "fname,lname")
	withMissing := MapRecord{"fname": "Alice"}
	withEmpty := MapRecord{"fname": "Alice", "lname": ""}

	a := toHashSet(HashRecord(ids.ID(1), withMissing, plan, 0))
	b := toHashSet(HashRecord(ids.ID(1), withEmpty, plan, 0))
	assert.Equal(t, a, b)
}

func TestHashRecordOnlyEntityIDCarriedThrough(t *testing.T) {
	plan := mustParse(t, "fname")
	rec := MapRecord{"fname": "Alice"}
	out := HashRecord(ids.ID(99), rec, plan, 0)
	for _, fp := range out {
		assert.Equal(t, ids.ID(99), fp.EntityID)
	}
}

func toHashSet(fps []Fingerprint) map[ids.Hash]struct{} {
	out := make(map[ids.Hash]struct{}, len(fps))
	for _, fp := range fps {
		out[fp.Hash] = struct{}{}
	}
	return out
}
